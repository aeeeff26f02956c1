package redis

import "time"

// Config holds connection settings and the key layout of the store
type Config struct {
	// URL is a redis:// or rediss:// connection URL
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration

	// KeyPrefix namespaces every key, so several deployments can share one
	// Redis. Empty means "chainreaction".
	KeyPrefix string

	// GameTTL expires games that have not been updated; 0 keeps them forever.
	// Presets never expire.
	GameTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		KeyPrefix:    defaultKeyPrefix,
		GameTTL:      7 * 24 * time.Hour,
	}
}
