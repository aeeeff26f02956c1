package seat

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chainreaction/internal/dependencies/random"
	"github.com/mcoot/chainreaction/internal/model"
)

const secretLength = 32

// Service issues and verifies seat tokens. A seat token has the form
// "<playerID>.<secret>"; only the bcrypt hash of the whole token is stored.
type Service struct {
	random random.Random
	cost   int

	// token -> seat it was verified against; the least recently used entries
	// are dropped once the cache is full
	verified *lru.Cache[string, verifiedSeat]
}

type verifiedSeat struct {
	gameID    model.GameID
	tokenHash string
}

// Config holds configuration for the seat service
type Config struct {
	BcryptCost int
	// CacheSize bounds the number of remembered token verifications
	CacheSize int
}

// DefaultConfig returns default seat configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
		CacheSize:  4096,
	}
}

// New creates a new seat service
func New(random random.Random, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	verified, err := lru.New[string, verifiedSeat](cfg.CacheSize)
	if err != nil {
		// Only a non-positive size fails
		panic(err)
	}
	return &Service{
		random:   random,
		cost:     cfg.BcryptCost,
		verified: verified,
	}
}

// Issue creates a new token for a seat and returns it with its hash
func (s *Service) Issue(playerID model.PlayerID) (token string, hash string, err error) {
	token = playerID.String() + "." + s.random.String(secretLength, random.Alphanumeric)
	h, err := bcrypt.GenerateFromPassword([]byte(token), s.cost)
	if err != nil {
		return "", "", fmt.Errorf("hashing seat token: %w", err)
	}
	return token, string(h), nil
}

// Authenticate returns the seat of record that token unlocks
func (s *Service) Authenticate(record *model.GameRecord, token string) (*model.Seat, error) {
	playerID, err := ParsePlayerID(token)
	if err != nil {
		return nil, err
	}
	seat := record.Seat(playerID)
	if seat == nil || seat.TokenHash == "" {
		return nil, model.ErrInvalidSeatToken
	}

	cached, ok := s.verified.Get(token)
	if ok && cached.gameID == record.ID && cached.tokenHash == seat.TokenHash {
		return seat, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(seat.TokenHash), []byte(token)); err != nil {
		return nil, model.ErrInvalidSeatToken
	}

	s.verified.Add(token, verifiedSeat{gameID: record.ID, tokenHash: seat.TokenHash})
	return seat, nil
}

// Forget drops cached verifications for a game that is deleted or no
// longer hosted
func (s *Service) Forget(gameID model.GameID) {
	for _, token := range s.verified.Keys() {
		if v, ok := s.verified.Peek(token); ok && v.gameID == gameID {
			s.verified.Remove(token)
		}
	}
}

// Cached returns the number of remembered verifications
func (s *Service) Cached() int {
	return s.verified.Len()
}

// ParsePlayerID extracts the player ID prefix from a seat token
func ParsePlayerID(token string) (model.PlayerID, error) {
	prefix, secret, ok := strings.Cut(token, ".")
	if !ok || secret == "" {
		return model.NoPlayer, model.ErrInvalidSeatToken
	}
	id, err := strconv.Atoi(prefix)
	if err != nil || id < 1 {
		return model.NoPlayer, model.ErrInvalidSeatToken
	}
	return model.PlayerID(id), nil
}

// Interface for dependency injection
type ServiceInterface interface {
	Issue(playerID model.PlayerID) (token string, hash string, err error)
	Authenticate(record *model.GameRecord, token string) (*model.Seat, error)
	Forget(gameID model.GameID)
}

var _ ServiceInterface = (*Service)(nil)
