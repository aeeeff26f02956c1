package redis

import "github.com/mcoot/chainreaction/internal/model"

const defaultKeyPrefix = "chainreaction"

// keyspace builds the keys of one deployment:
//
//	<prefix>:game:<id>      JSON GameRecord, expires after GameTTL
//	<prefix>:idx:games      ZSET of game IDs scored by UpdatedAt
//	<prefix>:preset:<name>  JSON Preset
//	<prefix>:idx:presets    SET of preset names
type keyspace struct {
	prefix string
}

func newKeyspace(prefix string) keyspace {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return keyspace{prefix: prefix}
}

func (k keyspace) game(id model.GameID) string {
	return k.prefix + ":game:" + string(id)
}

func (k keyspace) gameIndex() string {
	return k.prefix + ":idx:games"
}

func (k keyspace) preset(name string) string {
	return k.prefix + ":preset:" + name
}

func (k keyspace) presetIndex() string {
	return k.prefix + ":idx:presets"
}
