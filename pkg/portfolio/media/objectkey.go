package media

import (
	"strings"

	"github.com/google/uuid"
)

// KeyGenerator builds git-style sharded object keys for uploaded images:
// images/ab/cd1234ef....png
type KeyGenerator struct {
	Prefix      string
	ShardLength int
}

// NewKeyGenerator returns a generator with the default prefix and shard length
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{Prefix: "images", ShardLength: 2}
}

// GenerateKey returns the key for an object id and file extension
// (including the dot).
func (g *KeyGenerator) GenerateKey(id uuid.UUID, ext string) string {
	hex := strings.ReplaceAll(id.String(), "-", "")

	shard := g.ShardLength
	if shard <= 0 || shard >= len(hex) {
		shard = 2
	}

	key := hex[:shard] + "/" + hex[shard:] + ext
	if g.Prefix != "" {
		key = strings.TrimSuffix(g.Prefix, "/") + "/" + key
	}
	return key
}
