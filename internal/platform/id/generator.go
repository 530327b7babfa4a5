package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque internal IDs.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator returns hex ids from crypto/rand, optionally prefixed with
// the entity kind ("team_", "entry_").
type RandomGenerator struct {
	prefix string
	size   int
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{size: 16}
}

// WithPrefix returns a generator that shares size but prepends prefix.
func (g *RandomGenerator) WithPrefix(prefix string) *RandomGenerator {
	return &RandomGenerator{prefix: prefix, size: g.size}
}

func (g *RandomGenerator) NewID() (string, error) {
	size := g.size
	if size <= 0 {
		size = 16
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return g.prefix + hex.EncodeToString(buf), nil
}

// Sequence is a deterministic generator for tests and seeded data.
type Sequence struct {
	Prefix string
	next   int
}

func (s *Sequence) NewID() (string, error) {
	s.next++
	return fmt.Sprintf("%s%d", s.Prefix, s.next), nil
}
