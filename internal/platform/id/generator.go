package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator returns hex encoded random IDs of a fixed byte size.
type RandomGenerator struct {
	size int
}

// NewRandomGenerator is used for record ids (coupons, users).
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{size: 16}
}

// NewTokenGenerator is used for user credentials. Tokens are longer than
// record ids because they are the only secret a user holds.
func NewTokenGenerator() *RandomGenerator {
	return &RandomGenerator{size: 24}
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

	return hex.EncodeToString(buf), nil
}
