// Package random provides seed generation for per-session random sources.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewSource returns a *rand.Rand seeded from crypto/rand, falling back to the
// given seed when the system source is unavailable.
func NewSource(fallback int64) *rand.Rand {
	seed, err := NewSeed()
	if err != nil {
		seed = fallback
	}
	return rand.New(rand.NewSource(seed))
}
