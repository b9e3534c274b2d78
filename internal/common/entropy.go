package common

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand/v2"
)

// Entropy is the source of randomness behind every simulated outcome.
type Entropy interface {
	// Hex returns "0x" followed by n random bytes hex encoded.
	Hex(n int) string
	// Float64 returns a uniform number in [0, 1).
	Float64() float64
	// IntN returns a uniform number in [0, n).
	IntN(n int) int
}

type systemEntropy struct{}

// SystemEntropy is backed by crypto/rand for hex strings and math/rand/v2 for numbers.
func SystemEntropy() Entropy {
	return systemEntropy{}
}

func (systemEntropy) Hex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read never fails on supported platforms
		panic(err)
	}
	return "0x" + hex.EncodeToString(buf)
}

func (systemEntropy) Float64() float64 {
	return mrand.Float64()
}

func (systemEntropy) IntN(n int) int {
	return mrand.IntN(n)
}
