// Package cryptorand provides a math/rand Source backed by crypto/rand, used
// whenever a run isn't given an explicit seed.
package cryptorand

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

func NewSource() Source {
	return Source{}
}

// Source is a non-reproducible rand.Source, Seed is a no-op.
type Source struct{}

func (Source) Int63() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
}

func (Source) Seed(int64) {}

// Seed draws a fresh seed in [0, 2^32), the range used for per-game seeds.
func Seed() int64 {
	return mrand.New(NewSource()).Int63n(1 << 32)
}
