package cryptorand

import "testing"

func TestSourceIsNonNegative(t *testing.T) {
	src := NewSource()
	for i := 0; i < 1000; i++ {
		if v := src.Int63(); v < 0 {
			t.Fatalf("Int63() = %d, want a non-negative value", v)
		}
	}
}

func TestSeedRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if s := Seed(); s < 0 || s >= 1<<32 {
			t.Fatalf("Seed() = %d, want a value in [0, 2^32)", s)
		}
	}
}
