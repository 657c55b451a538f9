package game

import "math/rand/v2"

// RNG is the randomness the simulation draws from. *rand.Rand satisfies it.
type RNG interface {
	Float64() float64
	IntN(n int) int
	NormFloat64() float64
}

// NewRNG returns a deterministic generator for seed.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// normal draws from N(mean, sd).
func normal(rng RNG, mean, sd float64) float64 {
	if sd == 0 {
		return mean
	}
	return mean + rng.NormFloat64()*sd
}
