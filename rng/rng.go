// Package rng provides a deterministic, explicitly seeded uniform-[0,1)
// stream for the sampling kernels, threaded per call rather than drawn
// from an ambient global generator, so sampling stays reproducible across
// concurrent callers.
package rng

import "math/rand"

// Source is a seeded uniform-[0,1) generator.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded deterministically by seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Float64 draws the next uniform value in [0,1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// Int63 and Seed satisfy the math/rand.Source interface, so a Source can
// stand in anywhere that interface is expected without exposing callers
// to math/rand's global generator.
func (s *Source) Int63() int64 {
	return s.r.Int63()
}

func (s *Source) Seed(seed int64) {
	s.r.Seed(seed)
}
