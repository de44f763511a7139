// Package rng provides the random source injected into the simulation.
// Kick sampling and dwell resampling both draw from it, so a fixed seed
// reproduces a trajectory exactly.
package rng

import (
	"math/rand/v2"
)

// Source is the only randomness the simulation consumes.
type Source interface {
	// Float64 returns a value in [0, 1)
	Float64() float64
	// IntN returns a value in [0, n)
	IntN(n int) int
}

// PCG is a seedable Source backed by math/rand/v2.
// It is not safe for concurrent use; each simulation owns its own.
type PCG struct {
	r *rand.Rand
}

// New creates a PCG source. Two sources with the same seed produce the same stream.
func New(seed uint64) *PCG {
	return &PCG{
		r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (p *PCG) Float64() float64 {
	return p.r.Float64()
}

func (p *PCG) IntN(n int) int {
	return p.r.IntN(n)
}

// Uniform samples uniformly from [min, max]. A collapsed range returns min
// without consuming the source.
func Uniform(src Source, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + src.Float64()*(max-min)
}

// Sequence replays a fixed list of values, cycling when exhausted.
// Useful to force a specific kick or dwell in tests.
type Sequence struct {
	Values []float64
	next   int
}

func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

func (s *Sequence) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Float64() * float64(n))
	return min(max(i, 0), n-1)
}
