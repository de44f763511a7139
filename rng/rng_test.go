package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCG_SameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)

	for range 1000 {
		require.Equal(t, a.Float64(), b.Float64())
		require.Equal(t, a.IntN(7), b.IntN(7))
	}
}

func TestPCG_DifferentSeeds(t *testing.T) {
	a := New(1)
	b := New(2)

	same := 0
	for range 100 {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 100)
}

func TestUniform(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
	}{
		{"unit", 0, 1},
		{"kick range", 180, 480},
		{"negative", -5, -1},
	}

	src := New(7)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 500 {
				v := Uniform(src, tt.min, tt.max)
				assert.GreaterOrEqual(t, v, tt.min)
				assert.LessOrEqual(t, v, tt.max)
			}
		})
	}
}

func TestUniform_CollapsedRange(t *testing.T) {
	seq := &Sequence{Values: []float64{0.5}}

	assert.Equal(t, 3.0, Uniform(seq, 3, 3))
	assert.Equal(t, 0, seq.next, "collapsed range must not consume the source")
}

func TestSequence(t *testing.T) {
	seq := &Sequence{Values: []float64{0.1, 0.9}}

	assert.Equal(t, 0.1, seq.Float64())
	assert.Equal(t, 0.9, seq.Float64())
	assert.Equal(t, 0.1, seq.Float64())

	assert.Equal(t, 2, (&Sequence{Values: []float64{0.99}}).IntN(3))
	assert.Equal(t, 0, (&Sequence{}).IntN(3))
	assert.Equal(t, 0.0, (&Sequence{}).Float64())
}
