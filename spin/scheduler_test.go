package spin

import (
	"math"
	"testing"

	"github.com/akmonengine/tumbler/rng"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hexagonConfig() Config {
	return Config{
		Speed:    mgl64.Vec3{0, 0, 0.6},
		MinDwell: 3,
		MaxDwell: 8,
		Policy:   FlipAll,
	}
}

// =============================================================================
// Rotation Tests
// =============================================================================

func TestScheduler_AdvancesAngle(t *testing.T) {
	s := NewScheduler(Config{Speed: mgl64.Vec3{0, 0, 0.5}, MinDwell: 100, MaxDwell: 100}, rng.New(1))

	for range 60 {
		assert.Empty(t, s.Step(1.0/60.0))
	}

	assert.InDelta(t, 0.5, s.Angles().Z(), 1e-9)
	assert.Equal(t, 0.0, s.Angles().X())
	assert.InDelta(t, 99.0, s.State().DwellRemaining, 1e-9)
}

func TestScheduler_DefaultDirectionIsCounterClockwise(t *testing.T) {
	s := NewScheduler(hexagonConfig(), rng.New(1))

	assert.Equal(t, [3]Direction{1, 1, 1}, s.Directions())
	assert.Equal(t, "counter-clockwise", s.Directions()[2].String())
	assert.Equal(t, "clockwise", Clockwise.String())
	assert.InDelta(t, 0.6, s.AngularVelocity().Z(), 1e-12)
}

// =============================================================================
// Reversal Tests
// =============================================================================

func TestScheduler_ReversalSplitsTheTick(t *testing.T) {
	// Sequence 0 gives a dwell of exactly MinDwell
	s := NewScheduler(Config{Speed: mgl64.Vec3{0, 0, 1}, MinDwell: 0.25, MaxDwell: 1}, &rng.Sequence{Values: []float64{0}})

	reversals := s.Step(1.0)

	// 0.25s forward, flip, 0.25s back, flip, 0.25s forward, flip, 0.25s back, flip
	require.Len(t, reversals, 4)
	for i, r := range reversals {
		assert.InDelta(t, 0.25*float64(i+1), r.At, 1e-12)
		assert.False(t, r.Manual)
	}
	assert.InDelta(t, 0.0, s.Angles().Z(), 1e-12)
	assert.Equal(t, CounterClockwise, s.Directions()[2])
}

func TestScheduler_DwellBounds(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 42, 1234} {
		s := NewScheduler(hexagonConfig(), rng.New(seed))

		var times []float64
		for range 60 * 600 {
			for _, r := range s.Step(1.0 / 60.0) {
				times = append(times, r.At)
			}
		}

		require.Greater(t, len(times), 50, "seed %d", seed)
		prev := 0.0
		for _, at := range times {
			gap := at - prev
			assert.GreaterOrEqual(t, gap, 3.0-1e-9, "seed %d", seed)
			assert.LessOrEqual(t, gap, 8.0+1e-9, "seed %d", seed)
			prev = at
		}
	}
}

func TestScheduler_ManualReverse(t *testing.T) {
	s := NewScheduler(hexagonConfig(), rng.New(9))
	s.Step(1)

	before := s.State()
	r := s.Reverse()
	after := s.State()

	assert.True(t, r.Manual)
	assert.Equal(t, [3]bool{false, false, true}, r.Axes, "only the spinning axis flips")
	assert.Equal(t, Clockwise, after.Directions[2])
	assert.InDelta(t, -before.AngularVelocity.Z(), after.AngularVelocity.Z(), 1e-12)
	assert.Equal(t, before.Reversals+1, after.Reversals)
	assert.InDelta(t, 1.0, after.LastReversalAt, 1e-12)
	assert.GreaterOrEqual(t, after.Dwell, 3.0)
	assert.LessOrEqual(t, after.Dwell, 8.0)
	assert.Equal(t, after.Dwell, after.DwellRemaining, "a manual reversal resamples the dwell")
}

func TestScheduler_Policies(t *testing.T) {
	tests := []struct {
		name      string
		policy    Policy
		speed     mgl64.Vec3
		wantFlips int
	}{
		{"flip all axes of a cube", FlipAll, mgl64.Vec3{0.6, 0.6, 0.6}, 3},
		{"flip one random axis", FlipRandomAxis, mgl64.Vec3{0.6, 0.6, 0.6}, 1},
		{"random axis among spinning ones", FlipRandomAxis, mgl64.Vec3{0, 0, 0.6}, 1},
		{"still scheduler flips every axis", FlipAll, mgl64.Vec3{}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(Config{Speed: tt.speed, MinDwell: 1, MaxDwell: 2, Policy: tt.policy}, rng.New(5))
			for range 20 {
				r := s.Reverse()
				flips := 0
				for i, f := range r.Axes {
					if f {
						flips++
						if tt.speed.Len() > 0 {
							assert.NotZero(t, tt.speed[i], "only spinning axes may flip")
						}
					}
				}
				assert.Equal(t, tt.wantFlips, flips)
			}
		})
	}

	assert.Equal(t, "all", FlipAll.String())
	assert.Equal(t, "random-axis", FlipRandomAxis.String())
	assert.Equal(t, "unknown", Policy(7).String())
}

func TestScheduler_Deterministic(t *testing.T) {
	cfg := Config{Speed: mgl64.Vec3{0.6, 0.4, 0.2}, MinDwell: 0.5, MaxDwell: 2, Policy: FlipRandomAxis}
	a := NewScheduler(cfg, rng.New(77))
	b := NewScheduler(cfg, rng.New(77))

	for range 2000 {
		ra := a.Step(1.0 / 60.0)
		rb := b.Step(1.0 / 60.0)
		require.Equal(t, ra, rb)
	}
	assert.Equal(t, a.State(), b.State())
	assert.False(t, math.IsNaN(a.Angles().Len()))
}
