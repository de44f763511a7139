package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/tumbler/actor"
	"github.com/akmonengine/tumbler/rng"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// floor is a wall along y = -1 from x = -10 to x = 10, facing up
func floor() *actor.Wall {
	w := actor.NewSegmentWall(0, "floor", mgl64.Vec3{-10, -1, 0}, mgl64.Vec3{10, -1, 0}, mgl64.Vec3{})
	return &w
}

func noKickParams() Params {
	return Params{
		CollisionFriction: 0.9,
		CornerThreshold:   1,
		CornerPolicy:      CornerRoll,
		CornerNudge:       0.1,
		CornerKickScale:   0.25,
		MaxVelocity:       100,
		Dimensions:        2,
	}
}

// =============================================================================
// Detection Tests
// =============================================================================

func TestDetect(t *testing.T) {
	tests := []struct {
		name            string
		position        mgl64.Vec3
		wantContact     bool
		wantDistance    float64
		wantPenetration float64
		wantCorner      bool
	}{
		{"far above", mgl64.Vec3{0, 0, 0}, false, 0, 0, false},
		{"exactly tangent", mgl64.Vec3{0, -0.5, 0}, false, 0, 0, false},
		{"overlapping", mgl64.Vec3{0, -0.7, 0}, true, 0.3, 0.2, false},
		{"center through the wall", mgl64.Vec3{2, -1.2, 0}, true, -0.2, 0.7, false},
		{"near an endpoint", mgl64.Vec3{9.8, -0.8, 0}, true, 0.2, 0.3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ball := actor.NewBall(actor.BallState{Position: tt.position}, 0.5)
			contact, ok := Detect(floor(), ball, 1)

			require.Equal(t, tt.wantContact, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.wantDistance, contact.Distance, 1e-12)
			assert.InDelta(t, tt.wantPenetration, contact.Penetration, 1e-12)
			assert.Equal(t, tt.wantCorner, contact.Corner)
		})
	}
}

func TestDetect_DegenerateWall(t *testing.T) {
	w := actor.NewSegmentWall(0, "", mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	ball := actor.NewBall(actor.BallState{}, 1)

	_, ok := Detect(&w, ball, 1)
	assert.False(t, ok)
}

func TestSolvePosition_LeavesBallTangent(t *testing.T) {
	for _, y := range []float64{-0.7, -1.2, -1.45} {
		ball := actor.NewBall(actor.BallState{Position: mgl64.Vec3{0, y, 0}}, 0.5)
		w := floor()

		contact, ok := Detect(w, ball, 1)
		require.True(t, ok)
		contact.SolvePosition()

		assert.InDelta(t, 0.5, w.SignedDistance(ball.Position), 1e-12, "start y=%v", y)
	}
}

// =============================================================================
// Response Tests
// =============================================================================

func TestResolve_ReflectionLawWithoutKick(t *testing.T) {
	ball := actor.NewBall(actor.BallState{Position: mgl64.Vec3{0, -0.7, 0}, Velocity: mgl64.Vec3{3, -4, 0}}, 0.5)
	w := floor()

	r := NewResolver(noKickParams(), rng.New(1))
	r.Begin(Motion{})

	contact, ok := Detect(w, ball, 1)
	require.True(t, ok)
	resp := r.Resolve(&contact)

	// Normal component negated, tangential kept, both damped by the collision friction
	assert.True(t, resp.Approaching)
	assert.False(t, resp.Kicked)
	assert.InDelta(t, 2.7, ball.Velocity.X(), 1e-12)
	assert.InDelta(t, 3.6, ball.Velocity.Y(), 1e-12)
	assert.InDelta(t, mgl64.RadToDeg(math.Acos(0.8)), resp.BounceAngle, 1e-9)
	assert.InDelta(t, 0.5, w.SignedDistance(ball.Position), 1e-12)
}

func TestResolve_SeparatingBallIsOnlyPushed(t *testing.T) {
	ball := actor.NewBall(actor.BallState{Position: mgl64.Vec3{0, -0.7, 0}, Velocity: mgl64.Vec3{1, 2, 0}}, 0.5)
	params := noKickParams()
	params.MinKick, params.MaxKick = 5, 10

	r := NewResolver(params, rng.New(1))
	r.Begin(Motion{})

	contact, _ := Detect(floor(), ball, 1)
	resp := r.Resolve(&contact)

	assert.False(t, resp.Approaching)
	assert.False(t, resp.Kicked)
	assert.Equal(t, mgl64.Vec3{1, 2, 0}, ball.Velocity)
	assert.InDelta(t, -0.5, ball.Position.Y(), 1e-12)
}

func TestResolve_KickFromSource(t *testing.T) {
	ball := actor.NewBall(actor.BallState{Position: mgl64.Vec3{0, -0.7, 0}, Velocity: mgl64.Vec3{0, -4, 0}}, 0.5)
	params := noKickParams()
	params.CollisionFriction = 1
	params.MinKick, params.MaxKick = 2, 6

	// force = 2 + 0.5*4 = 4, azimuth = 0.25 * 2π = π/2
	r := NewResolver(params, &rng.Sequence{Values: []float64{0.5, 0.25}})
	r.Begin(Motion{})

	contact, _ := Detect(floor(), ball, 1)
	resp := r.Resolve(&contact)

	require.True(t, resp.Kicked)
	assert.InDelta(t, 4.0, resp.Kick.Force, 1e-12)
	assert.InDelta(t, 90.0, resp.Kick.AzimuthDegrees(), 1e-9)
	assert.InDelta(t, 0.0, ball.Velocity.X(), 1e-12)
	assert.InDelta(t, 8.0, ball.Velocity.Y(), 1e-12)
}

func TestResolve_CornerPolicies(t *testing.T) {
	motion := Motion{AngularVelocity: mgl64.Vec3{0, 0, 1}}

	tests := []struct {
		name       string
		policy     CornerPolicy
		wantNudged bool
		wantKick   float64
	}{
		{"roll with the spin", CornerRoll, true, 0},
		{"reduced kick", CornerReducedKick, false, 1},
		{"no special case", CornerNone, false, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := noKickParams()
			params.CollisionFriction = 1
			params.MinKick, params.MaxKick = 4, 4
			params.CornerPolicy = tt.policy

			ball := actor.NewBall(actor.BallState{Position: mgl64.Vec3{9.8, -0.8, 0}, Velocity: mgl64.Vec3{0, -2, 0}}, 0.5)
			r := NewResolver(params, &rng.Sequence{Values: []float64{0}})
			r.Begin(motion)

			contact, ok := Detect(floor(), ball, 1)
			require.True(t, ok)
			require.True(t, contact.Corner)
			resp := r.Resolve(&contact)

			assert.True(t, resp.Corner)
			assert.Equal(t, tt.wantNudged, resp.Nudged)
			assert.InDelta(t, tt.wantKick, resp.Kick.Force, 1e-12)

			if tt.policy == CornerRoll {
				// surface velocity at (9.8, -1) is ω × p = (1, 9.8), scaled by 0.1
				assert.InDelta(t, 0.1, ball.Velocity.X(), 1e-12)
				assert.InDelta(t, 2+0.98, ball.Velocity.Y(), 1e-12)
			}
		})
	}
}

func TestResolve_CornerHandledOncePerTick(t *testing.T) {
	params := noKickParams()
	params.CollisionFriction = 1

	r := NewResolver(params, rng.New(3))
	r.Begin(Motion{AngularVelocity: mgl64.Vec3{0, 0, 1}})

	nudges := 0
	for range 2 {
		ball := actor.NewBall(actor.BallState{Position: mgl64.Vec3{9.8, -0.8, 0}, Velocity: mgl64.Vec3{0, -2, 0}}, 0.5)
		contact, _ := Detect(floor(), ball, 1)
		if r.Resolve(&contact).Nudged {
			nudges++
		}
	}
	assert.Equal(t, 1, nudges)

	r.Begin(Motion{AngularVelocity: mgl64.Vec3{0, 0, 1}})
	ball := actor.NewBall(actor.BallState{Position: mgl64.Vec3{9.8, -0.8, 0}, Velocity: mgl64.Vec3{0, -2, 0}}, 0.5)
	contact, _ := Detect(floor(), ball, 1)
	assert.True(t, r.Resolve(&contact).Nudged, "a new tick handles corners again")
}

func TestResolve_WallDragAndCeiling(t *testing.T) {
	params := noKickParams()
	params.CollisionFriction = 1
	params.WallDrag = 0.5
	params.MaxVelocity = 3

	ball := actor.NewBall(actor.BallState{Position: mgl64.Vec3{0, -0.7, 0}, Velocity: mgl64.Vec3{0, -2, 0}}, 0.5)
	r := NewResolver(params, rng.New(1))
	// Spinning clockwise about a center above the floor: the floor moves toward -x
	r.Begin(Motion{Center: mgl64.Vec3{0, 5, 0}, AngularVelocity: mgl64.Vec3{0, 0, -1}})

	contact, _ := Detect(floor(), ball, 1)
	r.Resolve(&contact)

	// surface velocity at (0,-1) is ω × (0,-6) = (-6, 0)
	assert.InDelta(t, -3.0, ball.Velocity.X(), 1e-12, "drag of -3 is within the ceiling")
	assert.InDelta(t, 2.0, ball.Velocity.Y(), 1e-12)

	params.WallDrag = 1
	r = NewResolver(params, rng.New(1))
	r.Begin(Motion{Center: mgl64.Vec3{0, 5, 0}, AngularVelocity: mgl64.Vec3{0, 0, -1}})
	ball = actor.NewBall(actor.BallState{Position: mgl64.Vec3{0, -0.7, 0}, Velocity: mgl64.Vec3{0, -2, 0}}, 0.5)
	contact, _ = Detect(floor(), ball, 1)
	r.Resolve(&contact)

	assert.Equal(t, -3.0, ball.Velocity.X(), "clamped to the ceiling")
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestBounceAngle(t *testing.T) {
	n := mgl64.Vec3{0, 1, 0}

	assert.InDelta(t, 0.0, BounceAngle(mgl64.Vec3{0, -3, 0}, n), 1e-9)
	assert.InDelta(t, 45.0, BounceAngle(mgl64.Vec3{1, -1, 0}, n), 1e-9)
	assert.InDelta(t, 90.0, BounceAngle(mgl64.Vec3{2, 0, 0}, n), 1e-9)
	assert.Equal(t, 0.0, BounceAngle(mgl64.Vec3{}, n), "zero velocity reports the default angle")
}

func TestReflect(t *testing.T) {
	got := Reflect(mgl64.Vec3{1, -2, 3}, mgl64.Vec3{0, 1, 0})
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, got)
}

func TestParseCornerPolicy(t *testing.T) {
	for _, p := range []CornerPolicy{CornerRoll, CornerReducedKick, CornerNone} {
		parsed, ok := ParseCornerPolicy(p.String())
		assert.True(t, ok)
		assert.Equal(t, p, parsed)
	}

	_, ok := ParseCornerPolicy("bounce")
	assert.False(t, ok)
	assert.Equal(t, "unknown", CornerPolicy(9).String())
}

func TestSampleKick(t *testing.T) {
	src := rng.New(11)

	for range 500 {
		k2 := SampleKick(src, 3, 8, 2)
		assert.GreaterOrEqual(t, k2.Force, 3.0)
		assert.LessOrEqual(t, k2.Force, 8.0)
		assert.Equal(t, 0.0, k2.Vector.Z(), "2D kicks stay in the plane")
		assert.InDelta(t, k2.Force, k2.Vector.Len(), 1e-9)

		k3 := SampleKick(src, 0.4, 15, 3)
		assert.InDelta(t, k3.Force, k3.Vector.Len(), 1e-9)
		assert.GreaterOrEqual(t, k3.Polar, 0.0)
		assert.LessOrEqual(t, k3.Polar, math.Pi)
	}

	zero := SampleKick(src, 0, 0, 3)
	assert.Equal(t, 0.0, zero.Vector.Len())
}
