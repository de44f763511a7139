package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BallState is the linear state of the ball, used to start or reset a run
type BallState struct {
	Position mgl64.Vec3 `json:"position" yaml:"position"`
	Velocity mgl64.Vec3 `json:"velocity" yaml:"velocity"`
}

// Ball is the point mass confined in the boundary. Its mass is implicitly 1
// and it carries no angular state.
type Ball struct {
	PreviousPosition mgl64.Vec3
	Position         mgl64.Vec3
	Velocity         mgl64.Vec3 // units/s
	Radius           float64
}

// NewBall creates a ball at rest in the given state
func NewBall(state BallState, radius float64) *Ball {
	return &Ball{
		PreviousPosition: state.Position,
		Position:         state.Position,
		Velocity:         state.Velocity,
		Radius:           radius,
	}
}

// Integrate advances the ball one tick with semi-implicit Euler:
// the velocity is updated first, damped, then moves the position.
// friction is a per-tick factor in (0, 1).
func (b *Ball) Integrate(dt float64, gravity mgl64.Vec3, friction float64) {
	b.PreviousPosition = b.Position

	b.Velocity = b.Velocity.Add(gravity.Mul(dt))
	b.Velocity = b.Velocity.Mul(friction)
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
}

// ClampVelocity bounds every velocity component to [-limit, limit].
// It reports whether any component was clamped.
func (b *Ball) ClampVelocity(limit float64) bool {
	clamped := false
	for i := range 3 {
		v := mgl64.Clamp(b.Velocity[i], -limit, limit)
		if v != b.Velocity[i] {
			b.Velocity[i] = v
			clamped = true
		}
	}
	return clamped
}

// Reset moves the ball to state, discarding its previous motion
func (b *Ball) Reset(state BallState) {
	b.PreviousPosition = state.Position
	b.Position = state.Position
	b.Velocity = state.Velocity
}

func (b *Ball) State() BallState {
	return BallState{Position: b.Position, Velocity: b.Velocity}
}

// Speed is the magnitude of the velocity
func (b *Ball) Speed() float64 {
	return b.Velocity.Len()
}

// Heading is the direction of motion in the XY plane, in degrees [0, 360).
// A ball at rest reports 0.
func (b *Ball) Heading() float64 {
	if math.Abs(b.Velocity.X()) < Epsilon && math.Abs(b.Velocity.Y()) < Epsilon {
		return 0
	}
	deg := mgl64.RadToDeg(math.Atan2(b.Velocity.Y(), b.Velocity.X()))
	return math.Mod(deg+360, 360)
}

// GetAABB returns the bounding box of the ball at its current position
func (b *Ball) GetAABB() AABB {
	r := mgl64.Vec3{b.Radius, b.Radius, b.Radius}
	return AABB{Min: b.Position.Sub(r), Max: b.Position.Add(r)}
}
