package tumbler

import (
	"math"

	"github.com/akmonengine/tumbler/actor"
	"github.com/akmonengine/tumbler/spin"
	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot is the state of a simulation after a tick. It shares no memory
// with the simulation.
type Snapshot struct {
	Tick       uint64          `json:"tick"`
	Time       float64         `json:"time"` // simulated seconds
	Dimensions int             `json:"dimensions"`
	Ball       actor.BallState `json:"ball"`
	Radius     float64         `json:"radius"`
	Center     mgl64.Vec3      `json:"center"`
	Walls      []actor.Wall    `json:"-"`
	Spin       spin.State      `json:"spin"`

	LastCollision *CollisionEvent `json:"last_collision,omitempty"`
	Bounces       int             `json:"bounces"`
	Corrections   int             `json:"corrections"` // ticks where the containment guard moved the ball
}

// Speed is the ball speed in units/s
func (s Snapshot) Speed() float64 {
	b := s.ball()
	return b.Speed()
}

// Heading is the direction of motion in the XY plane, in degrees [0, 360)
func (s Snapshot) Heading() float64 {
	b := s.ball()
	return b.Heading()
}

func (s Snapshot) ball() actor.Ball {
	return actor.Ball{Position: s.Ball.Position, Velocity: s.Ball.Velocity, Radius: s.Radius}
}

// SinceReversal is the simulated time since the last spin reversal
func (s Snapshot) SinceReversal() float64 {
	return s.Time - s.Spin.LastReversalAt
}

// SpinLabel names the roll direction, or the direction of every axis in 3D
func (s Snapshot) SpinLabel() string {
	if s.Dimensions == 3 {
		label := ""
		for i, axis := range []string{"pitch", "yaw", "roll"} {
			if i > 0 {
				label += " "
			}
			sign := "+"
			if s.Spin.Directions[i] < 0 {
				sign = "-"
			}
			label += axis + sign
		}
		return label
	}
	return s.Spin.Directions[2].String()
}

// Clearance is the smallest distance from the ball surface to a wall.
// It is negative when the ball overlaps a wall.
func (s Snapshot) Clearance() float64 {
	clearance := math.Inf(1)
	for i := range s.Walls {
		if s.Walls[i].Degenerate {
			continue
		}
		clearance = math.Min(clearance, s.Walls[i].SignedDistance(s.Ball.Position)-s.Radius)
	}
	return clearance
}

// MaxVelocityComponent is the largest absolute velocity component
func (s Snapshot) MaxVelocityComponent() float64 {
	v := s.Ball.Velocity
	return math.Max(math.Abs(v.X()), math.Max(math.Abs(v.Y()), math.Abs(v.Z())))
}
