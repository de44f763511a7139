// Package spin drives the rotation of the boundary and its random reversals.
package spin

import (
	"github.com/akmonengine/tumbler/rng"
	"github.com/go-gl/mathgl/mgl64"
)

// Policy selects which axes flip on a reversal
type Policy int

const (
	// FlipAll reverses every axis together
	FlipAll Policy = iota
	// FlipRandomAxis reverses one spinning axis chosen at random
	FlipRandomAxis
)

func (p Policy) String() string {
	switch p {
	case FlipAll:
		return "all"
	case FlipRandomAxis:
		return "random-axis"
	default:
		return "unknown"
	}
}

// Direction is the sign of the angular velocity on one axis
type Direction float64

const (
	CounterClockwise Direction = 1
	Clockwise        Direction = -1
)

func (d Direction) String() string {
	if d < 0 {
		return "clockwise"
	}
	return "counter-clockwise"
}

// Reversal records one flip of the spin direction
type Reversal struct {
	Axes       [3]bool // which axes flipped
	Directions [3]Direction
	At         float64 // simulated seconds
	Manual     bool    // triggered externally rather than by the dwell timer
}

// State is a read-only view of the scheduler
type State struct {
	Angles          mgl64.Vec3   `json:"angles"`
	AngularVelocity mgl64.Vec3   `json:"angular_velocity"`
	Directions      [3]Direction `json:"directions"`
	Dwell           float64      `json:"dwell"`
	DwellRemaining  float64      `json:"dwell_remaining"`
	Reversals       int          `json:"reversals"`
	LastReversalAt  float64      `json:"last_reversal_at"`
}

// Config is the constant part of a Scheduler
type Config struct {
	Speed      mgl64.Vec3 // rad/s magnitude per axis (pitch, yaw, roll)
	Directions [3]Direction
	MinDwell   float64 // seconds
	MaxDwell   float64 // seconds
	Policy     Policy
}

// Scheduler owns the rotation angles and flips the spin direction after a
// dwell time sampled uniformly from [MinDwell, MaxDwell].
type Scheduler struct {
	config Config
	src    rng.Source

	angles     mgl64.Vec3
	directions [3]Direction
	time       float64

	dwell          float64
	dwellRemaining float64
	reversals      int
	lastReversalAt float64
}

// NewScheduler creates a scheduler and samples its first dwell
func NewScheduler(config Config, src rng.Source) *Scheduler {
	s := &Scheduler{
		config:     config,
		src:        src,
		directions: config.Directions,
	}
	for i, d := range s.directions {
		if d == 0 {
			s.directions[i] = CounterClockwise
		}
	}
	s.resample()

	return s
}

// AngularVelocity returns the signed angular velocity per axis
func (s *Scheduler) AngularVelocity() mgl64.Vec3 {
	return mgl64.Vec3{
		s.config.Speed.X() * float64(s.directions[0]),
		s.config.Speed.Y() * float64(s.directions[1]),
		s.config.Speed.Z() * float64(s.directions[2]),
	}
}

// Angles returns the accumulated rotation (pitch, yaw, roll)
func (s *Scheduler) Angles() mgl64.Vec3 {
	return s.angles
}

func (s *Scheduler) Directions() [3]Direction {
	return s.directions
}

// Step advances the rotation by dt seconds. When the dwell expires inside the
// tick, the angle is integrated up to the expiry instant with the old sign and
// the remainder with the new one, so reversals land exactly on the dwell.
func (s *Scheduler) Step(dt float64) []Reversal {
	var reversals []Reversal

	remaining := dt
	for remaining > 0 && s.dwellRemaining <= remaining {
		part := s.dwellRemaining
		s.rotate(part)
		remaining -= part
		reversals = append(reversals, s.reverse(false))
	}

	s.rotate(remaining)
	s.dwellRemaining -= remaining

	return reversals
}

// Reverse flips the direction immediately, as an external trigger, and resamples the dwell
func (s *Scheduler) Reverse() Reversal {
	return s.reverse(true)
}

// State returns a copy of the scheduler state for presentation
func (s *Scheduler) State() State {
	return State{
		Angles:          s.angles,
		AngularVelocity: s.AngularVelocity(),
		Directions:      s.directions,
		Dwell:           s.dwell,
		DwellRemaining:  s.dwellRemaining,
		Reversals:       s.reversals,
		LastReversalAt:  s.lastReversalAt,
	}
}

func (s *Scheduler) rotate(dt float64) {
	if dt <= 0 {
		return
	}
	s.angles = s.angles.Add(s.AngularVelocity().Mul(dt))
	s.time += dt
}

func (s *Scheduler) reverse(manual bool) Reversal {
	axes := s.pickAxes()
	for i, flip := range axes {
		if flip {
			s.directions[i] = -s.directions[i]
		}
	}

	s.reversals++
	s.lastReversalAt = s.time
	s.resample()

	return Reversal{
		Axes:       axes,
		Directions: s.directions,
		At:         s.time,
		Manual:     manual,
	}
}

func (s *Scheduler) pickAxes() [3]bool {
	var active []int
	for i := range 3 {
		if s.config.Speed[i] != 0 {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		active = []int{0, 1, 2}
	}

	var axes [3]bool
	switch s.config.Policy {
	case FlipRandomAxis:
		axes[active[s.src.IntN(len(active))]] = true
	default:
		for _, i := range active {
			axes[i] = true
		}
	}
	return axes
}

func (s *Scheduler) resample() {
	s.dwell = rng.Uniform(s.src, s.config.MinDwell, s.config.MaxDwell)
	s.dwellRemaining = s.dwell
}
