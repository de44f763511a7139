// Package tumbler simulates a ball under gravity and friction, confined in a
// rotating convex boundary: a regular polygon in 2D or a cube in 3D.
//
// A Simulation owns every piece of mutable state. Callers drive it with
// Advance, one tick at a time, and read back a Snapshot.
package tumbler

import (
	"math"
	"sync"

	"github.com/akmonengine/tumbler/actor"
	"github.com/akmonengine/tumbler/boundary"
	"github.com/akmonengine/tumbler/constraint"
	"github.com/akmonengine/tumbler/rng"
	"github.com/akmonengine/tumbler/spin"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// CollisionEvent describes the latest bounce, for presentation only.
// Physics never reads it back.
type CollisionEvent struct {
	Wall        int     `json:"wall"`
	WallName    string  `json:"wall_name"`
	BounceAngle float64 `json:"bounce_angle"` // degrees between the incoming velocity and the wall normal
	KickForce   float64 `json:"kick_force"`
	KickAngle   float64 `json:"kick_angle"` // azimuth, degrees
	KickPolar   float64 `json:"kick_polar"` // degrees from +Z, 3D only
	Corner      bool    `json:"corner"`
	Flash       float64 `json:"flash"` // seconds of visual feedback left
	Tick        uint64  `json:"tick"`
}

// Option configures a Simulation
type Option func(*Simulation)

// WithSource replaces the seeded random source
func WithSource(src rng.Source) Option {
	return func(s *Simulation) {
		s.src = src
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// WithEvents shares an event manager, typically to subscribe before the first tick
func WithEvents(events *Events) Option {
	return func(s *Simulation) {
		s.Events = events
	}
}

type command struct {
	toggle bool
	reset  *actor.BallState
}

type Simulation struct {
	Config Config
	Events *Events

	shape     boundary.Shape
	ball      *actor.Ball
	walls     []actor.Wall
	gravity   mgl64.Vec3
	scheduler *spin.Scheduler
	resolver  *constraint.Resolver
	guard     constraint.Guard

	src    rng.Source
	logger *zap.Logger

	mu      sync.Mutex
	pending []command

	tick          uint64
	time          float64
	lastCollision *CollisionEvent
	bounces       int
	corrections   int
}

// New validates cfg and builds a simulation with the ball at its initial state
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		Config:  cfg,
		shape:   cfg.BuildShape(),
		gravity: cfg.gravity(),
		guard:   cfg.guard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = rng.New(cfg.Seed)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.Events == nil {
		s.Events = NewEvents()
	}

	s.ball = actor.NewBall(s.initialState(), cfg.BallRadius)
	s.scheduler = spin.NewScheduler(cfg.spinConfig(), s.src)
	s.resolver = constraint.NewResolver(cfg.collisionParams(), s.src)
	s.walls = s.shape.Walls(s.scheduler.Angles())

	return s, nil
}

func (s *Simulation) initialState() actor.BallState {
	return actor.BallState{Position: s.Config.InitialPosition, Velocity: s.Config.InitialVelocity}
}

// InitialState is the ball state the simulation started from
func (s *Simulation) InitialState() actor.BallState {
	return s.initialState()
}

// Advance runs one tick of dt seconds and returns the resulting state
func (s *Simulation) Advance(dt float64) Snapshot {
	s.applyPending()

	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return s.Snapshot()
	}
	s.tick++

	// Phase 1: spin, reversals land exactly on their dwell
	for _, reversal := range s.scheduler.Step(dt) {
		s.reversed(reversal)
	}

	// Phase 2: walls rebuilt from the absolute angles
	s.walls = s.shape.Walls(s.scheduler.Angles())

	// Phase 3: gravity, friction, motion
	s.ball.Integrate(dt, s.gravity, s.Config.Friction)

	// Phase 4: per-wall collision response, in wall order
	s.resolver.Begin(constraint.Motion{
		Center:          s.shape.Center(),
		AngularVelocity: s.scheduler.AngularVelocity(),
	})
	s.fadeFlash(dt)
	for _, rc := range resolveCollisions(s.walls, s.ball, s.resolver) {
		s.recordContact(rc)
	}

	// Phase 5: containment, whatever happened above
	report := s.guard.Enforce(s.ball, s.walls, s.shape.Center(), s.shape.Circumradius())
	if report.Intervened() {
		s.corrections++
		s.Events.emit(ContainmentEvent{Report: report, Tick: s.tick})
		s.logger.Debug("containment guard intervened",
			zap.Uint64("tick", s.tick),
			zap.Int("corrections", report.Corrections),
			zap.Bool("fallback", report.Fallback),
			zap.Bool("radial", report.RadialClamped),
		)
	}

	s.time += dt
	s.Events.flush(s.tick)

	return s.Snapshot()
}

func (s *Simulation) recordContact(rc resolvedContact) {
	wall := rc.contact.Wall
	s.Events.recordContact(wall.Index, wall.Name)

	resp := rc.response
	if !resp.Approaching {
		return
	}
	s.bounces++

	event := CollisionEvent{
		Wall:        wall.Index,
		WallName:    wall.Name,
		BounceAngle: resp.BounceAngle,
		Corner:      resp.Corner,
		Tick:        s.tick,
	}
	if resp.Kicked {
		event.KickForce = resp.Kick.Force
		event.KickAngle = resp.Kick.AzimuthDegrees()
		if s.Config.Dimensions() == 3 {
			event.KickPolar = mgl64.RadToDeg(resp.Kick.Polar)
		}
		event.Flash = s.Config.FlashDuration
		s.Events.emit(KickEvent{Collision: event})
	}
	s.lastCollision = &event
}

func (s *Simulation) fadeFlash(dt float64) {
	if s.lastCollision != nil {
		s.lastCollision.Flash = math.Max(0, s.lastCollision.Flash-dt)
	}
}

func (s *Simulation) reversed(reversal spin.Reversal) {
	s.Events.emit(SpinReversedEvent{Reversal: reversal, Tick: s.tick})
	s.logger.Debug("spin reversed",
		zap.Uint64("tick", s.tick),
		zap.Float64("at", reversal.At),
		zap.Bool("manual", reversal.Manual),
		zap.Stringer("roll", reversal.Directions[2]),
	)
}

// Reset moves the ball to state immediately. The boundary keeps spinning.
func (s *Simulation) Reset(state actor.BallState) {
	s.ball.Reset(state)
	s.Events.forget()
	s.logger.Debug("ball reset", zap.Uint64("tick", s.tick))
}

// ToggleSpin queues a manual spin reversal for the next tick.
// It may be called from any goroutine.
func (s *Simulation) ToggleSpin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, command{toggle: true})
}

// RequestReset queues a Reset for the next tick. It may be called from any goroutine.
func (s *Simulation) RequestReset(state actor.BallState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, command{reset: &state})
}

func (s *Simulation) applyPending() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, cmd := range pending {
		switch {
		case cmd.toggle:
			s.reversed(s.scheduler.Reverse())
		case cmd.reset != nil:
			s.Reset(*cmd.reset)
		}
	}
}

// Shape returns the boundary the ball is confined in
func (s *Simulation) Shape() boundary.Shape {
	return s.shape
}

// Snapshot returns a copy of the current state, safe to hand to another goroutine
func (s *Simulation) Snapshot() Snapshot {
	walls := make([]actor.Wall, len(s.walls))
	for i, w := range s.walls {
		walls[i] = w.Clone()
	}

	var last *CollisionEvent
	if s.lastCollision != nil {
		c := *s.lastCollision
		last = &c
	}

	return Snapshot{
		Tick:          s.tick,
		Time:          s.time,
		Dimensions:    s.shape.Dimensions(),
		Ball:          s.ball.State(),
		Radius:        s.ball.Radius,
		Center:        s.shape.Center(),
		Walls:         walls,
		Spin:          s.scheduler.State(),
		LastCollision: last,
		Bounces:       s.bounces,
		Corrections:   s.corrections,
	}
}
