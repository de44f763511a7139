package constraint

import (
	"github.com/akmonengine/tumbler/actor"
	"github.com/akmonengine/tumbler/rng"
	"github.com/go-gl/mathgl/mgl64"
)

// WallContact is a penetration of the ball into one wall
type WallContact struct {
	Wall *actor.Wall
	Ball *actor.Ball

	Point        mgl64.Vec3 // closest point on the finite wall
	Distance     float64    // center to wall; negative when the center went through it
	Penetration  float64    // radius - distance
	EdgeDistance float64    // from Point to the nearest wall endpoint or face edge
	Corner       bool
}

// Detect tests the ball against the finite extent of wall. A ball whose center
// crossed the wall plane inside the wall extent is reported with a negative distance.
func Detect(wall *actor.Wall, ball *actor.Ball, cornerThreshold float64) (WallContact, bool) {
	if wall.Degenerate {
		return WallContact{}, false
	}

	point, edge := wall.ClosestPoint(ball.Position)
	distance := ball.Position.Sub(point).Len()
	if signed := wall.SignedDistance(ball.Position); signed < 0 && wall.Within(ball.Position) {
		distance = signed
	}

	if distance >= ball.Radius {
		return WallContact{}, false
	}

	return WallContact{
		Wall:         wall,
		Ball:         ball,
		Point:        point,
		Distance:     distance,
		Penetration:  ball.Radius - distance,
		EdgeDistance: edge,
		Corner:       edge < cornerThreshold,
	}, true
}

// SolvePosition pushes the ball along the wall normal until it is tangent to the wall
func (c *WallContact) SolvePosition() {
	if c.Penetration <= 0 {
		return
	}
	c.Ball.Position = c.Ball.Position.Add(c.Wall.Normal.Mul(c.Penetration))
}

// Response describes what a resolved contact did to the ball
type Response struct {
	Approaching bool // false when the wall swept into a ball already moving away
	BounceAngle float64
	Corner      bool
	Kicked      bool
	Kick        Kick
	Nudged      bool
}

// Resolver applies the bounce response of each contact, in the order given.
// It keeps per-tick state so a corner shared by two walls is handled once.
type Resolver struct {
	Params Params

	src           rng.Source
	motion        Motion
	cornerHandled bool
}

func NewResolver(params Params, src rng.Source) *Resolver {
	return &Resolver{Params: params, src: src}
}

// Begin starts a new tick with the boundary rotation of that tick
func (r *Resolver) Begin(motion Motion) {
	r.motion = motion
	r.cornerHandled = false
}

// Resolve applies the velocity response, then the positional correction
func (r *Resolver) Resolve(c *WallContact) Response {
	resp := r.SolveVelocity(c)
	c.SolvePosition()
	return resp
}

// SolveVelocity reflects the ball, perturbs it with a kick (or the corner
// response), applies wall drag and collision friction, then clamps it.
func (r *Resolver) SolveVelocity(c *WallContact) Response {
	ball := c.Ball
	normal := c.Wall.Normal

	resp := Response{
		BounceAngle: BounceAngle(ball.Velocity, normal),
		Corner:      c.Corner,
	}

	// Separating already: only the positional correction applies
	if ball.Velocity.Dot(normal) >= 0 {
		return resp
	}
	resp.Approaching = true

	// ========== REFLECTION ==========
	ball.Velocity = Reflect(ball.Velocity, normal)

	surface := r.motion.VelocityAt(c.Point)

	// ========== KICK / CORNER ==========
	if c.Corner && r.Params.CornerPolicy != CornerNone {
		if !r.cornerHandled {
			switch r.Params.CornerPolicy {
			case CornerRoll:
				ball.Velocity = ball.Velocity.Add(surface.Mul(r.Params.CornerNudge))
				resp.Nudged = true
			case CornerReducedKick:
				resp.Kick = SampleKick(r.src, r.Params.MinKick, r.Params.MaxKick, r.Params.Dimensions).Scale(r.Params.CornerKickScale)
				resp.Kicked = resp.Kick.Force > 0
				ball.Velocity = ball.Velocity.Add(resp.Kick.Vector)
			}
			r.cornerHandled = true
		}
	} else {
		resp.Kick = SampleKick(r.src, r.Params.MinKick, r.Params.MaxKick, r.Params.Dimensions)
		resp.Kicked = resp.Kick.Force > 0
		ball.Velocity = ball.Velocity.Add(resp.Kick.Vector)
	}

	// ========== WALL DRAG ==========
	if r.Params.WallDrag > 0 {
		tangential := surface.Sub(normal.Mul(surface.Dot(normal)))
		ball.Velocity = ball.Velocity.Add(tangential.Mul(r.Params.WallDrag))
	}

	// ========== FRICTION & CEILING ==========
	ball.Velocity = ball.Velocity.Mul(r.Params.CollisionFriction)
	ball.ClampVelocity(r.Params.MaxVelocity)

	return resp
}
