package constraint

import (
	"math"

	"github.com/akmonengine/tumbler/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultGuardPasses bounds the per-wall correction loop
const DefaultGuardPasses = 4

// retreatTolerance absorbs the rounding left by the per-wall pushes
const retreatTolerance = 1e-9

// Guard keeps the ball inside the boundary after collision handling, whatever
// the integrator and the kicks did during the tick.
type Guard struct {
	Passes      int
	MaxVelocity float64

	// Radial enables the coarse circumradius check for regular polygons.
	// It only runs after the per-wall correction.
	Radial       bool
	RadialMargin float64
}

// GuardReport tells which safety nets fired during Enforce
type GuardReport struct {
	Corrections    int  // per-wall pushes
	Fallback       bool // the exact line search toward the center was needed
	RadialClamped  bool
	VelocityCapped bool
}

// Intervened reports whether the ball position was changed
func (r GuardReport) Intervened() bool {
	return r.Corrections > 0 || r.Fallback || r.RadialClamped
}

// Enforce restores the containment invariant: every non-degenerate wall ends
// at least one radius away from the ball center.
func (g *Guard) Enforce(ball *actor.Ball, walls []actor.Wall, center mgl64.Vec3, circumradius float64) GuardReport {
	var report GuardReport
	radius := ball.Radius

	// ========== PER-WALL CORRECTION ==========
	passes := max(g.Passes, 1)
	for range passes {
		corrected := false
		for i := range walls {
			w := &walls[i]
			if w.Degenerate {
				continue
			}

			distance := w.SignedDistance(ball.Position)
			if distance >= radius {
				continue
			}

			ball.Position = ball.Position.Add(w.Normal.Mul(radius - distance))
			if ball.Velocity.Dot(w.Normal) < 0 {
				ball.Velocity = Reflect(ball.Velocity, w.Normal)
			}
			report.Corrections++
			corrected = true
		}
		if !corrected {
			break
		}
	}

	// ========== EXACT FALLBACK ==========
	// Pushing out of one wall near a corner can push into its neighbour. The
	// center satisfies every wall, so walk toward it just far enough.
	if t := g.retreat(ball.Position, walls, center, radius); t > 0 {
		ball.Position = ball.Position.Add(center.Sub(ball.Position).Mul(t))
		report.Fallback = true
	}

	// ========== RADIAL CHECK ==========
	if g.Radial {
		limit := circumradius - radius - g.RadialMargin
		offset := ball.Position.Sub(center)
		if d := offset.Len(); limit > 0 && d > limit && d > actor.Epsilon {
			direction := offset.Mul(1.0 / d)
			ball.Position = center.Add(direction.Mul(limit))
			if outward := ball.Velocity.Dot(direction); outward > 0 {
				ball.Velocity = Reflect(ball.Velocity, direction)
			}
			report.RadialClamped = true
		}
	}

	// ========== VELOCITY CEILING ==========
	if g.MaxVelocity > 0 {
		report.VelocityCapped = ball.ClampVelocity(g.MaxVelocity)
	}

	return report
}

// retreat returns the smallest fraction t in [0, 1] of the way from position to
// center at which every wall is at least radius away. Each wall distance is
// linear along that segment, so t is solved per wall in closed form.
func (g *Guard) retreat(position mgl64.Vec3, walls []actor.Wall, center mgl64.Vec3, radius float64) float64 {
	t := 0.0
	for i := range walls {
		w := &walls[i]
		if w.Degenerate {
			continue
		}

		dp := w.SignedDistance(position)
		if dp >= radius-retreatTolerance {
			continue
		}
		dc := w.SignedDistance(center)
		if dc-dp < actor.Epsilon {
			continue
		}
		t = math.Max(t, (radius-dp)/(dc-dp))
	}
	return math.Min(t, 1)
}
