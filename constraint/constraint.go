package constraint

import (
	"math"

	"github.com/akmonengine/tumbler/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CornerPolicy decides the response when the ball hits a wall near a vertex
// (2D) or a face edge (3D), where two walls share the contact.
type CornerPolicy int

const (
	// CornerRoll replaces the kick by a nudge along the spinning wall's surface velocity
	CornerRoll CornerPolicy = iota
	// CornerReducedKick applies a scaled-down kick
	CornerReducedKick
	// CornerNone treats corners like any other contact
	CornerNone
)

func (p CornerPolicy) String() string {
	switch p {
	case CornerRoll:
		return "roll"
	case CornerReducedKick:
		return "reduced"
	case CornerNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseCornerPolicy maps a configuration name to a policy
func ParseCornerPolicy(name string) (CornerPolicy, bool) {
	switch name {
	case "roll", "":
		return CornerRoll, true
	case "reduced":
		return CornerReducedKick, true
	case "none":
		return CornerNone, true
	default:
		return CornerNone, false
	}
}

// Params are the collision constants shared by every contact
type Params struct {
	CollisionFriction float64 // velocity factor applied on every bounce, in (0, 1]
	MinKick           float64
	MaxKick           float64
	CornerThreshold   float64
	CornerPolicy      CornerPolicy
	CornerNudge       float64 // fraction of the wall surface velocity added at a corner
	CornerKickScale   float64 // kick scale under CornerReducedKick
	WallDrag          float64 // fraction of the tangential wall surface velocity transferred on a bounce
	MaxVelocity       float64 // per-component ceiling
	Dimensions        int     // 2 or 3, selects the kick sampling
}

// Motion is the rigid rotation of the boundary during the current tick
type Motion struct {
	Center          mgl64.Vec3
	AngularVelocity mgl64.Vec3 // rad/s per axis
}

// VelocityAt returns the velocity of the boundary surface at point.
// For a cube spinning on several axes at once the per-axis rates are used as
// the angular velocity vector, which is exact for a single axis.
func (m Motion) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	return m.AngularVelocity.Cross(point.Sub(m.Center))
}

// Reflect mirrors v about the plane of unit normal n: v - 2(v·n)n
func Reflect(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// BounceAngle is the angle in degrees between velocity and the wall normal,
// in [0, 90]. A zero velocity reports 0.
func BounceAngle(velocity, normal mgl64.Vec3) float64 {
	speed := velocity.Len()
	if speed < actor.Epsilon || normal.Len() < actor.Epsilon {
		return 0
	}
	cos := mgl64.Clamp(math.Abs(velocity.Dot(normal))/(speed*normal.Len()), 0, 1)
	return mgl64.RadToDeg(math.Acos(cos))
}
