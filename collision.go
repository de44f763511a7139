package tumbler

import (
	"github.com/akmonengine/tumbler/actor"
	"github.com/akmonengine/tumbler/constraint"
)

// BroadPhase performs the cheap rejection test of one wall: the ball and wall
// bounding boxes must overlap.
func BroadPhase(wall *actor.Wall, ball *actor.Ball) bool {
	if wall.Degenerate {
		return false
	}
	return wall.GetAABB().Overlaps(ball.GetAABB())
}

// NarrowPhase computes the exact contact against the finite wall
func NarrowPhase(wall *actor.Wall, ball *actor.Ball, cornerThreshold float64) (constraint.WallContact, bool) {
	return constraint.Detect(wall, ball, cornerThreshold)
}

// resolvedContact is one wall contact handled during a tick
type resolvedContact struct {
	contact  constraint.WallContact
	response constraint.Response
}

// resolveCollisions visits the walls in ascending index order. Each test uses
// the ball as left by the previous correction; later corrections win.
func resolveCollisions(walls []actor.Wall, ball *actor.Ball, resolver *constraint.Resolver) []resolvedContact {
	var resolved []resolvedContact

	for i := range walls {
		wall := &walls[i]
		if !BroadPhase(wall, ball) {
			continue
		}

		contact, ok := NarrowPhase(wall, ball, resolver.Params.CornerThreshold)
		if !ok {
			continue
		}

		resolved = append(resolved, resolvedContact{
			contact:  contact,
			response: resolver.Resolve(&contact),
		})
	}

	return resolved
}
