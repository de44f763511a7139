// Package boundary generates the walls of the rotating container.
//
// Walls are rebuilt from the accumulated rotation angles on every call; no
// vertex is rotated incrementally, so the shape never drifts.
package boundary

import (
	"github.com/akmonengine/tumbler/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a regular convex container
type Shape interface {
	// Walls returns the ordered walls for the given orientation (pitch, yaw, roll).
	Walls(angles mgl64.Vec3) []actor.Wall
	// Vertices returns the world-space corners for the given orientation
	Vertices(angles mgl64.Vec3) []mgl64.Vec3
	Center() mgl64.Vec3
	// Inradius is the distance from the center to every wall
	Inradius() float64
	// Circumradius is the distance from the center to every vertex
	Circumradius() float64
	// Dimensions is 2 for planar shapes, 3 for solids
	Dimensions() int
}

// Contains reports whether a ball of the given radius at point lies inside every wall
func Contains(walls []actor.Wall, point mgl64.Vec3, radius float64, tolerance float64) bool {
	for i := range walls {
		if walls[i].Degenerate {
			continue
		}
		if walls[i].SignedDistance(point) < radius-tolerance {
			return false
		}
	}
	return true
}
