package boundary

import (
	"math"

	"github.com/akmonengine/tumbler/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Face indices of a cube, named after their local (unrotated) outward axis
const (
	FaceRight = iota
	FaceLeft
	FaceTop
	FaceBottom
	FaceFront
	FaceBack
)

var faceNames = [6]string{"Right", "Left", "Top", "Bottom", "Front", "Back"}

// Corner indices of each face in local space. Bit 0 of a corner index is +X,
// bit 1 is +Y, bit 2 is +Z. Each face lists its corners around the perimeter.
var faceCorners = [6][4]int{
	FaceRight:  {1, 3, 7, 5},
	FaceLeft:   {0, 4, 6, 2},
	FaceTop:    {2, 6, 7, 3},
	FaceBottom: {0, 1, 5, 4},
	FaceFront:  {4, 5, 7, 6},
	FaceBack:   {0, 2, 3, 1},
}

// Cube is an axis-aligned cube in local space, rotated about its own center
type Cube struct {
	center     mgl64.Vec3
	halfExtent float64
}

func NewCube(center mgl64.Vec3, halfExtent float64) *Cube {
	return &Cube{center: center, halfExtent: halfExtent}
}

// Vertices rotates the eight local corners by pitch, then yaw, then roll
func (c *Cube) Vertices(angles mgl64.Vec3) []mgl64.Vec3 {
	transform := actor.NewTransformFromAngles(c.center, angles)
	h := c.halfExtent

	vertices := make([]mgl64.Vec3, 8)
	for i := range 8 {
		local := mgl64.Vec3{-h, -h, -h}
		if i&1 != 0 {
			local[0] = h
		}
		if i&2 != 0 {
			local[1] = h
		}
		if i&4 != 0 {
			local[2] = h
		}
		vertices[i] = transform.Apply(local)
	}
	return vertices
}

// Walls groups the rotated vertices into the six faces. Face normals follow the
// rotation; they are never the fixed world axes.
func (c *Cube) Walls(angles mgl64.Vec3) []actor.Wall {
	vertices := c.Vertices(angles)

	walls := make([]actor.Wall, 6)
	for face, corners := range faceCorners {
		var quad [4]mgl64.Vec3
		for k, idx := range corners {
			quad[k] = vertices[idx]
		}
		walls[face] = actor.NewQuadWall(face, faceNames[face], quad, c.center)
	}
	return walls
}

func (c *Cube) Center() mgl64.Vec3 {
	return c.center
}

func (c *Cube) Inradius() float64 {
	return c.halfExtent
}

func (c *Cube) Circumradius() float64 {
	return c.halfExtent * math.Sqrt(3)
}

func (c *Cube) Dimensions() int {
	return 3
}

// FaceName returns the label of a face index
func FaceName(face int) string {
	if face < 0 || face >= len(faceNames) {
		return ""
	}
	return faceNames[face]
}
