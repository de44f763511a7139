package boundary

import (
	"fmt"
	"math"

	"github.com/akmonengine/tumbler/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const HexagonSides = 6

// Polygon is a regular polygon in the XY plane, spinning about Z
type Polygon struct {
	center mgl64.Vec3
	radius float64
	sides  int
}

// NewPolygon creates a regular polygon with the given circumradius
func NewPolygon(center mgl64.Vec3, radius float64, sides int) *Polygon {
	return &Polygon{center: center, radius: radius, sides: sides}
}

// NewHexagon creates a regular hexagon with the given circumradius
func NewHexagon(center mgl64.Vec3, radius float64) *Polygon {
	return NewPolygon(center, radius, HexagonSides)
}

// Vertices places vertex i at center + R·(cos(θ + i·2π/K), sin(θ + i·2π/K)),
// θ being the roll angle.
func (p *Polygon) Vertices(angles mgl64.Vec3) []mgl64.Vec3 {
	theta := angles.Z()
	step := 2 * math.Pi / float64(p.sides)

	vertices := make([]mgl64.Vec3, p.sides)
	for i := range p.sides {
		a := theta + float64(i)*step
		vertices[i] = p.center.Add(mgl64.Vec3{p.radius * math.Cos(a), p.radius * math.Sin(a), 0})
	}
	return vertices
}

// Walls joins consecutive vertices; wall i runs from vertex i to vertex i+1
func (p *Polygon) Walls(angles mgl64.Vec3) []actor.Wall {
	vertices := p.Vertices(angles)

	walls := make([]actor.Wall, p.sides)
	for i := range p.sides {
		walls[i] = actor.NewSegmentWall(i, fmt.Sprintf("Wall %d", i), vertices[i], vertices[(i+1)%p.sides], p.center)
	}
	return walls
}

func (p *Polygon) Center() mgl64.Vec3 {
	return p.center
}

func (p *Polygon) Inradius() float64 {
	return p.radius * math.Cos(math.Pi/float64(p.sides))
}

func (p *Polygon) Circumradius() float64 {
	return p.radius
}

func (p *Polygon) Dimensions() int {
	return 2
}

func (p *Polygon) Sides() int {
	return p.sides
}
