package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon guards every normalisation and division against degenerate geometry
const Epsilon = 1e-9

// WallKind represents the type of boundary wall
type WallKind int

const (
	// WallKindSegment is a 2D wall joining two vertices
	WallKindSegment WallKind = iota
	// WallKindQuad is a 3D rectangular face with four vertices
	WallKindQuad
)

// Wall is one bounding edge (2D) or face (3D) of the boundary, in world space.
// Normal always points inward, toward the boundary center.
type Wall struct {
	Index    int
	Name     string
	Kind     WallKind
	Vertices []mgl64.Vec3

	Normal  mgl64.Vec3 // Inward unit normal
	Tangent mgl64.Vec3 // Unit vector along the first edge
	Offset  float64    // Signed distance from the plane to the boundary center
	Length  float64    // Length of the first edge

	// Degenerate walls have a zero-length edge or no defined normal.
	// They are skipped by collision handling.
	Degenerate bool

	aabb AABB
}

// NewSegmentWall builds a 2D wall from a to b. The normal lies in the XY plane
// and is flipped, if needed, to face center.
func NewSegmentWall(index int, name string, a, b, center mgl64.Vec3) Wall {
	w := Wall{
		Index:    index,
		Name:     name,
		Kind:     WallKindSegment,
		Vertices: []mgl64.Vec3{a, b},
		aabb:     ComputeAABB(a, b),
	}

	edge := b.Sub(a)
	w.Length = edge.Len()
	if w.Length < Epsilon {
		w.Degenerate = true
		return w
	}

	w.Tangent = edge.Mul(1.0 / w.Length)
	w.Normal = mgl64.Vec3{-w.Tangent.Y(), w.Tangent.X(), 0}
	w.orient(center)

	return w
}

// NewQuadWall builds a rectangular 3D face. Vertices are ordered around the face,
// so v[0]->v[1] and v[0]->v[3] are its two perpendicular edges.
func NewQuadWall(index int, name string, v [4]mgl64.Vec3, center mgl64.Vec3) Wall {
	w := Wall{
		Index:    index,
		Name:     name,
		Kind:     WallKindQuad,
		Vertices: []mgl64.Vec3{v[0], v[1], v[2], v[3]},
		aabb:     ComputeAABB(v[:]...),
	}

	u := v[1].Sub(v[0])
	s := v[3].Sub(v[0])
	w.Length = u.Len()
	cross := u.Cross(s)
	if w.Length < Epsilon || s.Len() < Epsilon || cross.Len() < Epsilon {
		w.Degenerate = true
		return w
	}

	w.Tangent = u.Mul(1.0 / w.Length)
	w.Normal = cross.Normalize()
	w.orient(center)

	return w
}

func (w *Wall) orient(center mgl64.Vec3) {
	w.Offset = w.Normal.Dot(center.Sub(w.Vertices[0]))
	if w.Offset < 0 {
		w.Normal = w.Normal.Mul(-1)
		w.Offset = -w.Offset
	}
}

// GetAABB returns the bounding box of the wall vertices
func (w *Wall) GetAABB() AABB {
	return w.aabb
}

// SignedDistance is the distance from point to the wall plane (or line),
// positive on the inside of the boundary.
func (w *Wall) SignedDistance(point mgl64.Vec3) float64 {
	if w.Degenerate {
		return math.Inf(1)
	}
	return w.Normal.Dot(point.Sub(w.Vertices[0]))
}

// ClosestPoint returns the point of the finite wall closest to point, and the
// distance from that point to the nearest wall endpoint (2D) or face edge (3D).
func (w *Wall) ClosestPoint(point mgl64.Vec3) (mgl64.Vec3, float64) {
	origin := w.Vertices[0]
	d := point.Sub(origin)

	switch w.Kind {
	case WallKindQuad:
		u := w.Vertices[1].Sub(origin)
		s := w.Vertices[3].Sub(origin)
		lu, ls := u.Len(), s.Len()
		if lu < Epsilon || ls < Epsilon {
			return origin, 0
		}

		a := mgl64.Clamp(d.Dot(u)/(lu*lu), 0, 1)
		b := mgl64.Clamp(d.Dot(s)/(ls*ls), 0, 1)
		closest := origin.Add(u.Mul(a)).Add(s.Mul(b))

		edge := math.Min(math.Min(a*lu, (1-a)*lu), math.Min(b*ls, (1-b)*ls))
		return closest, edge

	default:
		if w.Length < Epsilon {
			return origin, 0
		}

		edgeVec := w.Vertices[1].Sub(origin)
		t := mgl64.Clamp(d.Dot(edgeVec)/(w.Length*w.Length), 0, 1)
		closest := origin.Add(edgeVec.Mul(t))

		return closest, math.Min(t*w.Length, (1-t)*w.Length)
	}
}

// Distance returns the distance from point to the finite wall
func (w *Wall) Distance(point mgl64.Vec3) float64 {
	closest, _ := w.ClosestPoint(point)
	return point.Sub(closest).Len()
}

// EdgeProximity is the distance from the closest wall point to the nearest
// endpoint (2D) or face edge (3D)
func (w *Wall) EdgeProximity(point mgl64.Vec3) float64 {
	_, edge := w.ClosestPoint(point)
	return edge
}

// Within reports whether the projection of point onto the wall plane falls
// inside the wall extent.
func (w *Wall) Within(point mgl64.Vec3) bool {
	if w.Degenerate {
		return false
	}
	projected := point.Sub(w.Normal.Mul(w.SignedDistance(point)))
	closest, _ := w.ClosestPoint(projected)

	return closest.ApproxEqualThreshold(projected, 1e-7)
}

// Midpoint returns the average of the wall vertices
func (w *Wall) Midpoint() mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, v := range w.Vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1.0 / float64(len(w.Vertices)))
}

// Clone returns a deep copy, so snapshots never alias the simulation's walls
func (w Wall) Clone() Wall {
	w.Vertices = append([]mgl64.Vec3(nil), w.Vertices...)
	return w
}
