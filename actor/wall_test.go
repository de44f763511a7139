package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Segment Wall Tests
// =============================================================================

func TestNewSegmentWall_InwardNormal(t *testing.T) {
	tests := []struct {
		name string
		a, b mgl64.Vec3
	}{
		{"left to right", mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0}},
		{"right to left", mgl64.Vec3{1, -1, 0}, mgl64.Vec3{-1, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewSegmentWall(0, "bottom", tt.a, tt.b, mgl64.Vec3{})

			require.False(t, w.Degenerate)
			assert.True(t, w.Normal.ApproxEqual(mgl64.Vec3{0, 1, 0}), "normal %v must face the center", w.Normal)
			assert.InDelta(t, 1.0, w.Offset, 1e-12)
			assert.InDelta(t, 2.0, w.Length, 1e-12)
			assert.InDelta(t, 0.0, w.Normal.Dot(w.Tangent), 1e-12)
		})
	}
}

func TestSegmentWall_SignedDistance(t *testing.T) {
	w := NewSegmentWall(0, "", mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0}, mgl64.Vec3{})

	assert.InDelta(t, 1.5, w.SignedDistance(mgl64.Vec3{0, 0.5, 0}), 1e-12)
	assert.InDelta(t, 0.0, w.SignedDistance(mgl64.Vec3{7, -1, 0}), 1e-12)
	assert.InDelta(t, -0.5, w.SignedDistance(mgl64.Vec3{0, -1.5, 0}), 1e-12, "behind the wall is negative")
}

func TestSegmentWall_ClosestPoint(t *testing.T) {
	w := NewSegmentWall(0, "", mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0}, mgl64.Vec3{})

	tests := []struct {
		name        string
		point       mgl64.Vec3
		wantClosest mgl64.Vec3
		wantEdge    float64
	}{
		{"above the middle", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, -1, 0}, 1},
		{"near the right end", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.5, -1, 0}, 0.5},
		{"clamped past the right end", mgl64.Vec3{3, 0, 0}, mgl64.Vec3{1, -1, 0}, 0},
		{"clamped past the left end", mgl64.Vec3{-4, -3, 0}, mgl64.Vec3{-1, -1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closest, edge := w.ClosestPoint(tt.point)
			assert.True(t, closest.ApproxEqual(tt.wantClosest), "closest = %v, want %v", closest, tt.wantClosest)
			assert.InDelta(t, tt.wantEdge, edge, 1e-12)
		})
	}

	assert.InDelta(t, math.Sqrt(5), w.Distance(mgl64.Vec3{3, 0, 0}), 1e-12)
}

func TestSegmentWall_Within(t *testing.T) {
	w := NewSegmentWall(0, "", mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0}, mgl64.Vec3{})

	assert.True(t, w.Within(mgl64.Vec3{0, 0, 0}))
	assert.True(t, w.Within(mgl64.Vec3{0.9, -5, 0}), "behind the wall but inside its extent")
	assert.False(t, w.Within(mgl64.Vec3{3, 0, 0}))
}

func TestSegmentWall_Degenerate(t *testing.T) {
	p := mgl64.Vec3{1, 1, 0}
	w := NewSegmentWall(0, "", p, p, mgl64.Vec3{})

	assert.True(t, w.Degenerate)
	assert.True(t, math.IsInf(w.SignedDistance(mgl64.Vec3{}), 1))
	assert.False(t, w.Within(mgl64.Vec3{}))

	closest, edge := w.ClosestPoint(mgl64.Vec3{5, 5, 0})
	assert.Equal(t, p, closest)
	assert.Equal(t, 0.0, edge)
}

// =============================================================================
// Quad Wall Tests
// =============================================================================

func bottomFace() Wall {
	return NewQuadWall(3, "Bottom", [4]mgl64.Vec3{
		{-1, -1, -1},
		{1, -1, -1},
		{1, 1, -1},
		{-1, 1, -1},
	}, mgl64.Vec3{})
}

func TestNewQuadWall(t *testing.T) {
	w := bottomFace()

	require.False(t, w.Degenerate)
	assert.Equal(t, WallKindQuad, w.Kind)
	assert.True(t, w.Normal.ApproxEqual(mgl64.Vec3{0, 0, 1}))
	assert.InDelta(t, 1.0, w.Offset, 1e-12)
	assert.True(t, w.Midpoint().ApproxEqual(mgl64.Vec3{0, 0, -1}))
}

func TestQuadWall_ClosestPoint(t *testing.T) {
	w := bottomFace()

	tests := []struct {
		name        string
		point       mgl64.Vec3
		wantClosest mgl64.Vec3
		wantEdge    float64
	}{
		{"center of face", mgl64.Vec3{0, 0, 3}, mgl64.Vec3{0, 0, -1}, 1},
		{"near an edge", mgl64.Vec3{0.5, 0, 3}, mgl64.Vec3{0.5, 0, -1}, 0.5},
		{"clamped to a corner", mgl64.Vec3{5, 5, 0}, mgl64.Vec3{1, 1, -1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closest, edge := w.ClosestPoint(tt.point)
			assert.True(t, closest.ApproxEqual(tt.wantClosest), "closest = %v, want %v", closest, tt.wantClosest)
			assert.InDelta(t, tt.wantEdge, edge, 1e-12)
		})
	}
}

func TestQuadWall_Degenerate(t *testing.T) {
	w := NewQuadWall(0, "", [4]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}, mgl64.Vec3{0, 1, 0})

	assert.True(t, w.Degenerate, "collinear vertices have no normal")
}

func TestWall_Clone(t *testing.T) {
	w := bottomFace()
	c := w.Clone()
	c.Vertices[0] = mgl64.Vec3{9, 9, 9}

	assert.Equal(t, mgl64.Vec3{-1, -1, -1}, w.Vertices[0])
}

func TestWall_EdgeProximity(t *testing.T) {
	w := NewSegmentWall(0, "", mgl64.Vec3{-10, -1, 0}, mgl64.Vec3{10, -1, 0}, mgl64.Vec3{})

	assert.InDelta(t, 10.0, w.EdgeProximity(mgl64.Vec3{0, 0, 0}), 1e-12)
	assert.InDelta(t, 1.0, w.EdgeProximity(mgl64.Vec3{9, 3, 0}), 1e-12)
	assert.InDelta(t, 0.0, w.EdgeProximity(mgl64.Vec3{15, 0, 0}), 1e-12, "clamped beyond the endpoint")
}
