package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a pose in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// NewTransformFromAngles builds a transform rotated about X (pitch), then Y (yaw),
// then Z (roll), always in that order.
func NewTransformFromAngles(position mgl64.Vec3, angles mgl64.Vec3) Transform {
	qx := mgl64.QuatRotate(angles.X(), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(angles.Y(), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(angles.Z(), mgl64.Vec3{0, 0, 1})

	return Transform{
		Position: position,
		Rotation: qz.Mul(qy).Mul(qx).Normalize(),
	}
}

// Apply maps a point from local space to world space
func (t Transform) Apply(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}
