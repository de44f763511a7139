package constraint

import (
	"math"

	"github.com/akmonengine/tumbler/rng"
	"github.com/go-gl/mathgl/mgl64"
)

// Kick is a random velocity impulse added on a bounce
type Kick struct {
	Force   float64
	Azimuth float64 // radians, in the XY plane
	Polar   float64 // radians from +Z; π/2 for 2D kicks
	Vector  mgl64.Vec3
}

// SampleKick draws a force uniformly from [min, max] and a random direction.
// 2D kicks stay in the XY plane; 3D kicks sample azimuth and polar angles
// independently.
func SampleKick(src rng.Source, min, max float64, dimensions int) Kick {
	force := rng.Uniform(src, min, max)
	azimuth := rng.Uniform(src, 0, 2*math.Pi)

	if dimensions != 3 {
		return Kick{
			Force:   force,
			Azimuth: azimuth,
			Polar:   math.Pi / 2,
			Vector:  mgl64.Vec3{force * math.Cos(azimuth), force * math.Sin(azimuth), 0},
		}
	}

	polar := rng.Uniform(src, 0, math.Pi)
	sinPolar := math.Sin(polar)
	return Kick{
		Force:   force,
		Azimuth: azimuth,
		Polar:   polar,
		Vector: mgl64.Vec3{
			force * sinPolar * math.Cos(azimuth),
			force * sinPolar * math.Sin(azimuth),
			force * math.Cos(polar),
		},
	}
}

// Scale returns the kick with its force multiplied by factor
func (k Kick) Scale(factor float64) Kick {
	k.Force *= factor
	k.Vector = k.Vector.Mul(factor)
	return k
}

// AzimuthDegrees returns the kick heading in [0, 360)
func (k Kick) AzimuthDegrees() float64 {
	return math.Mod(mgl64.RadToDeg(k.Azimuth)+360, 360)
}
