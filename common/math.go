package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the default tolerance used for float32 comparisons across the engine.
const Epsilon float32 = 1e-4

// Smoothstep eases t into the cubic Hermite curve t²(3-2t).
// The input is clamped to [0, 1] first so callers can pass slightly overshot values.
//
// Parameters:
//   - t: the linear interpolation factor
//
// Returns:
//   - float32: the eased factor in [0, 1]
func Smoothstep(t float32) float32 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// Lerp linearly interpolates between a and b by t.
//
// Parameters:
//   - a: value at t=0
//   - b: value at t=1
//   - t: interpolation factor
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// LerpVec3 interpolates each component of a and b by t.
//
// Parameters:
//   - a: vector at t=0
//   - b: vector at t=1
//   - t: interpolation factor
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}

// NearlyEqual reports whether a and b differ by at most eps.
func NearlyEqual(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}

// SafeNormalize returns v scaled to unit length, or fallback when v is too short to normalize.
//
// Parameters:
//   - v: the vector to normalize
//   - fallback: returned unchanged when |v| is below 1e-8
//
// Returns:
//   - mgl32.Vec3: the unit vector or the fallback
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := math32.Sqrt(v.Dot(v))
	if l < 1e-8 {
		return fallback
	}
	inv := 1 / l
	return mgl32.Vec3{v[0] * inv, v[1] * inv, v[2] * inv}
}

// BuildModelMatrix constructs a model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll).
//
// Parameters:
//   - position: translation in world space
//   - rotation: rotation angles in radians around each axis
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func BuildModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.HomogRotate3DY(rotation[1]).
		Mul4(mgl32.HomogRotate3DX(rotation[0])).
		Mul4(mgl32.HomogRotate3DZ(rotation[2]))
	return mgl32.Translate3D(position[0], position[1], position[2]).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}
