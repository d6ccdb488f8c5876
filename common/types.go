// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box in object space.
// The zero value is an empty box at the origin.
type Bounds struct {
	// Min is the minimum corner of the box.
	Min mgl32.Vec3
	// Max is the maximum corner of the box.
	Max mgl32.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half-size of the box along each axis.
func (b Bounds) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Contains reports whether p lies inside the box, inclusive of its faces.
func (b Bounds) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Encapsulate grows the box so that it contains p.
func (b *Bounds) Encapsulate(p mgl32.Vec3) {
	for i := range 3 {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Transform is the placement of an object that the renderer reads alongside its mesh.
type Transform struct {
	// Position is the world-space translation.
	Position mgl32.Vec3
	// Rotation holds Euler angles in radians.
	Rotation mgl32.Vec3
	// Scale is the per-axis scale factor.
	Scale mgl32.Vec3
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// ModelMatrix returns the model matrix for the transform.
func (t Transform) ModelMatrix() mgl32.Mat4 {
	return BuildModelMatrix(t.Position, t.Rotation, t.Scale)
}

// WorldBounds transforms the eight corners of local by the transform and returns their enclosing box.
//
// Parameters:
//   - local: the object-space bounds
//
// Returns:
//   - Bounds: the world-space axis-aligned bounds
func (t Transform) WorldBounds(local Bounds) Bounds {
	m := t.ModelMatrix()
	var out Bounds
	for i := range 8 {
		corner := mgl32.Vec3{local.Min[0], local.Min[1], local.Min[2]}
		if i&1 != 0 {
			corner[0] = local.Max[0]
		}
		if i&2 != 0 {
			corner[1] = local.Max[1]
		}
		if i&4 != 0 {
			corner[2] = local.Max[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		if i == 0 {
			out = Bounds{Min: p, Max: p}
			continue
		}
		out.Encapsulate(p)
	}
	return out
}
