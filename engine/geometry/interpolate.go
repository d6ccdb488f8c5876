package geometry

import (
	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/go-gl/mathgl/mgl32"
)

// InterpolateVertices writes the per-element lerp of a and b by t into out.
// a, b and out must share a length; out may alias a or b.
func InterpolateVertices(a, b []mgl32.Vec3, t float32, out []mgl32.Vec3) error {
	if err := checkLen("b", len(b), len(a)); err != nil {
		return err
	}
	if err := checkLen("out", len(out), len(a)); err != nil {
		return err
	}
	for i := range a {
		out[i] = common.LerpVec3(a[i], b[i], t)
	}
	return nil
}

// InterpolateNormals lerps unit normals and renormalizes the result.
// A lerp that collapses to zero length takes the nearer endpoint instead.
func InterpolateNormals(a, b []mgl32.Vec3, t float32, out []mgl32.Vec3) error {
	if err := checkLen("b", len(b), len(a)); err != nil {
		return err
	}
	if err := checkLen("out", len(out), len(a)); err != nil {
		return err
	}
	for i := range a {
		fallback := a[i]
		if t >= 0.5 {
			fallback = b[i]
		}
		out[i] = common.SafeNormalize(common.LerpVec3(a[i], b[i], t), fallback)
	}
	return nil
}

// ComputeBounds returns the axis-aligned box enclosing positions, or the zero Bounds if there are none.
func ComputeBounds(positions []mgl32.Vec3) common.Bounds {
	if len(positions) == 0 {
		return common.Bounds{}
	}
	b := common.Bounds{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		b.Encapsulate(p)
	}
	return b
}
