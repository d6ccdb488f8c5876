package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	heightLow  = mgl32.Vec4{0.05, 0.10, 0.40, 1}
	heightMid  = mgl32.Vec4{0.20, 0.70, 0.30, 1}
	heightHigh = mgl32.Vec4{1.00, 0.95, 0.80, 1}
)

// HeightColor maps a normalized height to the terrain gradient used by the height field.
func HeightColor(h float32) mgl32.Vec4 {
	h = common.Clamp01(h)
	if h < 0.5 {
		return lerpVec4(heightLow, heightMid, h*2)
	}
	return lerpVec4(heightMid, heightHigh, (h-0.5)*2)
}

func lerpVec4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return mgl32.Vec4{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	}
}

// GenerateHeightField fills a square grid on the XZ plane whose heights and colors come from FractalHeight.
// Normals are taken from central differences of the neighboring heights.
//
// Parameters:
//   - extent: the grid's edge length
//   - amplitude: the world-space height of a sample with value 1
//   - tessellation: subdivisions per edge, at least 1
//   - center: the grid's center in object space
//   - params: the fractal region sampled across the grid
//   - time: animation time passed to the fractal kernel
//   - positions, normals, uvs, colors: outputs, each exactly HeightFieldVertexCount(tessellation) long
//
// Returns:
//   - error: ErrInvalidTessellation or ErrCountMismatch
func GenerateHeightField(
	extent, amplitude float32,
	tessellation int,
	center mgl32.Vec3,
	params FractalParams,
	time float32,
	positions, normals []mgl32.Vec3,
	uvs []mgl32.Vec2,
	colors []mgl32.Vec4,
) error {
	if tessellation < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTessellation, tessellation)
	}
	want := HeightFieldVertexCount(tessellation)
	for _, c := range []struct {
		name string
		n    int
	}{{"positions", len(positions)}, {"normals", len(normals)}, {"uvs", len(uvs)}, {"colors", len(colors)}} {
		if err := checkLen(c.name, c.n, want); err != nil {
			return err
		}
	}

	side := tessellation + 1
	step := 1 / float32(tessellation)
	for j := range side {
		fv := float32(j) * step
		for i := range side {
			fu := float32(i) * step
			idx := j*side + i
			h := FractalHeight(mgl32.Vec3{fu*2 - 1, 0, fv*2 - 1}, params, time)
			positions[idx] = mgl32.Vec3{
				center[0] + (fu-0.5)*extent,
				center[1] + h*amplitude,
				center[2] + (fv-0.5)*extent,
			}
			uvs[idx] = mgl32.Vec2{fu, fv}
			colors[idx] = HeightColor(h)
		}
	}

	up := mgl32.Vec3{0, 1, 0}
	for j := range side {
		for i := range side {
			l := positions[j*side+max(i-1, 0)]
			r := positions[j*side+min(i+1, tessellation)]
			d := positions[max(j-1, 0)*side+i]
			u := positions[min(j+1, tessellation)*side+i]
			dx := r[0] - l[0]
			dz := u[2] - d[2]
			var n mgl32.Vec3
			if dx != 0 && dz != 0 {
				n = mgl32.Vec3{-(r[1] - l[1]) / dx, 1, -(u[1] - d[1]) / dz}
			}
			normals[j*side+i] = common.SafeNormalize(n, up)
		}
	}
	return nil
}
