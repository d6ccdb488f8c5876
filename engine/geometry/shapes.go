package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cubeFace is one side of the unit cube: its outward normal and the two in-plane axes, with u×v = normal.
type cubeFace struct {
	normal, u, v mgl32.Vec3
}

// cubeFaces are walked in +X, -X, +Y, -Y, +Z, -Z order by both shape kernels.
var cubeFaces = [6]cubeFace{
	{normal: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{normal: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{normal: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// walkCube visits every vertex of the cube topology in output order.
// local is the position on the cube of half-size 1 centered at the origin.
func walkCube(tessellation int, visit func(index int, local mgl32.Vec3, face *cubeFace, uv mgl32.Vec2)) {
	side := tessellation + 1
	step := 1 / float32(tessellation)
	index := 0
	for f := range cubeFaces {
		face := &cubeFaces[f]
		for j := range side {
			fv := float32(j) * step
			for i := range side {
				fu := float32(i) * step
				su := fu*2 - 1
				sv := fv*2 - 1
				local := mgl32.Vec3{
					face.normal[0] + face.u[0]*su + face.v[0]*sv,
					face.normal[1] + face.u[1]*su + face.v[1]*sv,
					face.normal[2] + face.u[2]*su + face.v[2]*sv,
				}
				visit(index, local, face, mgl32.Vec2{fu, fv})
				index++
			}
		}
	}
}

func checkVertexOutputs(tessellation int, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) error {
	if tessellation < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTessellation, tessellation)
	}
	want := VertexCount(tessellation)
	if err := checkLen("positions", len(positions), want); err != nil {
		return err
	}
	if err := checkLen("normals", len(normals), want); err != nil {
		return err
	}
	return checkLen("uvs", len(uvs), want)
}

// GenerateShapeAVertices fills the cube end-shape: an axis-aligned cube of edge length size around center.
// Normals are the flat face normals.
//
// Parameters:
//   - size: the cube's edge length
//   - tessellation: subdivisions per face edge, at least 1
//   - center: the cube's center in object space
//   - positions, normals, uvs: outputs, each exactly VertexCount(tessellation) long
//
// Returns:
//   - error: ErrInvalidTessellation or ErrCountMismatch; outputs are untouched on error
func GenerateShapeAVertices(size float32, tessellation int, center mgl32.Vec3, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) error {
	if err := checkVertexOutputs(tessellation, positions, normals, uvs); err != nil {
		return err
	}
	half := size * 0.5
	walkCube(tessellation, func(i int, local mgl32.Vec3, face *cubeFace, uv mgl32.Vec2) {
		positions[i] = center.Add(local.Mul(half))
		normals[i] = face.normal
		uvs[i] = uv
	})
	return nil
}

// GenerateShapeBVertices fills the sphere end-shape by projecting every cube vertex direction onto a sphere.
// Vertex i here corresponds to vertex i of GenerateShapeAVertices for the same tessellation.
//
// Parameters:
//   - radius: the sphere's radius
//   - tessellation: subdivisions per face edge, at least 1
//   - center: the sphere's center in object space
//   - positions, normals, uvs: outputs, each exactly VertexCount(tessellation) long
//
// Returns:
//   - error: ErrInvalidTessellation or ErrCountMismatch; outputs are untouched on error
func GenerateShapeBVertices(radius float32, tessellation int, center mgl32.Vec3, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) error {
	if err := checkVertexOutputs(tessellation, positions, normals, uvs); err != nil {
		return err
	}
	walkCube(tessellation, func(i int, local mgl32.Vec3, face *cubeFace, uv mgl32.Vec2) {
		dir := common.SafeNormalize(local, face.normal)
		positions[i] = center.Add(dir.Mul(radius))
		normals[i] = dir
		uvs[i] = uv
	})
	return nil
}
