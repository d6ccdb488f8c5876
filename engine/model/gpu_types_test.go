package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUVertexLayout(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.25, 0.75},
		Color:    [4]float32{0.1, 0.2, 0.3, 1},
	}
	buf := v.Marshal()
	require.Len(t, buf, VertexStride)
	assert.Equal(t, v, UnmarshalVertex(buf))

	// position.x is the first little-endian float
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[0:4])
}

func TestEncodeVertices(t *testing.T) {
	positions := []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}}
	normals := []mgl32.Vec3{{1, 0, 0}, {0, -1, 0}}
	uvs := []mgl32.Vec2{{0, 0}, {1, 1}}

	dst := make([]byte, 2*VertexStride)
	require.NoError(t, EncodeVertices(dst, positions, normals, uvs, nil))

	second := UnmarshalVertex(dst[VertexStride:])
	assert.Equal(t, [3]float32{0, 1, 0}, second.Position)
	assert.Equal(t, [4]float32{0.5, 0, 0.5, 1}, second.Color)

	colors := []mgl32.Vec4{{1, 0, 0, 1}, {0, 0, 1, 1}}
	require.NoError(t, EncodeVertices(dst, positions, normals, uvs, colors))
	assert.Equal(t, [4]float32{0, 0, 1, 1}, UnmarshalVertex(dst[VertexStride:]).Color)

	assert.Error(t, EncodeVertices(dst[:VertexStride], positions, normals, uvs, nil))
	assert.Error(t, EncodeVertices(dst, positions, normals[:1], uvs, nil))
}

func TestEncodeIndices(t *testing.T) {
	indices := []uint32{0, 1, 2, 70000}
	dst := make([]byte, len(indices)*IndexStride)
	require.NoError(t, EncodeIndices(dst, indices))
	for i, want := range indices {
		assert.Equal(t, want, DecodeIndex(dst, i))
	}
	assert.Error(t, EncodeIndices(dst[:4], indices))
}
