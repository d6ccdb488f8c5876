package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryRenderer(t *testing.T) Renderer {
	t.Helper()
	r, err := NewRenderer(BackendTypeMemory)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func TestMemoryRendererWriteCopies(t *testing.T) {
	r := newMemoryRenderer(t)
	assert.Equal(t, BackendTypeMemory, r.BackendType())

	h, err := r.CreateMesh("slot 0")
	require.NoError(t, err)
	assert.NotEqual(t, MeshHandle(0), h)

	vertex := []byte{1, 2, 3, 4}
	index := []byte{5, 6, 7, 8}
	bounds := common.Bounds{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	require.NoError(t, r.WriteMesh(h, MeshWrite{VertexData: vertex, IndexData: index, VertexCount: 1, IndexCount: 1, Bounds: bounds}))

	// the renderer must not alias the caller's buffers
	vertex[0] = 99

	gotVertex, gotIndex, err := r.ReadMesh(h)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, gotVertex)
	assert.Equal(t, []byte{5, 6, 7, 8}, gotIndex)

	info, ok := r.Mesh(h)
	require.True(t, ok)
	assert.Equal(t, "slot 0", info.Label)
	assert.Equal(t, uint64(1), info.Writes)
	assert.Equal(t, 4, info.VertexBytes)
	assert.Equal(t, bounds, info.Bounds)
}

func TestMemoryRendererMissingMesh(t *testing.T) {
	r := newMemoryRenderer(t)
	h, err := r.CreateMesh("gone")
	require.NoError(t, err)
	assert.Equal(t, 1, r.MeshCount())

	r.ReleaseMesh(h)
	r.ReleaseMesh(h)
	assert.Equal(t, 0, r.MeshCount())

	assert.ErrorIs(t, r.WriteMesh(h, MeshWrite{}), ErrMeshNotFound)
	_, _, err = r.ReadMesh(h)
	assert.ErrorIs(t, err, ErrMeshNotFound)
	_, ok := r.Mesh(h)
	assert.False(t, ok)
}

func TestMemoryRendererShrinkingWrite(t *testing.T) {
	r := newMemoryRenderer(t)
	h, err := r.CreateMesh("resize")
	require.NoError(t, err)

	require.NoError(t, r.WriteMesh(h, MeshWrite{VertexData: make([]byte, 96), IndexData: make([]byte, 24)}))
	require.NoError(t, r.WriteMesh(h, MeshWrite{VertexData: make([]byte, 48), IndexData: make([]byte, 12)}))

	vertex, index, err := r.ReadMesh(h)
	require.NoError(t, err)
	assert.Len(t, vertex, 48)
	assert.Len(t, index, 12)
}

func TestUnknownBackend(t *testing.T) {
	_, err := NewRenderer(RendererBackendType(42))
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.Equal(t, "unknown", RendererBackendType(42).String())
}

func TestParseBackendType(t *testing.T) {
	for name, want := range map[string]RendererBackendType{"memory": BackendTypeMemory, "": BackendTypeMemory, " WGPU ": BackendTypeWGPU} {
		got, err := ParseBackendType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseBackendType("vulkan")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
