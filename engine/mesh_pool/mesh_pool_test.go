package mesh_pool

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-morph/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T, capacity int) (MeshPool, renderer.Renderer) {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeMemory)
	require.NoError(t, err)
	p, err := NewMeshPool(capacity, r, WithLabel("Test Slot"))
	require.NoError(t, err)
	return p, r
}

func TestNewMeshPoolRejectsCapacity(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeMemory)
	require.NoError(t, err)
	for _, capacity := range []int{0, -5} {
		_, err := NewMeshPool(capacity, r)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	}
}

func TestAllocateFirstFreeAndExhaustion(t *testing.T) {
	p, r := newPool(t, 3)

	for want := range 3 {
		got, err := p.Allocate()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := p.Allocate()
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, 3, p.Used())
	assert.Equal(t, 3, r.MeshCount())

	p.Release(1)
	p.Release(1)
	assert.Equal(t, 2, p.Used())

	got, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestResourcesAreReused(t *testing.T) {
	p, r := newPool(t, 2)
	index, err := p.Allocate()
	require.NoError(t, err)
	first, ok := p.Resource(index)
	require.True(t, ok)

	info, ok := r.Mesh(first)
	require.True(t, ok)
	assert.Equal(t, "Test Slot 0", info.Label)

	p.Release(index)
	again, err := p.Allocate()
	require.NoError(t, err)
	second, ok := p.Resource(again)
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.MeshCount())
}

func TestResourceMissing(t *testing.T) {
	p, r := newPool(t, 2)
	_, ok := p.Resource(1)
	assert.False(t, ok, "never allocated")
	_, ok = p.Resource(7)
	assert.False(t, ok, "out of range")

	index, err := p.Allocate()
	require.NoError(t, err)
	h, ok := p.Resource(index)
	require.True(t, ok)

	r.ReleaseMesh(h)
	_, ok = p.Resource(index)
	assert.False(t, ok, "renderer dropped the resource")

	// the next owner of the slot gets a fresh resource
	p.Release(index)
	again, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, index, again)
	fresh, ok := p.Resource(again)
	require.True(t, ok)
	assert.NotEqual(t, h, fresh)
}

func TestRebuildFromOwners(t *testing.T) {
	p, _ := newPool(t, 4)
	for range 3 {
		_, err := p.Allocate()
		require.NoError(t, err)
	}

	// a release that never happened is repaired by the rebuild
	require.NoError(t, p.Rebuild([]int{2}))
	assert.Equal(t, 1, p.Used())
	assert.False(t, p.InUse(0))
	assert.True(t, p.InUse(2))

	got, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	err = p.Rebuild([]int{0, 2, 2, 9})
	assert.ErrorIs(t, err, ErrDuplicateOwner)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, 2, p.Used())
}

func TestClose(t *testing.T) {
	p, r := newPool(t, 2)
	_, err := p.Allocate()
	require.NoError(t, err)
	p.Close()
	assert.Equal(t, 0, r.MeshCount())
	assert.Equal(t, 0, p.Used())
	assert.Equal(t, 2, p.Capacity())
}
