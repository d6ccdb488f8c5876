package renderer

import (
	"github.com/Carmen-Shannon/oxy-morph/common"
)

// MeshHandle names a renderer-owned mesh resource. The zero value is never a live handle.
type MeshHandle uint32

// MeshWrite describes one full replacement of a mesh resource's contents.
// The renderer copies the byte slices; callers keep ownership of them.
type MeshWrite struct {
	VertexData  []byte
	IndexData   []byte
	VertexCount int
	IndexCount  int
	Bounds      common.Bounds
}

// MeshInfo is the renderer-visible metadata of a mesh resource.
type MeshInfo struct {
	Label       string
	VertexCount int
	IndexCount  int
	VertexBytes int
	IndexBytes  int
	Bounds      common.Bounds
	// Writes counts completed WriteMesh calls on the resource.
	Writes uint64
}

func (i *MeshInfo) apply(w MeshWrite) {
	i.VertexCount = w.VertexCount
	i.IndexCount = w.IndexCount
	i.VertexBytes = len(w.VertexData)
	i.IndexBytes = len(w.IndexData)
	i.Bounds = w.Bounds
	i.Writes++
}
