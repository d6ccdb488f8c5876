package renderer

import (
	"fmt"
)

type memoryMesh struct {
	info   MeshInfo
	vertex []byte
	index  []byte
}

// memoryRendererBackendImpl stores every mesh resource as host byte slices.
type memoryRendererBackendImpl struct {
	meshes map[MeshHandle]*memoryMesh
	nextID MeshHandle
}

var _ RendererBackend = &memoryRendererBackendImpl{}

func newMemoryRendererBackend() *memoryRendererBackendImpl {
	return &memoryRendererBackendImpl{
		meshes: make(map[MeshHandle]*memoryMesh),
		nextID: 1,
	}
}

func (b *memoryRendererBackendImpl) CreateMesh(label string) (MeshHandle, error) {
	h := b.nextID
	b.nextID++
	b.meshes[h] = &memoryMesh{info: MeshInfo{Label: label}}
	return h, nil
}

func (b *memoryRendererBackendImpl) WriteMesh(h MeshHandle, w MeshWrite) error {
	m, ok := b.meshes[h]
	if !ok {
		return fmt.Errorf("%w: handle %d", ErrMeshNotFound, h)
	}
	m.vertex = copyInto(m.vertex, w.VertexData)
	m.index = copyInto(m.index, w.IndexData)
	m.info.apply(w)
	return nil
}

// copyInto copies src into dst, reusing dst's storage when it is large enough.
func copyInto(dst, src []byte) []byte {
	if cap(dst) < len(src) {
		dst = make([]byte, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}

func (b *memoryRendererBackendImpl) ReadMesh(h MeshHandle) ([]byte, []byte, error) {
	m, ok := b.meshes[h]
	if !ok {
		return nil, nil, fmt.Errorf("%w: handle %d", ErrMeshNotFound, h)
	}
	return append([]byte(nil), m.vertex...), append([]byte(nil), m.index...), nil
}

func (b *memoryRendererBackendImpl) ReleaseMesh(h MeshHandle) {
	delete(b.meshes, h)
}

func (b *memoryRendererBackendImpl) Mesh(h MeshHandle) (MeshInfo, bool) {
	m, ok := b.meshes[h]
	if !ok {
		return MeshInfo{}, false
	}
	return m.info, true
}

func (b *memoryRendererBackendImpl) MeshCount() int {
	return len(b.meshes)
}

func (b *memoryRendererBackendImpl) Release() {
	clear(b.meshes)
}
