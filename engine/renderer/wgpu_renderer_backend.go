package renderer

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuMesh struct {
	info         MeshInfo
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	vertexSize   uint64
	indexSize    uint64
}

// wgpuRendererBackendImpl keeps each mesh resource in a pair of GPU buffers on a headless device.
// No surface is created; the host that presents frames binds these buffers itself.
type wgpuRendererBackendImpl struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	meshes map[MeshHandle]*wgpuMesh
	nextID MeshHandle
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(forceFallbackAdapter bool) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		instance: wgpu.CreateInstance(nil),
		meshes:   make(map[MeshHandle]*wgpuMesh),
		nextID:   1,
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Morph Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) CreateMesh(label string) (MeshHandle, error) {
	h := b.nextID
	b.nextID++
	b.meshes[h] = &wgpuMesh{info: MeshInfo{Label: label}}
	return h, nil
}

// ensureBuffer returns buf if it can hold size bytes, otherwise releases it and creates a larger one.
func (b *wgpuRendererBackendImpl) ensureBuffer(buf *wgpu.Buffer, current, size uint64, label string, usage wgpu.BufferUsage) (*wgpu.Buffer, uint64, error) {
	if buf != nil && current >= size {
		return buf, current, nil
	}
	if buf != nil {
		buf.Release()
	}
	created, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, 0, err
	}
	return created, size, nil
}

func (b *wgpuRendererBackendImpl) WriteMesh(h MeshHandle, w MeshWrite) error {
	m, ok := b.meshes[h]
	if !ok {
		return fmt.Errorf("%w: handle %d", ErrMeshNotFound, h)
	}

	var err error
	if len(w.VertexData) > 0 {
		m.vertexBuffer, m.vertexSize, err = b.ensureBuffer(m.vertexBuffer, m.vertexSize, uint64(len(w.VertexData)), m.info.Label+" Vertex Buffer", wgpu.BufferUsageVertex)
		if err != nil {
			return fmt.Errorf("vertex buffer for mesh %d: %w", h, err)
		}
		b.queue.WriteBuffer(m.vertexBuffer, 0, w.VertexData)
	}
	if len(w.IndexData) > 0 {
		m.indexBuffer, m.indexSize, err = b.ensureBuffer(m.indexBuffer, m.indexSize, uint64(len(w.IndexData)), m.info.Label+" Index Buffer", wgpu.BufferUsageIndex)
		if err != nil {
			return fmt.Errorf("index buffer for mesh %d: %w", h, err)
		}
		b.queue.WriteBuffer(m.indexBuffer, 0, w.IndexData)
	}

	m.info.apply(w)
	return nil
}

func (b *wgpuRendererBackendImpl) ReadMesh(h MeshHandle) ([]byte, []byte, error) {
	if _, ok := b.meshes[h]; !ok {
		return nil, nil, fmt.Errorf("%w: handle %d", ErrMeshNotFound, h)
	}
	return nil, nil, ErrReadbackUnsupported
}

func (b *wgpuRendererBackendImpl) releaseBuffers(m *wgpuMesh) {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
}

func (b *wgpuRendererBackendImpl) ReleaseMesh(h MeshHandle) {
	m, ok := b.meshes[h]
	if !ok {
		return
	}
	b.releaseBuffers(m)
	delete(b.meshes, h)
}

func (b *wgpuRendererBackendImpl) Mesh(h MeshHandle) (MeshInfo, bool) {
	m, ok := b.meshes[h]
	if !ok {
		return MeshInfo{}, false
	}
	return m.info, true
}

func (b *wgpuRendererBackendImpl) MeshCount() int {
	return len(b.meshes)
}

func (b *wgpuRendererBackendImpl) Release() {
	for h, m := range b.meshes {
		b.releaseBuffers(m)
		delete(b.meshes, h)
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
