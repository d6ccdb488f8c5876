package renderer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	logger      *zap.Logger

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
}

// Renderer is the opaque collaborator that owns renderer-visible mesh resources.
//
// The pipeline never draws. It creates one mesh resource per pool slot and replaces the resource's contents
// when an object's new geometry is applied. The host that presents frames polls Mesh for counts and bounds,
// and binds the backend's storage however it draws. All methods are safe for concurrent use.
type Renderer interface {
	// BackendType returns the backend implementation in use.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// CreateMesh allocates an empty mesh resource.
	//
	// Parameters:
	//   - label: debug label for the resource
	//
	// Returns:
	//   - MeshHandle: the new resource's handle
	//   - error: an error if the backend could not create the resource
	CreateMesh(label string) (MeshHandle, error)

	// WriteMesh replaces the resource's vertex and index contents with a copy of w.
	//
	// Parameters:
	//   - h: the target resource
	//   - w: the mesh data to copy
	//
	// Returns:
	//   - error: ErrMeshNotFound if h is not live, or a backend write error
	WriteMesh(h MeshHandle, w MeshWrite) error

	// ReadMesh returns copies of the resource's current vertex and index bytes.
	//
	// Parameters:
	//   - h: the resource to read
	//
	// Returns:
	//   - []byte: the vertex bytes
	//   - []byte: the index bytes
	//   - error: ErrMeshNotFound, or ErrReadbackUnsupported on GPU backends
	ReadMesh(h MeshHandle) ([]byte, []byte, error)

	// ReleaseMesh frees the resource. Releasing an unknown handle is a no-op.
	//
	// Parameters:
	//   - h: the resource to free
	ReleaseMesh(h MeshHandle)

	// Mesh returns metadata for a live resource.
	//
	// Parameters:
	//   - h: the resource to inspect
	//
	// Returns:
	//   - MeshInfo: the resource's metadata
	//   - bool: false if h is not live
	Mesh(h MeshHandle) (MeshInfo, bool)

	// MeshCount returns the number of live mesh resources.
	//
	// Returns:
	//   - int: the resource count
	MeshCount() int

	// Release frees every resource and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer backed by the given backend type.
//
// Parameters:
//   - backendType: the backend implementation to use
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the created renderer
//   - error: ErrUnknownBackend, or an error if the GPU device could not be acquired
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(r)
	}

	switch backendType {
	case BackendTypeMemory:
		r.backend = newMemoryRendererBackend()
	case BackendTypeWGPU:
		backend, err := newWGPURendererBackend(r.forceFallbackAdapter)
		if err != nil {
			return nil, fmt.Errorf("wgpu backend: %w", err)
		}
		r.backend = backend
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownBackend, backendType)
	}

	r.logger.Debug("renderer created", zap.Stringer("backend", backendType))
	return r, nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) CreateMesh(label string) (MeshHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.CreateMesh(label)
}

func (r *renderer) WriteMesh(h MeshHandle, w MeshWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.WriteMesh(h, w)
}

func (r *renderer) ReadMesh(h MeshHandle) ([]byte, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.ReadMesh(h)
}

func (r *renderer) ReleaseMesh(h MeshHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ReleaseMesh(h)
}

func (r *renderer) Mesh(h MeshHandle) (MeshInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Mesh(h)
}

func (r *renderer) MeshCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.MeshCount()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
