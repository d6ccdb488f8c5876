package renderer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMeshNotFound is returned when a MeshHandle does not name a live mesh resource.
	ErrMeshNotFound = errors.New("renderer: mesh resource not found")
	// ErrReadbackUnsupported is returned by backends that cannot read mesh data back to the CPU.
	ErrReadbackUnsupported = errors.New("renderer: mesh readback not supported by backend")
	// ErrUnknownBackend is returned by NewRenderer for an unrecognized backend type.
	ErrUnknownBackend = errors.New("renderer: unknown backend type")
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeMemory keeps mesh resources in host memory. Used for headless runs and tests.
	BackendTypeMemory RendererBackendType = iota
	// BackendTypeWGPU keeps mesh resources in WebGPU vertex and index buffers on a headless device.
	BackendTypeWGPU
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeMemory:
		return "memory"
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return "unknown"
	}
}

// ParseBackendType maps a backend name as written in config to its type.
//
// Parameters:
//   - name: "memory" or "wgpu", case-insensitive
//
// Returns:
//   - RendererBackendType: the named backend
//   - error: ErrUnknownBackend for any other name
func ParseBackendType(name string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "memory", "":
		return BackendTypeMemory, nil
	case "wgpu":
		return BackendTypeWGPU, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// RendererBackend is the storage implementation a Renderer delegates to.
// Backends are not required to be safe for concurrent use; the Renderer serializes calls.
type RendererBackend interface {
	// CreateMesh allocates an empty mesh resource.
	//
	// Parameters:
	//   - label: debug label for the resource
	//
	// Returns:
	//   - MeshHandle: the new resource's handle
	//   - error: an error if the resource could not be created
	CreateMesh(label string) (MeshHandle, error)

	// WriteMesh copies w into the mesh resource, growing its storage if needed.
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
	//   - error: ErrMeshNotFound or ErrReadbackUnsupported
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

	// MeshCount returns the number of live resources.
	MeshCount() int

	// Release frees every resource and the backend's device state.
	Release()
}
