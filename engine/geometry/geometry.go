// Package geometry holds the pure mesh kernels used by the generation stage.
//
// Every kernel writes into caller-owned slices and keeps no state, so any number of workers may run them
// concurrently as long as their outputs are disjoint. Slice lengths are checked against the topology counts
// up front and a mismatch fails the call instead of truncating.
package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrCountMismatch is returned when an output slice does not match the vertex or index count of the topology.
	ErrCountMismatch = errors.New("geometry: output length does not match topology count")
	// ErrInvalidTessellation is returned for tessellation values below 1.
	ErrInvalidTessellation = errors.New("geometry: tessellation must be at least 1")
)

// Topology identifies the index layout a mesh uses.
type Topology uint8

const (
	// TopologyCube is six (t+1)² face grids shared by shape A and shape B.
	TopologyCube Topology = iota
	// TopologyGrid is a single (t+1)² grid used by the height field.
	TopologyGrid
)

func (t Topology) String() string {
	switch t {
	case TopologyCube:
		return "cube"
	case TopologyGrid:
		return "grid"
	default:
		return fmt.Sprintf("topology(%d)", uint8(t))
	}
}

// VertexCount returns the number of vertices in a cube-topology mesh, 6·(t+1)².
func VertexCount(tessellation int) int {
	side := tessellation + 1
	return 6 * side * side
}

// TriangleCount returns the number of triangles in a cube-topology mesh, 12·t².
func TriangleCount(tessellation int) int {
	return 6 * tessellation * tessellation * 2
}

// IndexCount returns the number of indices in a cube-topology mesh.
func IndexCount(tessellation int) int {
	return TriangleCount(tessellation) * 3
}

// HeightFieldVertexCount returns the number of vertices in a height-field grid, (t+1)².
func HeightFieldVertexCount(tessellation int) int {
	side := tessellation + 1
	return side * side
}

// HeightFieldIndexCount returns the number of indices in a height-field grid, 6·t².
func HeightFieldIndexCount(tessellation int) int {
	return 6 * tessellation * tessellation
}

// Counts returns the vertex and index counts for the given topology and tessellation.
//
// Parameters:
//   - topology: the index layout
//   - tessellation: subdivisions per edge, at least 1
//
// Returns:
//   - int: the vertex count
//   - int: the index count
//   - error: ErrInvalidTessellation if tessellation < 1
func Counts(topology Topology, tessellation int) (int, int, error) {
	if tessellation < 1 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidTessellation, tessellation)
	}
	if topology == TopologyGrid {
		return HeightFieldVertexCount(tessellation), HeightFieldIndexCount(tessellation), nil
	}
	return VertexCount(tessellation), IndexCount(tessellation), nil
}

func checkLen(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s has %d elements, want %d", ErrCountMismatch, name, got, want)
	}
	return nil
}
