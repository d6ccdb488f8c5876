package game_object

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrStagingTooLarge is returned by a bounded Allocator when a request exceeds its ceiling.
	ErrStagingTooLarge = errors.New("game_object: staging buffer exceeds allocation ceiling")
	// ErrStagingSize is returned when a resized staging buffer does not have the requested length.
	ErrStagingSize = errors.New("game_object: staging buffer has unexpected size")
)

// Allocator returns a zeroed byte slice of exactly size bytes.
type Allocator func(size int) ([]byte, error)

// NewAllocator returns an Allocator that refuses requests above maxBytes. A maxBytes of 0 means unbounded.
func NewAllocator(maxBytes int) Allocator {
	return func(size int) ([]byte, error) {
		if size < 0 || (maxBytes > 0 && size > maxBytes) {
			return nil, fmt.Errorf("%w: %d bytes requested, limit %d", ErrStagingTooLarge, size, maxBytes)
		}
		return make([]byte, size), nil
	}
}

// StagingBuffer is an object's private copy of its latest generated mesh, laid out as [vertices][indices].
type StagingBuffer struct {
	data        []byte
	vertexBytes int
	indexBytes  int
}

// Resize makes the buffer exactly vertexBytes+indexBytes long.
// A buffer of the right length is reused; any other length is replaced with a fresh allocation.
// On failure the buffer is left empty so stale data can never be read back.
//
// Parameters:
//   - vertexBytes: size of the vertex region
//   - indexBytes: size of the index region
//   - alloc: allocator used when the length changes
//
// Returns:
//   - error: the allocator's error, or ErrStagingSize if the result has the wrong length
func (b *StagingBuffer) Resize(vertexBytes, indexBytes int, alloc Allocator) error {
	need := vertexBytes + indexBytes
	if len(b.data) != need {
		data, err := alloc(need)
		if err != nil {
			b.Reset()
			return err
		}
		b.data = data
	}
	if len(b.data) != need {
		got := len(b.data)
		b.Reset()
		return fmt.Errorf("%w: got %d bytes, want %d", ErrStagingSize, got, need)
	}
	b.vertexBytes = vertexBytes
	b.indexBytes = indexBytes
	return nil
}

// Reset drops the buffer's storage.
func (b *StagingBuffer) Reset() {
	b.data = nil
	b.vertexBytes = 0
	b.indexBytes = 0
}

// Len returns the total size in bytes.
func (b *StagingBuffer) Len() int {
	return len(b.data)
}

// Vertices returns the vertex region.
func (b *StagingBuffer) Vertices() []byte {
	return b.data[:b.vertexBytes]
}

// Indices returns the index region.
func (b *StagingBuffer) Indices() []byte {
	return b.data[b.vertexBytes : b.vertexBytes+b.indexBytes]
}

// Scratch holds an object's intermediate attribute arrays so repeated generations do not allocate.
type Scratch struct {
	PositionsA, NormalsA []mgl32.Vec3
	PositionsB, NormalsB []mgl32.Vec3
	Positions, Normals   []mgl32.Vec3
	UVs, UVsB            []mgl32.Vec2
	Colors               []mgl32.Vec4
}

// Ensure sizes every array to n elements for the given kind, reusing capacity where possible.
// Height fields only need the blended arrays and colors.
func (s *Scratch) Ensure(n int, kind ShapeKind) {
	s.Positions = resize(s.Positions, n)
	s.Normals = resize(s.Normals, n)
	s.UVs = resize(s.UVs, n)
	if kind == ShapeHeightField {
		s.Colors = resize(s.Colors, n)
		return
	}
	s.PositionsA = resize(s.PositionsA, n)
	s.NormalsA = resize(s.NormalsA, n)
	s.PositionsB = resize(s.PositionsB, n)
	s.NormalsB = resize(s.NormalsB, n)
	s.UVsB = resize(s.UVsB, n)
}

func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]T, n)
}
