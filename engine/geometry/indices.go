package geometry

import (
	"fmt"
	"sync"
)

// GenerateIndices fills out with the cube-topology index list: two counter-clockwise triangles per quad,
// wound so that front faces point away from the center.
//
// Parameters:
//   - tessellation: subdivisions per face edge, at least 1
//   - out: destination, exactly IndexCount(tessellation) long
//
// Returns:
//   - error: ErrInvalidTessellation or ErrCountMismatch
func GenerateIndices(tessellation int, out []uint32) error {
	if tessellation < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTessellation, tessellation)
	}
	if err := checkLen("indices", len(out), IndexCount(tessellation)); err != nil {
		return err
	}
	side := tessellation + 1
	n := 0
	for f := range cubeFaces {
		base := uint32(f * side * side)
		n = writeGridQuads(out, n, base, tessellation, false)
	}
	return nil
}

// GenerateGridIndices fills out with the height-field index list, wound so that front faces point up (+Y).
//
// Parameters:
//   - tessellation: subdivisions per grid edge, at least 1
//   - out: destination, exactly HeightFieldIndexCount(tessellation) long
//
// Returns:
//   - error: ErrInvalidTessellation or ErrCountMismatch
func GenerateGridIndices(tessellation int, out []uint32) error {
	if tessellation < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTessellation, tessellation)
	}
	if err := checkLen("indices", len(out), HeightFieldIndexCount(tessellation)); err != nil {
		return err
	}
	writeGridQuads(out, 0, 0, tessellation, true)
	return nil
}

// writeGridQuads emits two triangles per quad of a (t+1)² grid starting at vertex base and returns the next write offset.
// For a quad a=(i,j), b=(i+1,j), c=(i+1,j+1), d=(i,j+1) the triangles are (a,b,c),(a,c,d), or (a,c,b),(a,d,c) when flipped.
func writeGridQuads(out []uint32, n int, base uint32, tessellation int, flip bool) int {
	side := uint32(tessellation + 1)
	for j := range uint32(tessellation) {
		for i := range uint32(tessellation) {
			a := base + j*side + i
			b := a + 1
			c := a + side + 1
			d := a + side
			if flip {
				out[n], out[n+1], out[n+2] = a, c, b
				out[n+3], out[n+4], out[n+5] = a, d, c
			} else {
				out[n], out[n+1], out[n+2] = a, b, c
				out[n+3], out[n+4], out[n+5] = a, c, d
			}
			n += 6
		}
	}
	return n
}

type indexKey struct {
	topology     Topology
	tessellation int
}

// IndexCache computes each index list once per (topology, tessellation) and shares it between callers.
// Returned slices are shared and must be treated as read-only.
type IndexCache struct {
	mu      sync.RWMutex
	entries map[indexKey][]uint32
}

// NewIndexCache creates an empty IndexCache.
func NewIndexCache() *IndexCache {
	return &IndexCache{entries: make(map[indexKey][]uint32)}
}

// Get returns the cached index list, generating it on first request.
//
// Parameters:
//   - topology: the index layout
//   - tessellation: subdivisions per edge, at least 1
//
// Returns:
//   - []uint32: the shared, read-only index list
//   - error: ErrInvalidTessellation if tessellation < 1
func (c *IndexCache) Get(topology Topology, tessellation int) ([]uint32, error) {
	key := indexKey{topology: topology, tessellation: tessellation}

	c.mu.RLock()
	indices, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return indices, nil
	}

	_, count, err := Counts(topology, tessellation)
	if err != nil {
		return nil, err
	}
	indices = make([]uint32, count)
	if topology == TopologyGrid {
		err = GenerateGridIndices(tessellation, indices)
	} else {
		err = GenerateIndices(tessellation, indices)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = indices
	return indices, nil
}

// Len returns the number of cached index lists.
func (c *IndexCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
