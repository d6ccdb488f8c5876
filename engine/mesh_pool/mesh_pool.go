package mesh_pool

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-morph/engine/renderer"
)

var (
	// ErrPoolExhausted is returned by Allocate when every slot is in use.
	ErrPoolExhausted = errors.New("mesh_pool: pool exhausted")
	// ErrInvalidCapacity is returned by NewMeshPool for a capacity below 1.
	ErrInvalidCapacity = errors.New("mesh_pool: capacity must be positive")
	// ErrDuplicateOwner is returned by Rebuild when two owners claim the same slot.
	ErrDuplicateOwner = errors.New("mesh_pool: slot claimed by more than one owner")
	// ErrIndexOutOfRange is returned by Rebuild for an owner index outside the pool.
	ErrIndexOutOfRange = errors.New("mesh_pool: index out of range")
)

type meshPool struct {
	renderer  renderer.Renderer
	label     string
	resources []renderer.MeshHandle
	inUse     []bool
	used      int
}

// MeshPool is a fixed-capacity table of renderer mesh resources addressed by integer slot.
//
// A slot's renderer resource is created the first time the slot is allocated and kept for the life of the
// pool, so released slots hand their resource to the next owner. A resource the renderer no longer knows is
// recreated on the slot's next allocation. The in-use bookkeeping is a derived cache:
// Rebuild replaces it from the authoritative list of live owners. MeshPool is not safe for concurrent use.
type MeshPool interface {
	// Allocate claims the first free slot, creating its renderer resource on first use.
	//
	// Returns:
	//   - int: the claimed slot
	//   - error: ErrPoolExhausted if no slot is free, or the renderer's error if the resource could not be created
	Allocate() (int, error)

	// Release marks the slot free. The resource's contents are left in place. Out-of-range indices are ignored.
	//
	// Parameters:
	//   - index: the slot to release
	Release(index int)

	// Resource returns the renderer resource for a slot.
	//
	// Parameters:
	//   - index: the slot to look up
	//
	// Returns:
	//   - renderer.MeshHandle: the slot's resource
	//   - bool: false if the index is out of range or the slot has no live resource
	Resource(index int) (renderer.MeshHandle, bool)

	// Rebuild replaces the in-use bookkeeping with exactly the given owner slots.
	// All listed slots are still marked in use when an error is returned.
	//
	// Parameters:
	//   - owners: the slot of every live owner
	//
	// Returns:
	//   - error: ErrDuplicateOwner or ErrIndexOutOfRange, joined if both occur
	Rebuild(owners []int) error

	// InUse reports whether a slot is currently claimed.
	//
	// Parameters:
	//   - index: the slot to check
	//
	// Returns:
	//   - bool: true if the slot is claimed
	InUse(index int) bool

	// Used returns the number of claimed slots.
	Used() int

	// Capacity returns the fixed number of slots.
	Capacity() int

	// Close releases every renderer resource owned by the pool.
	Close()
}

var _ MeshPool = &meshPool{}

// NewMeshPool creates a MeshPool with a fixed number of slots.
//
// Parameters:
//   - capacity: number of slots, must be at least 1
//   - r: the renderer that owns the mesh resources
//   - options: functional options to configure the pool
//
// Returns:
//   - MeshPool: the created pool
//   - error: ErrInvalidCapacity if capacity < 1
func NewMeshPool(capacity int, r renderer.Renderer, options ...MeshPoolBuilderOption) (MeshPool, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	p := &meshPool{
		renderer:  r,
		label:     "Mesh Pool",
		resources: make([]renderer.MeshHandle, capacity),
		inUse:     make([]bool, capacity),
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

func (p *meshPool) Allocate() (int, error) {
	for i, used := range p.inUse {
		if used {
			continue
		}
		if _, live := p.Resource(i); !live {
			h, err := p.renderer.CreateMesh(fmt.Sprintf("%s %d", p.label, i))
			if err != nil {
				return -1, fmt.Errorf("create mesh for slot %d: %w", i, err)
			}
			p.resources[i] = h
		}
		p.inUse[i] = true
		p.used++
		return i, nil
	}
	return -1, fmt.Errorf("%w: all %d slots in use", ErrPoolExhausted, len(p.inUse))
}

func (p *meshPool) Release(index int) {
	if index < 0 || index >= len(p.inUse) || !p.inUse[index] {
		return
	}
	p.inUse[index] = false
	p.used--
}

func (p *meshPool) Resource(index int) (renderer.MeshHandle, bool) {
	if index < 0 || index >= len(p.resources) {
		return 0, false
	}
	h := p.resources[index]
	if h == 0 {
		return 0, false
	}
	if _, ok := p.renderer.Mesh(h); !ok {
		return 0, false
	}
	return h, true
}

func (p *meshPool) Rebuild(owners []int) error {
	clear(p.inUse)
	p.used = 0

	var errs []error
	for _, index := range owners {
		if index < 0 || index >= len(p.inUse) {
			errs = append(errs, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index))
			continue
		}
		if p.inUse[index] {
			errs = append(errs, fmt.Errorf("%w: slot %d", ErrDuplicateOwner, index))
			continue
		}
		p.inUse[index] = true
		p.used++
	}
	return errors.Join(errs...)
}

func (p *meshPool) InUse(index int) bool {
	return index >= 0 && index < len(p.inUse) && p.inUse[index]
}

func (p *meshPool) Used() int {
	return p.used
}

func (p *meshPool) Capacity() int {
	return len(p.inUse)
}

func (p *meshPool) Close() {
	for i, h := range p.resources {
		if h != 0 {
			p.renderer.ReleaseMesh(h)
			p.resources[i] = 0
		}
	}
	clear(p.inUse)
	p.used = 0
}
