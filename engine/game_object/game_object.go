package game_object

import (
	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/Carmen-Shannon/oxy-morph/engine/animator"
)

// Handle is the opaque identifier callers hold for a spawned object.
// Handles are never reused, so a handle to a despawned object stays invalid.
type Handle uint64

// InvalidHandle is never assigned to a live object.
const InvalidHandle Handle = 0

// GameObject is the per-object record owned by a scene.
//
// The exported record fields are each written by exactly one pipeline stage per tick: Animation by the
// animation pass, Tracker by the change tracker (cleared by the application stage), Generation, Staging and
// Scratch by the generation stage, and Lifecycle and Bounds by the application stage. Params, id and pool
// index are fixed at construction.
type GameObject struct {
	id            uint64
	params        GeometryParams
	paramsVersion uint64
	poolIndex     int
	phaseOffset   float32

	Lifecycle  LifecycleStage
	Animation  animator.AnimationState
	Tracker    ChangeTrackerRecord
	Generation GenerationRecord
	Staging    StagingBuffer
	Scratch    Scratch

	// Transform is the placement the renderer reads alongside the mesh.
	Transform common.Transform
	// Bounds is the object-space bounding box of the last applied mesh.
	Bounds common.Bounds
}

// NewGameObject creates a new GameObject configured with the given options.
// The animation clock starts at the configured phase offset.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - *GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) *GameObject {
	obj := &GameObject{
		params:        DefaultGeometryParams(),
		paramsVersion: 1,
		poolIndex:     -1,
		Transform:     common.IdentityTransform(),
	}
	for _, option := range options {
		option(obj)
	}
	obj.Animation = animator.NewAnimationState(obj.phaseOffset, obj.params.AnimationPeriodSeconds)
	return obj
}

// ID returns the object's unique identifier.
func (g *GameObject) ID() uint64 {
	return g.id
}

// Handle returns the caller-facing handle for the object.
func (g *GameObject) Handle() Handle {
	return Handle(g.id)
}

// Params returns the object's geometry parameters.
func (g *GameObject) Params() GeometryParams {
	return g.params
}

// ParamsVersion returns the version of the object's params. It starts at 1.
func (g *GameObject) ParamsVersion() uint64 {
	return g.paramsVersion
}

// PoolIndex returns the mesh pool slot the object owns, or -1 if none.
func (g *GameObject) PoolIndex() int {
	return g.poolIndex
}

// ReadyToApply reports whether the object has a fully generated update waiting.
func (g *GameObject) ReadyToApply() bool {
	return g.Tracker.HasPendingUpdate && g.Generation.IsDataReady
}

// Snapshot is a read-only copy of an object's pipeline state.
type Snapshot struct {
	Handle     Handle
	PoolIndex  int
	Params     GeometryParams
	Lifecycle  LifecycleStage
	Animation  animator.AnimationState
	Tracker    ChangeTrackerRecord
	Generation GenerationRecord
	Transform  common.Transform
	Bounds     common.Bounds
	StagedSize int
}

// Snapshot copies the object's current state.
func (g *GameObject) Snapshot() Snapshot {
	return Snapshot{
		Handle:     g.Handle(),
		PoolIndex:  g.poolIndex,
		Params:     g.params,
		Lifecycle:  g.Lifecycle,
		Animation:  g.Animation,
		Tracker:    g.Tracker,
		Generation: g.Generation,
		Transform:  g.Transform,
		Bounds:     g.Bounds,
		StagedSize: g.Staging.Len(),
	}
}
