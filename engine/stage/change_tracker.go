package stage

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
	"github.com/chewxy/math32"
)

// ImmediatePriority is the priority of an object tagged for immediate update. It outranks any computed priority.
const ImmediatePriority float32 = 1e6

// ChangeTracker decides each tick which objects need new geometry and how urgently.
//
// An object is marked dirty when its params version changed, when it carries the immediate tag, or when it
// is mid-animation or has moved away from its last generated shape and at least minFrames ticks have passed
// since its last apply. Dirty objects are flagged for generation and become pending. Every pending object gets
// its priority recomputed from its current shape state plus an optional aging term, except that an immediate
// priority is kept until the object is applied.
type ChangeTracker struct {
	epsilon     float32
	minFrames   uint32
	agingWeight float32
}

var _ Stage = &ChangeTracker{}

// NewChangeTracker creates a ChangeTracker configured with the given options.
//
// Parameters:
//   - options: functional options to configure the tracker
//
// Returns:
//   - *ChangeTracker: the created tracker
func NewChangeTracker(options ...ChangeTrackerBuilderOption) *ChangeTracker {
	c := &ChangeTracker{
		epsilon:   common.Epsilon,
		minFrames: 1,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Phase returns PhaseTrack.
func (c *ChangeTracker) Phase() Phase {
	return PhaseTrack
}

// SetPolicy replaces the tracker's regeneration interval and aging weight. It must not be called during a tick.
//
// Parameters:
//   - minFrames: minimum ticks between an apply and the next animation-driven regeneration, at least 1
//   - agingWeight: priority added per tick spent without an apply
func (c *ChangeTracker) SetPolicy(minFrames int, agingWeight float32) {
	c.minFrames = uint32(max(minFrames, 1))
	c.agingWeight = agingWeight
}

// Priority returns the computed priority of an object with the given shape state and frames since its last apply.
func (c *ChangeTracker) Priority(shapeState float32, framesSinceUpdate uint32) float32 {
	return 2*math32.Abs(shapeState-0.5) + c.agingWeight*float32(framesSinceUpdate)
}

// Check updates one object's tracker record for this tick.
//
// Parameters:
//   - obj: the object to check
//
// Returns:
//   - bool: true if the object was marked for regeneration
func (c *ChangeTracker) Check(obj *game_object.GameObject) bool {
	tr := &obj.Tracker
	gen := &obj.Generation
	tr.FramesSinceUpdate++

	if obj.Lifecycle == game_object.StageUninitialized {
		obj.Lifecycle = game_object.StageTracked
	}

	paramsChanged := obj.ParamsVersion() != tr.TrackedParamsVersion
	tr.TrackedParamsVersion = obj.ParamsVersion()

	state := obj.Animation.ShapeState
	moved := !gen.HasGenerated || !common.NearlyEqual(state, gen.GeneratedShapeState, c.epsilon)
	animating := !obj.Animation.AtRest(c.epsilon) || moved
	due := tr.FramesSinceUpdate >= c.minFrames

	dirty := paramsChanged || tr.Immediate || (animating && due)
	if dirty {
		tr.NeedsGeneration = true
		tr.HasPendingUpdate = true
		obj.Lifecycle = game_object.StagePending
	}

	if tr.HasPendingUpdate {
		if tr.Immediate {
			tr.PendingPriority = ImmediatePriority
		} else {
			tr.PendingPriority = c.Priority(state, tr.FramesSinceUpdate)
		}
	}
	return dirty
}

// Run checks every object and records how many were marked dirty.
func (c *ChangeTracker) Run(ctx *TickContext) {
	var dirty atomic.Int64
	ctx.forEach(func(obj *game_object.GameObject) {
		if c.Check(obj) {
			dirty.Add(1)
		}
	})
	ctx.Stats.Dirty = int(dirty.Load())
}
