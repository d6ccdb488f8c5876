package stage

import (
	"errors"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
	"github.com/Carmen-Shannon/oxy-morph/engine/mesh_pool"
	"github.com/Carmen-Shannon/oxy-morph/engine/renderer"
	"go.uber.org/zap"
)

const (
	// DefaultMaxUpdatesPerTick is the default cap on objects processed per tick.
	DefaultMaxUpdatesPerTick = 50
	// DefaultMaxTimeBudget is the default soft time ceiling of the application stage.
	DefaultMaxTimeBudget = 8 * time.Millisecond
)

// ApplyResult reports what one application pass did.
type ApplyResult struct {
	// Applied objects had their staging buffer copied to the renderer.
	Applied int
	// Skipped objects had no live renderer resource; they count as processed and stay pending.
	Skipped int
	// Deferred objects were not reached before the budget ran out.
	Deferred int
	// Elapsed is the wall time of the pass.
	Elapsed time.Duration
}

// ApplicationStage copies ready staging buffers into renderer resources in priority order under a per-tick budget.
// It must run on a single goroutine.
type ApplicationStage struct {
	pool       mesh_pool.MeshPool
	renderer   renderer.Renderer
	logger     *zap.Logger
	now        func() time.Time
	maxUpdates int
	maxTime    time.Duration
	queue      PriorityQueue
}

var _ Stage = &ApplicationStage{}

// NewApplicationStage creates an ApplicationStage writing into the pool's renderer resources.
//
// Parameters:
//   - pool: the mesh pool that maps object slots to renderer resources
//   - r: the renderer that owns the resources
//   - options: functional options to configure the stage
//
// Returns:
//   - *ApplicationStage: the created stage
func NewApplicationStage(pool mesh_pool.MeshPool, r renderer.Renderer, options ...ApplicationStageBuilderOption) *ApplicationStage {
	a := &ApplicationStage{
		pool:       pool,
		renderer:   r,
		logger:     zap.NewNop(),
		now:        time.Now,
		maxUpdates: DefaultMaxUpdatesPerTick,
		maxTime:    DefaultMaxTimeBudget,
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Phase returns PhaseApply.
func (a *ApplicationStage) Phase() Phase {
	return PhaseApply
}

// SetBudget replaces the per-tick limits. It must not be called during a tick.
//
// Parameters:
//   - maxUpdates: objects processed per tick, clamped to at least 1
//   - maxTime: soft time ceiling, clamped to at least 0
func (a *ApplicationStage) SetBudget(maxUpdates int, maxTime time.Duration) {
	a.maxUpdates = max(maxUpdates, 1)
	a.maxTime = max(maxTime, 0)
}

// Budget returns the current per-tick limits.
func (a *ApplicationStage) Budget() (int, time.Duration) {
	return a.maxUpdates, a.maxTime
}

// Apply walks the queue in order until the update count or time budget is spent.
// The first object is always processed so that every tick with pending work makes progress.
// The budget is checked between objects, never during a copy.
//
// Parameters:
//   - queue: the sorted queue of ready objects
//
// Returns:
//   - ApplyResult: counts of applied, skipped and deferred objects
func (a *ApplicationStage) Apply(queue *PriorityQueue) ApplyResult {
	start := a.now()
	var result ApplyResult
	items := queue.Items()
	processed := 0
	for _, obj := range items {
		if processed > 0 && (processed >= a.maxUpdates || a.now().Sub(start) >= a.maxTime) {
			break
		}
		processed++
		if a.applyOne(obj) {
			result.Applied++
		} else {
			result.Skipped++
		}
	}
	result.Deferred = len(items) - processed
	result.Elapsed = a.now().Sub(start)
	return result
}

// applyOne copies one object's staging buffer into its renderer resource and clears its pending state.
func (a *ApplicationStage) applyOne(obj *game_object.GameObject) bool {
	h, ok := a.pool.Resource(obj.PoolIndex())
	if !ok {
		a.logger.Debug("renderer resource missing",
			zap.Uint64("object", obj.ID()),
			zap.Int("pool_index", obj.PoolIndex()),
		)
		return false
	}

	gen := &obj.Generation
	err := a.renderer.WriteMesh(h, renderer.MeshWrite{
		VertexData:  obj.Staging.Vertices(),
		IndexData:   obj.Staging.Indices(),
		VertexCount: gen.VertexCount,
		IndexCount:  gen.IndexCount,
		Bounds:      gen.Bounds,
	})
	if err != nil {
		if errors.Is(err, renderer.ErrMeshNotFound) {
			a.logger.Debug("renderer resource missing",
				zap.Uint64("object", obj.ID()),
				zap.Int("pool_index", obj.PoolIndex()),
			)
		} else {
			a.logger.Warn("mesh write failed", zap.Uint64("object", obj.ID()), zap.Error(err))
		}
		return false
	}

	tr := &obj.Tracker
	obj.Bounds = gen.Bounds
	gen.IsDataReady = false
	tr.HasPendingUpdate = false
	tr.Immediate = false
	tr.PendingPriority = 0
	tr.LastAppliedVersion = gen.GenerationVersion
	tr.FramesSinceUpdate = 0
	obj.Lifecycle = game_object.StageApplied
	return true
}

// Run gathers and sorts the ready objects, then applies them within the budget.
func (a *ApplicationStage) Run(ctx *TickContext) {
	a.queue.Gather(ctx.Objects)
	a.queue.Sort()
	ctx.Stats.Ready = a.queue.Len()

	result := a.Apply(&a.queue)
	ctx.Stats.Applied = result.Applied
	ctx.Stats.Skipped = result.Skipped
	ctx.Stats.Deferred = result.Deferred

	// drop references to objects that may be despawned before the next tick
	a.queue.Reset()
}
