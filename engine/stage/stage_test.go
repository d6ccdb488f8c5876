package stage

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
	"github.com/Carmen-Shannon/oxy-morph/engine/geometry"
	"github.com/Carmen-Shannon/oxy-morph/engine/mesh_pool"
	"github.com/Carmen-Shannon/oxy-morph/engine/model"
	"github.com/Carmen-Shannon/oxy-morph/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func morphParams(tessellation int) game_object.GeometryParams {
	p := game_object.DefaultGeometryParams()
	p.Tessellation = tessellation
	p.ShapeSizeA = 2
	p.ShapeSizeB = 1
	return p
}

func newObject(id uint64, params game_object.GeometryParams, poolIndex int) *game_object.GameObject {
	return game_object.NewGameObject(
		game_object.WithID(id),
		game_object.WithParams(params),
		game_object.WithPoolIndex(poolIndex),
	)
}

type pipeline struct {
	renderer renderer.Renderer
	pool     mesh_pool.MeshPool
	tracker  *ChangeTracker
	gen      *GenerationStage
	apply    *ApplicationStage
	objects  []*game_object.GameObject
}

// newPipeline spawns one object per tessellation value, each with its own pool slot.
func newPipeline(t *testing.T, maxUpdates int, maxTime time.Duration, tessellations ...int) *pipeline {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeMemory)
	require.NoError(t, err)
	pool, err := mesh_pool.NewMeshPool(len(tessellations)+1, r)
	require.NoError(t, err)

	p := &pipeline{
		renderer: r,
		pool:     pool,
		tracker:  NewChangeTracker(),
		gen:      NewGenerationStage(),
		apply:    NewApplicationStage(pool, r, WithBudget(maxUpdates, maxTime)),
	}
	for i, tess := range tessellations {
		index, err := pool.Allocate()
		require.NoError(t, err)
		p.objects = append(p.objects, newObject(uint64(i+1), morphParams(tess), index))
	}
	return p
}

func (p *pipeline) runner() *Runner {
	r := NewRunner()
	r.Register(p.apply, p.gen, AnimationStage{}, p.tracker)
	return r
}

func (p *pipeline) tick(dt float32) TickStats {
	ctx := &TickContext{DeltaTime: dt, Objects: p.objects}
	p.runner().Tick(ctx)
	return ctx.Stats
}

func TestTrackerFirstCheckMarksDirty(t *testing.T) {
	tracker := NewChangeTracker()
	obj := newObject(1, morphParams(2), 0)

	assert.True(t, tracker.Check(obj))
	assert.True(t, obj.Tracker.HasPendingUpdate)
	assert.True(t, obj.Tracker.NeedsGeneration)
	assert.Equal(t, game_object.StagePending, obj.Lifecycle)
	// shape state 0 is a rest pose
	assert.Equal(t, float32(1), obj.Tracker.PendingPriority)
}

func TestTrackerRestingObjectStaysClean(t *testing.T) {
	tracker := NewChangeTracker()
	gen := NewGenerationStage()
	obj := newObject(1, morphParams(2), 0)

	require.True(t, tracker.Check(obj))
	require.NoError(t, gen.Generate(obj))

	// nothing moved since the last generation
	assert.False(t, tracker.Check(obj))
	assert.False(t, obj.Tracker.NeedsGeneration)
	assert.True(t, obj.Tracker.HasPendingUpdate, "pending flag survives until applied")
}

func TestTrackerMidAnimationIsDirty(t *testing.T) {
	tracker := NewChangeTracker()
	gen := NewGenerationStage()
	obj := newObject(1, morphParams(2), 0)
	require.True(t, tracker.Check(obj))
	require.NoError(t, gen.Generate(obj))

	obj.Animation.Advance(0.5, obj.Params().AnimationPeriodSeconds)
	assert.True(t, tracker.Check(obj))
	assert.InDelta(t, 2*(0.5-obj.Animation.ShapeState), obj.Tracker.PendingPriority, 1e-6)
}

func TestTrackerMinFramesThrottle(t *testing.T) {
	tracker := NewChangeTracker(WithMinFramesBetweenRegeneration(3))
	obj := newObject(1, morphParams(2), 0)
	obj.Tracker.TrackedParamsVersion = obj.ParamsVersion()
	obj.Generation.HasGenerated = true
	obj.Animation.ShapeState = 0.5

	assert.False(t, tracker.Check(obj), "1 frame")
	assert.False(t, tracker.Check(obj), "2 frames")
	assert.True(t, tracker.Check(obj), "3 frames")
}

func TestTrackerImmediateIsSticky(t *testing.T) {
	tracker := NewChangeTracker()
	obj := newObject(1, morphParams(2), 0)
	obj.Tracker.Immediate = true

	assert.True(t, tracker.Check(obj))
	assert.Equal(t, ImmediatePriority, obj.Tracker.PendingPriority)

	// re-flagging with a computed priority must not lower it
	obj.Animation.ShapeState = 0.5
	tracker.Check(obj)
	assert.Equal(t, ImmediatePriority, obj.Tracker.PendingPriority)
}

func TestTrackerAging(t *testing.T) {
	tracker := NewChangeTracker(WithAgingWeight(0.1))
	assert.InDelta(t, 0.8+0.5, tracker.Priority(0.1, 5), 1e-6)

	tracker.SetPolicy(0, 0)
	assert.InDelta(t, 0.8, tracker.Priority(0.9, 5), 1e-6)
}

func TestGenerationVersionsIncrementByOne(t *testing.T) {
	gen := NewGenerationStage()
	obj := newObject(1, morphParams(3), 0)
	for want := uint64(1); want <= 5; want++ {
		obj.Tracker.NeedsGeneration = true
		require.NoError(t, gen.Generate(obj))
		assert.Equal(t, want, obj.Generation.GenerationVersion)
		assert.True(t, obj.Generation.IsDataReady)
		assert.False(t, obj.Tracker.NeedsGeneration)
	}

	vertexCount := geometry.VertexCount(3)
	indexCount := geometry.IndexCount(3)
	assert.Equal(t, vertexCount, obj.Generation.VertexCount)
	assert.Equal(t, indexCount, obj.Generation.IndexCount)
	assert.Equal(t, vertexCount*model.VertexStride+indexCount*model.IndexStride, obj.Staging.Len())
}

func TestGenerationWritesBlendedShape(t *testing.T) {
	gen := NewGenerationStage()
	obj := newObject(1, morphParams(2), 0)

	require.NoError(t, gen.Generate(obj))
	cube := model.UnmarshalVertex(obj.Staging.Vertices())
	assert.Equal(t, [3]float32{1, -1, 1}, cube.Position)
	assert.InDelta(t, 1, obj.Generation.Bounds.Max[0], 1e-5)

	obj.Animation.ShapeState = 1
	require.NoError(t, gen.Generate(obj))
	sphere := model.UnmarshalVertex(obj.Staging.Vertices())
	assert.InDelta(t, 1, sphere.Position[0]*sphere.Position[0]+sphere.Position[1]*sphere.Position[1]+sphere.Position[2]*sphere.Position[2], 1e-5)

	idx := obj.Staging.Indices()
	assert.Equal(t, uint32(0), model.DecodeIndex(idx, 0))
	assert.Equal(t, uint32(1), model.DecodeIndex(idx, 1))
}

func TestGenerationHeightField(t *testing.T) {
	gen := NewGenerationStage()
	params := game_object.DefaultGeometryParams()
	params.Kind = game_object.ShapeHeightField
	params.Tessellation = 4
	obj := newObject(1, params, 0)

	require.NoError(t, gen.Generate(obj))
	assert.Equal(t, geometry.HeightFieldVertexCount(4), obj.Generation.VertexCount)
	assert.Equal(t, geometry.HeightFieldIndexCount(4), obj.Generation.IndexCount)
	assert.Equal(t, 1, gen.IndexCache().Len())
}

func TestGenerationFailureKeepsObjectQueued(t *testing.T) {
	gen := NewGenerationStage(WithMaxStagingBytes(64))
	obj := newObject(1, morphParams(2), 0)
	obj.Tracker.NeedsGeneration = true
	obj.Tracker.HasPendingUpdate = true

	ctx := &TickContext{Objects: []*game_object.GameObject{obj}}
	gen.Run(ctx)
	assert.Equal(t, 1, ctx.Stats.GenerationFailures)
	assert.False(t, obj.Generation.IsDataReady)
	assert.True(t, obj.Tracker.NeedsGeneration)
	assert.Equal(t, uint64(0), obj.Generation.GenerationVersion)
	assert.Equal(t, uint64(1), obj.Generation.Failures)
	assert.Equal(t, 0, obj.Staging.Len())

	err := gen.Generate(obj)
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)
	assert.ErrorIs(t, err, game_object.ErrStagingTooLarge)

	// retried next tick once memory is available
	require.NoError(t, NewGenerationStage().Generate(obj))
	assert.Equal(t, uint64(1), obj.Generation.GenerationVersion)
}

func TestGenerationRecoversPanic(t *testing.T) {
	gen := NewGenerationStage(WithAllocator(func(int) ([]byte, error) { panic("out of memory") }))
	obj := newObject(1, morphParams(2), 0)
	err := gen.Generate(obj)
	assert.ErrorIs(t, err, ErrBufferSizeMismatch)
	assert.False(t, obj.Generation.IsDataReady)
}

func TestPriorityQueueOrder(t *testing.T) {
	var q PriorityQueue
	priorities := map[uint64]float32{1: 0.2, 2: 0.9, 3: 0.9, 4: 0.5}
	for _, id := range []uint64{4, 3, 1, 2} {
		obj := newObject(id, morphParams(1), 0)
		obj.Tracker.PendingPriority = priorities[id]
		q.Push(obj)
	}
	q.Sort()

	var got []uint64
	for _, obj := range q.Items() {
		got = append(got, obj.ID())
	}
	assert.Equal(t, []uint64{2, 3, 4, 1}, got)

	q.Reset()
	assert.Equal(t, 0, q.Len())
}

func TestPriorityOrderingScenario(t *testing.T) {
	p := newPipeline(t, 2, time.Hour, 1, 1, 1, 1, 1)
	states := []float32{0.1, 0.5, 0.9, 0.3, 0.7}
	for i, obj := range p.objects {
		obj.Animation.ShapeState = states[i]
	}
	ctx := &TickContext{Objects: p.objects}
	p.tracker.Run(ctx)
	p.gen.Run(ctx)
	p.apply.Run(ctx)

	assert.Equal(t, 2, ctx.Stats.Applied)
	assert.Equal(t, 3, ctx.Stats.Deferred)
	// 2·|s−0.5| is highest for 0.1 and 0.9
	assert.Equal(t, game_object.StageApplied, p.objects[0].Lifecycle)
	assert.Equal(t, game_object.StageApplied, p.objects[2].Lifecycle)
	for _, i := range []int{1, 3, 4} {
		assert.True(t, p.objects[i].Tracker.HasPendingUpdate)
		assert.True(t, p.objects[i].Generation.IsDataReady)
	}
}

func TestApplicationAlwaysAppliesOne(t *testing.T) {
	p := newPipeline(t, 50, 0, 1, 1, 1)
	ctx := &TickContext{Objects: p.objects}
	p.tracker.Run(ctx)
	p.gen.Run(ctx)
	p.apply.Run(ctx)

	assert.Equal(t, 1, ctx.Stats.Applied)
	assert.Equal(t, 2, ctx.Stats.Deferred)
}

func TestApplicationClockBudget(t *testing.T) {
	p := newPipeline(t, 50, 0, 1, 1, 1, 1)
	now := time.Unix(0, 0)
	clock := func() time.Time {
		now = now.Add(5 * time.Millisecond)
		return now
	}
	apply := NewApplicationStage(p.pool, p.renderer, WithBudget(50, 8*time.Millisecond), WithClock(clock))

	ctx := &TickContext{Objects: p.objects}
	p.tracker.Run(ctx)
	p.gen.Run(ctx)
	var q PriorityQueue
	q.Gather(p.objects)
	q.Sort()

	// start=5ms; the check at 10ms is within the 8ms budget, the one at 15ms is not
	result := apply.Apply(&q)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, 2, result.Deferred)
}

func TestApplicationClearsStateAndCopies(t *testing.T) {
	p := newPipeline(t, 50, time.Hour, 2)
	obj := p.objects[0]
	stats := p.tick(0)
	assert.Equal(t, 1, stats.Applied)

	assert.False(t, obj.Tracker.HasPendingUpdate)
	assert.False(t, obj.Generation.IsDataReady)
	assert.Equal(t, obj.Generation.GenerationVersion, obj.Tracker.LastAppliedVersion)
	assert.Equal(t, uint32(0), obj.Tracker.FramesSinceUpdate)
	assert.Equal(t, obj.Generation.Bounds, obj.Bounds)

	h, ok := p.pool.Resource(obj.PoolIndex())
	require.True(t, ok)
	vertex, index, err := p.renderer.ReadMesh(h)
	require.NoError(t, err)
	assert.Equal(t, obj.Staging.Vertices(), vertex)
	assert.Equal(t, obj.Staging.Indices(), index)
}

func TestApplicationSkipsMissingResource(t *testing.T) {
	p := newPipeline(t, 1, time.Hour, 1, 1)
	h, ok := p.pool.Resource(p.objects[0].PoolIndex())
	require.True(t, ok)
	p.renderer.ReleaseMesh(h)

	stats := p.tick(0)
	// the skipped object counts toward the budget of 1
	assert.Equal(t, 0, stats.Applied)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Deferred)
	assert.True(t, p.objects[0].Tracker.HasPendingUpdate)

	stats = p.tick(0)
	assert.Equal(t, 1, stats.Skipped, "retried and skipped again")
}

func TestRunnerOrdersPhases(t *testing.T) {
	p := newPipeline(t, 50, time.Hour, 2)
	stats := p.tick(0.25)

	assert.Equal(t, 1, stats.Objects)
	assert.Equal(t, 1, stats.Dirty)
	assert.Equal(t, 1, stats.Generated)
	assert.Equal(t, 1, stats.Ready)
	assert.Equal(t, 1, stats.Applied)
	assert.Greater(t, p.objects[0].Animation.ShapeState, float32(0), "animation ran before tracking")
	assert.Equal(t, p.objects[0].Animation.ShapeState, p.objects[0].Generation.GeneratedShapeState)
	assert.GreaterOrEqual(t, stats.Total(), stats.Duration(PhaseGenerate))
	assert.Equal(t, "generate", PhaseGenerate.String())
}

func TestIndependentGeometry(t *testing.T) {
	p := newPipeline(t, 50, time.Hour, 1, 4)
	p.tick(0.1)

	for _, obj := range p.objects {
		tess := obj.Params().Tessellation
		h, ok := p.pool.Resource(obj.PoolIndex())
		require.True(t, ok)
		info, ok := p.renderer.Mesh(h)
		require.True(t, ok)
		assert.Equal(t, geometry.VertexCount(tess), info.VertexCount)
		assert.Equal(t, geometry.IndexCount(tess), info.IndexCount)
		assert.Equal(t, geometry.VertexCount(tess)*model.VertexStride, info.VertexBytes)
	}
}
