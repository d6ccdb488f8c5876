package scene

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/Carmen-Shannon/oxy-morph/engine/config"
	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
	"github.com/Carmen-Shannon/oxy-morph/engine/mesh_pool"
	"github.com/Carmen-Shannon/oxy-morph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-morph/engine/stage"
	"go.uber.org/zap"
)

var (
	// ErrInvalidHandle is returned for a handle that was never spawned or has been despawned.
	ErrInvalidHandle = errors.New("scene: invalid object handle")
	// ErrInvalidParams is returned by Spawn for unusable geometry params.
	ErrInvalidParams = game_object.ErrInvalidParams
	// ErrSceneClosed is returned by Spawn after Close.
	ErrSceneClosed = errors.New("scene: closed")
)

// Scene owns a set of morphing objects and drives them through the mesh pipeline once per Tick.
// Each object gets a MeshPool slot for its lifetime; its geometry is regenerated on the CPU as it animates
// and copied into the slot's renderer resource under a per-tick budget.
// Thread-safe for concurrent access; Tick and every other method are serialized.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Renderer returns the renderer that owns the scene's mesh resources.
	Renderer() renderer.Renderer

	// Spawn creates an object and claims a mesh pool slot for it.
	//
	// Parameters:
	//   - params: the object's geometry, fixed for its lifetime
	//   - phaseOffsetSeconds: how far into its morph cycle the object starts
	//
	// Returns:
	//   - game_object.Handle: the new object's handle
	//   - error: ErrInvalidParams, mesh_pool.ErrPoolExhausted or ErrSceneClosed
	Spawn(params game_object.GeometryParams, phaseOffsetSeconds float32) (game_object.Handle, error)

	// Despawn removes an object and releases its pool slot. Unknown handles are ignored.
	//
	// Parameters:
	//   - h: the object to remove
	Despawn(h game_object.Handle)

	// Tick advances every object by dt and runs the animate, track, generate and apply stages in order.
	//
	// Parameters:
	//   - dt: elapsed time since the last tick in seconds
	//
	// Returns:
	//   - stage.TickStats: what the tick did
	Tick(dt float32) stage.TickStats

	// SetImmediateUpdate moves an object to the front of the apply queue until its next apply.
	//
	// Parameters:
	//   - h: the object to expedite
	//
	// Returns:
	//   - error: ErrInvalidHandle if the handle is not live
	SetImmediateUpdate(h game_object.Handle) error

	// MeshResource returns the renderer resource that holds an object's applied mesh.
	//
	// Parameters:
	//   - h: the object to look up
	//
	// Returns:
	//   - renderer.MeshHandle: the resource
	//   - error: ErrInvalidHandle, or renderer.ErrMeshNotFound if the renderer dropped the resource
	MeshResource(h game_object.Handle) (renderer.MeshHandle, error)

	// Bounds returns the local-space bounds of an object's last applied mesh.
	Bounds(h game_object.Handle) (common.Bounds, error)

	// WorldBounds returns an object's applied bounds transformed by its transform.
	WorldBounds(h game_object.Handle) (common.Bounds, error)

	// Transform returns an object's transform.
	Transform(h game_object.Handle) (common.Transform, error)

	// SetTransform replaces an object's transform. It does not affect generated geometry.
	SetTransform(h game_object.Handle, t common.Transform) error

	// Snapshot returns a copy of an object's per-stage state.
	Snapshot(h game_object.Handle) (game_object.Snapshot, error)

	// Handles returns the live handles in spawn order.
	Handles() []game_object.Handle

	// Count returns the number of live objects.
	Count() int

	// PoolInUse returns the number of claimed mesh pool slots.
	PoolInUse() int

	// PoolCapacity returns the fixed number of mesh pool slots.
	PoolCapacity() int

	// SetBudget applies the budget and regeneration knobs of a reloaded config. Capacity, workers and
	// batch size are fixed at construction and ignored here.
	//
	// Parameters:
	//   - cfg: the new pipeline settings
	SetBudget(cfg config.PipelineConfig)

	// Close despawns every object and releases the pool's renderer resources.
	Close()
}

type scene struct {
	mu     sync.Mutex
	name   string
	logger *zap.Logger
	now    func() time.Time
	closed bool

	renderer renderer.Renderer
	pool     mesh_pool.MeshPool

	objects map[game_object.Handle]*game_object.GameObject
	order   []*game_object.GameObject // spawn order, handed to the stages
	owners  []int                     // reused by rebuildPool
	nextID  uint64
	ticks   uint64

	tracker     *stage.ChangeTracker
	generation  *stage.GenerationStage
	application *stage.ApplicationStage
	runner      *stage.Runner

	// computePool runs the per-object stages in batches. Workers persist across ticks.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
	batchSize      int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a Scene with a mesh pool of cfg.PoolCapacity slots backed by r.
//
// Parameters:
//   - name: the name of the scene
//   - r: the renderer that owns the mesh resources (must not be nil)
//   - cfg: pipeline budget, pool and worker settings
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
//   - error: config.ErrInvalidConfig if the renderer is nil or the pool capacity is not positive
func NewScene(name string, r renderer.Renderer, cfg config.PipelineConfig, options ...SceneBuilderOption) (Scene, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: scene %q requires a renderer", config.ErrInvalidConfig, name)
	}
	pool, err := mesh_pool.NewMeshPool(cfg.PoolCapacity, r, mesh_pool.WithLabel(name+" Mesh"))
	if err != nil {
		return nil, fmt.Errorf("%w: scene %q: %w", config.ErrInvalidConfig, name, err)
	}

	s := &scene{
		name:           name,
		logger:         zap.NewNop(),
		now:            time.Now,
		renderer:       r,
		pool:           pool,
		objects:        make(map[game_object.Handle]*game_object.GameObject),
		nextID:         1,
		computeWorkers: cfg.Workers,
		batchSize:      cfg.BatchSize,
	}
	if s.computeWorkers < 1 {
		s.computeWorkers = max(runtime.NumCPU()-1, 1)
	}
	if s.batchSize < 1 {
		s.batchSize = 64
	}

	for _, option := range options {
		option(s)
	}

	s.tracker = stage.NewChangeTracker(
		stage.WithEpsilon(float32(cfg.ShapeEpsilon)),
		stage.WithMinFramesBetweenRegeneration(cfg.MinFramesBetweenRegeneration),
		stage.WithAgingWeight(float32(cfg.PriorityAgingWeight)),
	)
	s.generation = stage.NewGenerationStage(
		stage.WithMaxStagingBytes(cfg.MaxStagingBytes),
		stage.WithGenerationLogger(s.logger),
	)
	s.application = stage.NewApplicationStage(pool, r,
		stage.WithBudget(cfg.MaxUpdatesPerTick, cfg.MaxTimeBudget()),
		stage.WithClock(s.now),
		stage.WithApplicationLogger(s.logger),
	)
	s.runner = stage.NewRunner()
	s.runner.Register(stage.AnimationStage{}, s.tracker, s.generation, s.application)

	// Initialize the compute pool after options so WithComputeWorkers can override the default.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	s.logger.Info("scene created",
		zap.String("scene", name),
		zap.Int("pool_capacity", cfg.PoolCapacity),
		zap.Int("workers", s.computeWorkers),
		zap.Int("batch_size", s.batchSize),
	)
	return s, nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *scene) Spawn(params game_object.GeometryParams, phaseOffsetSeconds float32) (game_object.Handle, error) {
	if err := params.Validate(); err != nil {
		return game_object.InvalidHandle, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return game_object.InvalidHandle, ErrSceneClosed
	}

	s.rebuildPool()
	index, err := s.pool.Allocate()
	if err != nil {
		s.logger.Warn("spawn rejected", zap.String("scene", s.name), zap.Error(err))
		return game_object.InvalidHandle, err
	}

	obj := game_object.NewGameObject(
		game_object.WithID(s.nextID),
		game_object.WithParams(params),
		game_object.WithPhaseOffset(phaseOffsetSeconds),
		game_object.WithPoolIndex(index),
	)
	s.nextID++
	s.objects[obj.Handle()] = obj
	s.order = append(s.order, obj)

	s.logger.Debug("object spawned",
		zap.Uint64("object", obj.ID()),
		zap.Int("pool_index", index),
		zap.Stringer("kind", params.Kind),
		zap.Int("tessellation", params.Tessellation),
	)
	return obj.Handle(), nil
}

func (s *scene) Despawn(h game_object.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[h]
	if !ok {
		return
	}
	delete(s.objects, h)
	s.order = slices.DeleteFunc(s.order, func(o *game_object.GameObject) bool { return o == obj })
	s.pool.Release(obj.PoolIndex())
	s.logger.Debug("object despawned", zap.Uint64("object", obj.ID()), zap.Int("pool_index", obj.PoolIndex()))
}

func (s *scene) Tick(dt float32) stage.TickStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return stage.TickStats{}
	}

	s.ticks++
	s.rebuildPool()

	ctx := &stage.TickContext{
		DeltaTime: dt,
		Objects:   s.order,
		ForEach:   s.parallelFor,
	}
	ctx.Stats.Tick = s.ticks
	s.runner.Tick(ctx)
	return ctx.Stats
}

// rebuildPool derives the pool's in-use table from the live objects. Callers must hold s.mu.
func (s *scene) rebuildPool() {
	s.owners = s.owners[:0]
	for _, obj := range s.order {
		s.owners = append(s.owners, obj.PoolIndex())
	}
	if err := s.pool.Rebuild(s.owners); err != nil {
		s.logger.Error("mesh pool ownership conflict", zap.String("scene", s.name), zap.Error(err))
	}
}

// parallelFor runs fn over objects in batches on the compute pool and waits for every batch.
// Small workloads run on the calling goroutine.
func (s *scene) parallelFor(objects []*game_object.GameObject, fn func(obj *game_object.GameObject)) {
	if s.computeWorkers == 1 || len(objects) <= s.batchSize {
		stage.Serial(objects, fn)
		return
	}

	// A WaitGroup provides the stage barrier; workers stay alive between ticks.
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(objects); start += s.batchSize {
		batch := objects[start:min(start+s.batchSize, len(objects))]
		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for _, obj := range batch {
					fn(obj)
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
}

// lookup returns the live object for h. Callers must hold s.mu.
func (s *scene) lookup(h game_object.Handle) (*game_object.GameObject, error) {
	obj, ok := s.objects[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return obj, nil
}

func (s *scene) SetImmediateUpdate(h game_object.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.lookup(h)
	if err != nil {
		return err
	}
	obj.Tracker.Immediate = true
	return nil
}

func (s *scene) MeshResource(h game_object.Handle) (renderer.MeshHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	mesh, ok := s.pool.Resource(obj.PoolIndex())
	if !ok {
		return 0, fmt.Errorf("%w: slot %d of object %d", renderer.ErrMeshNotFound, obj.PoolIndex(), obj.ID())
	}
	return mesh, nil
}

func (s *scene) Bounds(h game_object.Handle) (common.Bounds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.lookup(h)
	if err != nil {
		return common.Bounds{}, err
	}
	return obj.Bounds, nil
}

func (s *scene) WorldBounds(h game_object.Handle) (common.Bounds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.lookup(h)
	if err != nil {
		return common.Bounds{}, err
	}
	return obj.Transform.WorldBounds(obj.Bounds), nil
}

func (s *scene) Transform(h game_object.Handle) (common.Transform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.lookup(h)
	if err != nil {
		return common.Transform{}, err
	}
	return obj.Transform, nil
}

func (s *scene) SetTransform(h game_object.Handle, t common.Transform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.lookup(h)
	if err != nil {
		return err
	}
	obj.Transform = t
	return nil
}

func (s *scene) Snapshot(h game_object.Handle) (game_object.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, err := s.lookup(h)
	if err != nil {
		return game_object.Snapshot{}, err
	}
	return obj.Snapshot(), nil
}

func (s *scene) Handles() []game_object.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	handles := make([]game_object.Handle, len(s.order))
	for i, obj := range s.order {
		handles[i] = obj.Handle()
	}
	return handles
}

func (s *scene) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *scene) PoolInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Used()
}

func (s *scene) PoolCapacity() int {
	return s.pool.Capacity()
}

func (s *scene) SetBudget(cfg config.PipelineConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.application.SetBudget(cfg.MaxUpdatesPerTick, cfg.MaxTimeBudget())
	s.tracker.SetPolicy(cfg.MinFramesBetweenRegeneration, float32(cfg.PriorityAgingWeight))
	s.logger.Info("scene budget updated",
		zap.String("scene", s.name),
		zap.Int("max_updates_per_tick", cfg.MaxUpdatesPerTick),
		zap.Duration("max_time_budget", cfg.MaxTimeBudget()),
		zap.Int("min_frames_between_regeneration", cfg.MinFramesBetweenRegeneration),
	)
}

func (s *scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	clear(s.objects)
	s.order = nil
	s.pool.Close()
	s.logger.Info("scene closed", zap.String("scene", s.name))
}
