// Package stage implements the per-tick phases of the mesh pipeline: animation, change tracking, generation
// and application. A Runner executes registered stages in phase order, and each stage finishes all of its
// work before the next one starts.
package stage

import (
	"errors"
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
)

// ErrBufferSizeMismatch is returned when an object's staging buffer could not be sized to its topology.
var ErrBufferSizeMismatch = errors.New("stage: staging buffer size mismatch")

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseAnimate  Phase = iota // 0: advance animation clocks (parallel)
	PhaseTrack                 // 1: mark dirty objects and assign priority (parallel)
	PhaseGenerate              // 2: fill staging buffers (parallel)
	PhaseApply                 // 3: copy staging buffers into renderer resources (serial)
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseAnimate:
		return "animate"
	case PhaseTrack:
		return "track"
	case PhaseGenerate:
		return "generate"
	case PhaseApply:
		return "apply"
	default:
		return "unknown"
	}
}

// ForEach calls fn once for every object and returns only after every call has returned.
// Implementations may run calls concurrently; fn must only touch the object it is given.
type ForEach func(objects []*game_object.GameObject, fn func(obj *game_object.GameObject))

// Serial is a ForEach that runs every call on the calling goroutine.
func Serial(objects []*game_object.GameObject, fn func(obj *game_object.GameObject)) {
	for _, obj := range objects {
		fn(obj)
	}
}

// TickStats summarizes one tick of the pipeline.
type TickStats struct {
	Tick               uint64
	Objects            int
	Dirty              int
	Generated          int
	GenerationFailures int
	Ready              int
	Applied            int
	Skipped            int
	Deferred           int
	StageDurations     [phaseCount]time.Duration
}

// Duration returns the time spent in one phase.
func (s TickStats) Duration(p Phase) time.Duration {
	if p < 0 || p >= phaseCount {
		return 0
	}
	return s.StageDurations[p]
}

// Total returns the time spent across all phases.
func (s TickStats) Total() time.Duration {
	var total time.Duration
	for _, d := range s.StageDurations {
		total += d
	}
	return total
}

// TickContext carries the inputs and accumulated stats of one tick through the stages.
type TickContext struct {
	// DeltaTime is the tick's elapsed time in seconds.
	DeltaTime float32
	// Objects is every live object, in a stable order.
	Objects []*game_object.GameObject
	// ForEach fans per-object work out; nil runs serially.
	ForEach ForEach
	// Stats is filled in by the stages.
	Stats TickStats
}

func (c *TickContext) forEach(fn func(obj *game_object.GameObject)) {
	if c.ForEach == nil {
		Serial(c.Objects, fn)
		return
	}
	c.ForEach(c.Objects, fn)
}

// Stage is one phase of the pipeline.
type Stage interface {
	Phase() Phase
	Run(ctx *TickContext)
}

// Runner executes stages in phase order each tick.
type Runner struct {
	stages []Stage
	sorted bool
}

// NewRunner creates an empty Runner.
func NewRunner() *Runner {
	return &Runner{
		stages: make([]Stage, 0, int(phaseCount)),
	}
}

// Register adds stages to the runner.
func (r *Runner) Register(stages ...Stage) {
	r.stages = append(r.stages, stages...)
	r.sorted = false
}

// Tick runs every stage once, in phase order, recording how long each took.
func (r *Runner) Tick(ctx *TickContext) {
	r.ensureSorted()
	ctx.Stats.Objects = len(ctx.Objects)
	for _, s := range r.stages {
		start := time.Now()
		s.Run(ctx)
		if p := s.Phase(); p >= 0 && p < phaseCount {
			ctx.Stats.StageDurations[p] += time.Since(start)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		slices.SortStableFunc(r.stages, func(a, b Stage) int {
			return int(a.Phase()) - int(b.Phase())
		})
		r.sorted = true
	}
}

// AnimationStage advances every object's morph clock.
type AnimationStage struct{}

var _ Stage = AnimationStage{}

// Phase returns PhaseAnimate.
func (AnimationStage) Phase() Phase {
	return PhaseAnimate
}

// Run advances each object by the tick's delta time.
func (AnimationStage) Run(ctx *TickContext) {
	dt := ctx.DeltaTime
	ctx.forEach(func(obj *game_object.GameObject) {
		obj.Animation.Advance(dt, obj.Params().AnimationPeriodSeconds)
	})
}
