package stage

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
	"github.com/Carmen-Shannon/oxy-morph/engine/geometry"
	"github.com/Carmen-Shannon/oxy-morph/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// GenerationStage fills the staging buffer of every object flagged by the change tracker.
// Each call only touches the object it is given plus the shared, read-only index cache.
type GenerationStage struct {
	indices *geometry.IndexCache
	alloc   game_object.Allocator
	logger  *zap.Logger
}

var _ Stage = &GenerationStage{}

// NewGenerationStage creates a GenerationStage configured with the given options.
//
// Parameters:
//   - options: functional options to configure the stage
//
// Returns:
//   - *GenerationStage: the created stage
func NewGenerationStage(options ...GenerationStageBuilderOption) *GenerationStage {
	g := &GenerationStage{
		alloc:  game_object.NewAllocator(0),
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(g)
	}
	if g.indices == nil {
		g.indices = geometry.NewIndexCache()
	}
	return g
}

// Phase returns PhaseGenerate.
func (g *GenerationStage) Phase() Phase {
	return PhaseGenerate
}

// IndexCache returns the stage's shared index cache.
func (g *GenerationStage) IndexCache() *geometry.IndexCache {
	return g.indices
}

// Generate rebuilds obj's staging buffer for its current shape state.
// On success GenerationVersion is incremented by one and the data is marked ready.
// On failure the data stays not ready and the object stays flagged for the next tick.
//
// Parameters:
//   - obj: the object to generate
//
// Returns:
//   - error: wrapping ErrBufferSizeMismatch on failure
func (g *GenerationStage) Generate(obj *game_object.GameObject) (err error) {
	gen := &obj.Generation
	gen.IsDataReady = false

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: object %d: panic: %v", ErrBufferSizeMismatch, obj.ID(), r)
		}
		if err != nil {
			obj.Staging.Reset()
			gen.Failures++
		}
	}()

	params := obj.Params()
	vertexCount, indexCount, err := params.Counts()
	if err != nil {
		return fmt.Errorf("%w: object %d: %w", ErrBufferSizeMismatch, obj.ID(), err)
	}
	vertexBytes := vertexCount * model.VertexStride
	indexBytes := indexCount * model.IndexStride
	if err := obj.Staging.Resize(vertexBytes, indexBytes, g.alloc); err != nil {
		return fmt.Errorf("%w: object %d: %w", ErrBufferSizeMismatch, obj.ID(), err)
	}
	indices, err := g.indices.Get(params.Topology(), params.Tessellation)
	if err != nil {
		return fmt.Errorf("%w: object %d: %w", ErrBufferSizeMismatch, obj.ID(), err)
	}

	state := obj.Animation.ShapeState
	sc := &obj.Scratch
	sc.Ensure(vertexCount, params.Kind)

	var colors []mgl32.Vec4
	if params.Kind == game_object.ShapeHeightField {
		colors = sc.Colors
		err = geometry.GenerateHeightField(params.ShapeSizeA, params.ShapeSizeB, params.Tessellation, params.Center,
			params.Fractal, state*params.AnimationPeriodSeconds, sc.Positions, sc.Normals, sc.UVs, sc.Colors)
	} else {
		err = g.blendShapes(params, state, sc)
	}
	if err != nil {
		return fmt.Errorf("%w: object %d: %w", ErrBufferSizeMismatch, obj.ID(), err)
	}

	if err := model.EncodeVertices(obj.Staging.Vertices(), sc.Positions, sc.Normals, sc.UVs, colors); err != nil {
		return fmt.Errorf("%w: object %d: %w", ErrBufferSizeMismatch, obj.ID(), err)
	}
	if err := model.EncodeIndices(obj.Staging.Indices(), indices); err != nil {
		return fmt.Errorf("%w: object %d: %w", ErrBufferSizeMismatch, obj.ID(), err)
	}

	gen.VertexCount = vertexCount
	gen.IndexCount = indexCount
	gen.VertexByteSize = vertexBytes
	gen.IndexByteSize = indexBytes
	gen.Bounds = geometry.ComputeBounds(sc.Positions)
	gen.GeneratedShapeState = state
	gen.HasGenerated = true
	gen.GenerationVersion++
	gen.IsDataReady = true
	obj.Tracker.NeedsGeneration = false
	return nil
}

// blendShapes fills both end shapes into scratch and interpolates them by state.
func (g *GenerationStage) blendShapes(params game_object.GeometryParams, state float32, sc *game_object.Scratch) error {
	t := params.Tessellation
	if err := geometry.GenerateShapeAVertices(params.ShapeSizeA, t, params.Center, sc.PositionsA, sc.NormalsA, sc.UVs); err != nil {
		return err
	}
	if err := geometry.GenerateShapeBVertices(params.ShapeSizeB, t, params.Center, sc.PositionsB, sc.NormalsB, sc.UVsB); err != nil {
		return err
	}
	if err := geometry.InterpolateVertices(sc.PositionsA, sc.PositionsB, state, sc.Positions); err != nil {
		return err
	}
	return geometry.InterpolateNormals(sc.NormalsA, sc.NormalsB, state, sc.Normals)
}

// Run generates every flagged object and records successes and failures.
func (g *GenerationStage) Run(ctx *TickContext) {
	var generated, failed atomic.Int64
	ctx.forEach(func(obj *game_object.GameObject) {
		if !obj.Tracker.NeedsGeneration {
			return
		}
		if err := g.Generate(obj); err != nil {
			failed.Add(1)
			g.logger.Warn("mesh generation failed",
				zap.Uint64("object", obj.ID()),
				zap.Int("tessellation", obj.Params().Tessellation),
				zap.Error(err),
			)
			return
		}
		generated.Add(1)
	})
	ctx.Stats.Generated = int(generated.Load())
	ctx.Stats.GenerationFailures = int(failed.Load())
}
