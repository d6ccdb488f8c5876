package stage

import (
	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
	"github.com/Carmen-Shannon/oxy-morph/engine/geometry"
	"go.uber.org/zap"
)

// GenerationStageBuilderOption is a functional option for configuring a GenerationStage during construction.
type GenerationStageBuilderOption func(*GenerationStage)

// WithIndexCache shares an existing index cache with the stage.
//
// Parameters:
//   - cache: the cache to use
//
// Returns:
//   - GenerationStageBuilderOption: functional option to set the cache
func WithIndexCache(cache *geometry.IndexCache) GenerationStageBuilderOption {
	return func(g *GenerationStage) {
		g.indices = cache
	}
}

// WithAllocator sets the allocator used to size staging buffers.
//
// Parameters:
//   - alloc: the allocator; nil keeps the unbounded default
//
// Returns:
//   - GenerationStageBuilderOption: functional option to set the allocator
func WithAllocator(alloc game_object.Allocator) GenerationStageBuilderOption {
	return func(g *GenerationStage) {
		if alloc != nil {
			g.alloc = alloc
		}
	}
}

// WithMaxStagingBytes bounds every staging buffer allocation. 0 means unbounded.
//
// Parameters:
//   - maxBytes: the per-object ceiling in bytes
//
// Returns:
//   - GenerationStageBuilderOption: functional option to set the ceiling
func WithMaxStagingBytes(maxBytes int) GenerationStageBuilderOption {
	return func(g *GenerationStage) {
		g.alloc = game_object.NewAllocator(maxBytes)
	}
}

// WithGenerationLogger sets the logger used to report generation failures.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - GenerationStageBuilderOption: functional option to set the logger
func WithGenerationLogger(logger *zap.Logger) GenerationStageBuilderOption {
	return func(g *GenerationStage) {
		if logger != nil {
			g.logger = logger
		}
	}
}
