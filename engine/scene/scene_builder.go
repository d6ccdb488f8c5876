package scene

import (
	"time"

	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithLogger sets the logger passed to the scene and its stages.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithComputeWorkers sets the number of worker goroutines used by the animate, track and generate stages.
// Overrides the config's worker count. With 1 worker every stage runs on the ticking goroutine.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.computeWorkers = max(n, 1)
	}
}

// WithBatchSize sets how many objects each worker task processes.
// Overrides the config's batch size.
//
// Parameters:
//   - n: objects per task (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBatchSize(n int) SceneBuilderOption {
	return func(s *scene) {
		s.batchSize = max(n, 1)
	}
}

// WithClock replaces the time source used by the apply stage's time budget.
//
// Parameters:
//   - now: returns the current time; nil keeps time.Now
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClock(now func() time.Time) SceneBuilderOption {
	return func(s *scene) {
		if now != nil {
			s.now = now
		}
	}
}
