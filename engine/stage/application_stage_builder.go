package stage

import (
	"time"

	"go.uber.org/zap"
)

// ApplicationStageBuilderOption is a functional option for configuring an ApplicationStage during construction.
type ApplicationStageBuilderOption func(*ApplicationStage)

// WithBudget sets the per-tick limits of the stage.
//
// Parameters:
//   - maxUpdates: objects processed per tick, clamped to at least 1
//   - maxTime: soft time ceiling, clamped to at least 0
//
// Returns:
//   - ApplicationStageBuilderOption: functional option to set the budget
func WithBudget(maxUpdates int, maxTime time.Duration) ApplicationStageBuilderOption {
	return func(a *ApplicationStage) {
		a.SetBudget(maxUpdates, maxTime)
	}
}

// WithClock replaces the stage's time source.
//
// Parameters:
//   - now: returns the current time; nil keeps time.Now
//
// Returns:
//   - ApplicationStageBuilderOption: functional option to set the clock
func WithClock(now func() time.Time) ApplicationStageBuilderOption {
	return func(a *ApplicationStage) {
		if now != nil {
			a.now = now
		}
	}
}

// WithApplicationLogger sets the logger used to report skipped updates.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - ApplicationStageBuilderOption: functional option to set the logger
func WithApplicationLogger(logger *zap.Logger) ApplicationStageBuilderOption {
	return func(a *ApplicationStage) {
		if logger != nil {
			a.logger = logger
		}
	}
}
