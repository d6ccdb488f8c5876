package stage

// ChangeTrackerBuilderOption is a functional option for configuring a ChangeTracker during construction.
type ChangeTrackerBuilderOption func(*ChangeTracker)

// WithEpsilon sets the tolerance used to decide whether a shape state is at rest or has moved.
//
// Parameters:
//   - eps: the tolerance, ignored if not positive
//
// Returns:
//   - ChangeTrackerBuilderOption: functional option to set the tolerance
func WithEpsilon(eps float32) ChangeTrackerBuilderOption {
	return func(c *ChangeTracker) {
		if eps > 0 {
			c.epsilon = eps
		}
	}
}

// WithMinFramesBetweenRegeneration sets how many ticks must pass after an apply before animation alone
// marks the object dirty again. Param changes and the immediate tag are not throttled.
//
// Parameters:
//   - frames: the interval, clamped to at least 1
//
// Returns:
//   - ChangeTrackerBuilderOption: functional option to set the interval
func WithMinFramesBetweenRegeneration(frames int) ChangeTrackerBuilderOption {
	return func(c *ChangeTracker) {
		c.minFrames = uint32(max(frames, 1))
	}
}

// WithAgingWeight adds weight·framesSinceUpdate to every computed priority so long-deferred objects rise.
//
// Parameters:
//   - weight: priority per tick; 0 disables aging
//
// Returns:
//   - ChangeTrackerBuilderOption: functional option to set the aging weight
func WithAgingWeight(weight float32) ChangeTrackerBuilderOption {
	return func(c *ChangeTracker) {
		c.agingWeight = weight
	}
}
