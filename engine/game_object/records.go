package game_object

import (
	"github.com/Carmen-Shannon/oxy-morph/common"
)

// LifecycleStage is where an object sits in the generate/apply cycle.
type LifecycleStage uint8

const (
	// StageUninitialized objects have been spawned but not yet seen by the change tracker.
	StageUninitialized LifecycleStage = iota
	// StageTracked objects are checked every tick and have nothing pending.
	StageTracked
	// StagePending objects have a generated or in-flight update waiting to be applied.
	StagePending
	// StageApplied objects have had their latest generation copied to the renderer.
	StageApplied
)

func (s LifecycleStage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StageTracked:
		return "tracked"
	case StagePending:
		return "pending"
	case StageApplied:
		return "applied"
	default:
		return "unknown"
	}
}

// ChangeTrackerRecord is written by the change tracker and cleared by the application stage.
type ChangeTrackerRecord struct {
	// LastAppliedVersion is the GenerationVersion most recently copied to the renderer.
	LastAppliedVersion uint64
	// FramesSinceUpdate counts ticks since the last successful apply.
	FramesSinceUpdate uint32
	// PendingPriority orders pending objects in the application stage; higher goes first.
	PendingPriority float32
	// HasPendingUpdate is set while an update is waiting to be applied.
	HasPendingUpdate bool
	// NeedsGeneration asks the generation stage to rebuild the staging buffer this tick.
	NeedsGeneration bool
	// Immediate pins PendingPriority to the immediate constant until the object is applied.
	Immediate bool
	// TrackedParamsVersion is the params version the tracker last saw.
	TrackedParamsVersion uint64
}

// GenerationRecord is produced by the generation stage and consumed by the application stage.
type GenerationRecord struct {
	VertexCount    int
	IndexCount     int
	VertexByteSize int
	IndexByteSize  int
	// GenerationVersion increments by one for every successful generation, starting from 0.
	GenerationVersion uint64
	// IsDataReady is set once the staging buffer holds a complete generation.
	IsDataReady bool
	// HasGenerated is set after the first successful generation.
	HasGenerated bool
	// GeneratedShapeState is the shape state encoded in the staging buffer.
	GeneratedShapeState float32
	// Bounds encloses the staged positions in object space.
	Bounds common.Bounds
	// Failures counts generations that could not size the staging buffer.
	Failures uint64
}
