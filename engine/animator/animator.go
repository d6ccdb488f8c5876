// Package animator drives the ping-pong morph between the two end shapes of an object.
package animator

import (
	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/chewxy/math32"
)

// Phase is the half-cycle an AnimationState is currently in.
type Phase int8

const (
	// ApproachingB moves shapeState from 0 towards 1.
	ApproachingB Phase = 1
	// ApproachingA moves shapeState from 1 towards 0.
	ApproachingA Phase = -1
)

func (p Phase) String() string {
	if p == ApproachingA {
		return "approaching-a"
	}
	return "approaching-b"
}

// AnimationState is the per-object morph clock.
//
// InterpolationTime climbs from 0 to 1 over one animation period, then resets to 0 and flips Direction.
// ShapeState is always derived from the other two fields and is never written directly outside this package.
type AnimationState struct {
	// InterpolationTime is the linear progress through the current half-cycle, in [0, 1].
	InterpolationTime float32
	// Direction is +1 while approaching shape B and -1 while approaching shape A.
	Direction Phase
	// ShapeState is the eased blend factor, 0 at shape A and 1 at shape B.
	ShapeState float32
	// Elapsed is the total animated time in seconds, including the spawn offset.
	Elapsed float32
}

// NewAnimationState returns the state reached after animating for phaseOffsetSeconds from rest at shape A.
//
// Parameters:
//   - phaseOffsetSeconds: initial offset into the animation; negative values are treated as zero
//   - periodSeconds: the length of one half-cycle, must be > 0
//
// Returns:
//   - AnimationState: the initial state
func NewAnimationState(phaseOffsetSeconds, periodSeconds float32) AnimationState {
	s := AnimationState{Direction: ApproachingB}
	if phaseOffsetSeconds > 0 && periodSeconds > 0 {
		cycles := math32.Floor(phaseOffsetSeconds / periodSeconds)
		s.InterpolationTime = phaseOffsetSeconds/periodSeconds - cycles
		if int64(cycles)%2 == 1 {
			s.Direction = ApproachingA
		}
		s.Elapsed = phaseOffsetSeconds
	}
	s.updateShape()
	return s
}

// Advance moves the state forward by dt seconds.
// When InterpolationTime reaches 1 it resets to 0 and the direction flips; the remainder is not carried over.
//
// Parameters:
//   - dt: elapsed time in seconds
//   - periodSeconds: the length of one half-cycle, must be > 0
//
// Returns:
//   - bool: true if the direction flipped during this step
func (s *AnimationState) Advance(dt, periodSeconds float32) bool {
	if dt <= 0 || periodSeconds <= 0 {
		return false
	}
	s.Elapsed += dt
	s.InterpolationTime += dt / periodSeconds
	flipped := false
	if s.InterpolationTime >= 1 {
		s.InterpolationTime = 0
		s.Direction = -s.Direction
		flipped = true
	}
	s.updateShape()
	return flipped
}

// Phase returns the current half-cycle.
func (s *AnimationState) Phase() Phase {
	return s.Direction
}

// AtRest reports whether ShapeState is within eps of either end shape.
func (s *AnimationState) AtRest(eps float32) bool {
	return s.ShapeState <= eps || s.ShapeState >= 1-eps
}

func (s *AnimationState) updateShape() {
	eased := common.Smoothstep(s.InterpolationTime)
	if s.Direction == ApproachingA {
		s.ShapeState = 1 - eased
		return
	}
	s.ShapeState = eased
}
