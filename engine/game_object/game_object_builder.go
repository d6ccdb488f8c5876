package game_object

import (
	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*GameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *GameObject) {
		obj.id = id
	}
}

// WithParams sets the geometry the GameObject generates.
//
// Parameters:
//   - params: the geometry parameters, validated by the caller
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the params
func WithParams(params GeometryParams) GameObjectBuilderOption {
	return func(obj *GameObject) {
		obj.params = params
	}
}

// WithPhaseOffset starts the GameObject's animation clock offsetSeconds into its cycle.
//
// Parameters:
//   - offsetSeconds: initial animation time in seconds
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the phase offset
func WithPhaseOffset(offsetSeconds float32) GameObjectBuilderOption {
	return func(obj *GameObject) {
		obj.phaseOffset = offsetSeconds
	}
}

// WithPoolIndex assigns the mesh pool slot owned by the GameObject.
//
// Parameters:
//   - index: the pool slot
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the pool index
func WithPoolIndex(index int) GameObjectBuilderOption {
	return func(obj *GameObject) {
		obj.poolIndex = index
	}
}

// WithTransform sets the initial placement of the GameObject.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the transform
func WithTransform(t common.Transform) GameObjectBuilderOption {
	return func(obj *GameObject) {
		obj.Transform = t
	}
}

// WithPosition sets the initial world position of the GameObject.
//
// Parameters:
//   - x, y, z: world-space position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *GameObject) {
		obj.Transform.Position = mgl32.Vec3{x, y, z}
	}
}
