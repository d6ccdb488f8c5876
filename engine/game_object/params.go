package game_object

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-morph/engine/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidParams is returned when GeometryParams fail validation.
var ErrInvalidParams = errors.New("game_object: invalid geometry params")

// ShapeKind selects which mesh variant an object generates.
type ShapeKind uint8

const (
	// ShapeMorph blends between a cube (shape A) and a sphere (shape B).
	ShapeMorph ShapeKind = iota
	// ShapeHeightField is a fractal-driven height grid animated by the morph clock.
	ShapeHeightField
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeMorph:
		return "morph"
	case ShapeHeightField:
		return "height-field"
	default:
		return fmt.Sprintf("shape(%d)", uint8(k))
	}
}

// GeometryParams describes the mesh an object generates. It is immutable once the object is spawned.
type GeometryParams struct {
	// Kind selects the mesh variant.
	Kind ShapeKind
	// ShapeSizeA is the cube edge length, or the grid extent for a height field.
	ShapeSizeA float32
	// ShapeSizeB is the sphere radius, or the height amplitude for a height field.
	ShapeSizeB float32
	// Tessellation is the number of subdivisions per edge, at least 1.
	Tessellation int
	// AnimationPeriodSeconds is the duration of one half-cycle of the morph clock.
	AnimationPeriodSeconds float32
	// Center offsets the generated mesh in object space.
	Center mgl32.Vec3
	// Fractal configures the height-field kernel. Ignored for ShapeMorph.
	Fractal geometry.FractalParams
}

// DefaultGeometryParams returns a unit cube morphing into a sphere of radius 0.75 over two seconds.
func DefaultGeometryParams() GeometryParams {
	return GeometryParams{
		Kind:                   ShapeMorph,
		ShapeSizeA:             1,
		ShapeSizeB:             0.75,
		Tessellation:           8,
		AnimationPeriodSeconds: 2,
		Fractal:                geometry.DefaultFractalParams(),
	}
}

// Validate checks the params and returns an error wrapping ErrInvalidParams on the first violation.
func (p GeometryParams) Validate() error {
	switch {
	case p.Kind != ShapeMorph && p.Kind != ShapeHeightField:
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidParams, p.Kind)
	case p.Tessellation < 1:
		return fmt.Errorf("%w: tessellation %d < 1", ErrInvalidParams, p.Tessellation)
	case !(p.AnimationPeriodSeconds > 0):
		return fmt.Errorf("%w: animation period %v must be > 0", ErrInvalidParams, p.AnimationPeriodSeconds)
	case p.ShapeSizeA < 0 || p.ShapeSizeB < 0:
		return fmt.Errorf("%w: negative shape size", ErrInvalidParams)
	case p.Kind == ShapeHeightField && p.Fractal.MaxIterations < 1:
		return fmt.Errorf("%w: fractal max iterations %d < 1", ErrInvalidParams, p.Fractal.MaxIterations)
	}
	return nil
}

// Topology returns the index layout of the params' mesh variant.
func (p GeometryParams) Topology() geometry.Topology {
	if p.Kind == ShapeHeightField {
		return geometry.TopologyGrid
	}
	return geometry.TopologyCube
}

// Counts returns the vertex and index counts implied by the params.
func (p GeometryParams) Counts() (int, int, error) {
	return geometry.Counts(p.Topology(), p.Tessellation)
}
