package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// fractalDrift is the radius of the circle the fractal constant traces as time advances.
const fractalDrift float32 = 0.015

// FractalParams configures the escape-time height kernel.
type FractalParams struct {
	// CenterX and CenterY offset the sampled region of the complex plane.
	CenterX, CenterY float32
	// Scale maps the point's dominant axes into the complex plane.
	Scale float32
	// MaxIterations bounds the escape loop. Values below 1 are treated as 1.
	MaxIterations int
}

// DefaultFractalParams returns a view framing the main cardioid of the Mandelbrot set.
func DefaultFractalParams() FractalParams {
	return FractalParams{CenterX: -0.5, CenterY: 0, Scale: 1.5, MaxIterations: 32}
}

// dominantAxes returns the two components of p with the largest magnitude, in axis order.
func dominantAxes(p mgl32.Vec3) (float32, float32) {
	drop := 0
	for i := 1; i < 3; i++ {
		if math32.Abs(p[i]) <= math32.Abs(p[drop]) {
			drop = i
		}
	}
	switch drop {
	case 0:
		return p[1], p[2]
	case 1:
		return p[0], p[2]
	default:
		return p[0], p[1]
	}
}

// FractalHeight evaluates the smoothed escape count of z ← z²+c, where c comes from the two dominant axes
// of point placed by params and drifted by time.
//
// Parameters:
//   - point: the sample position
//   - params: the region and iteration bound
//   - time: animation time in seconds
//
// Returns:
//   - float32: the normalized escape count in [0, 1], or 1 if the orbit stays bounded for MaxIterations
func FractalHeight(point mgl32.Vec3, params FractalParams, time float32) float32 {
	maxIter := max(params.MaxIterations, 1)
	a, b := dominantAxes(point)
	cr := params.CenterX + params.Scale*a + fractalDrift*math32.Cos(time)
	ci := params.CenterY + params.Scale*b + fractalDrift*math32.Sin(time)

	var zr, zi float32
	for n := range maxIter {
		zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
		mag2 := zr*zr + zi*zi
		if mag2 > 4 {
			// log|z| = log(|z|²)/2
			smooth := float32(n) + 1 - math32.Log2(0.5*math32.Log(mag2))
			return mgl32.Clamp(smooth/float32(maxIter), 0, 1)
		}
	}
	return 1
}
