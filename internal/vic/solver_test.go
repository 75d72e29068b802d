package vic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vic-fitter/internal/bspline"
	"vic-fitter/internal/interp"
	"vic-fitter/pkg/geometry"
)

// renderDisk builds a synthetic bright disk on a dark background. A ramp
// width of zero produces a hard step edge at the given radius.
func renderDisk(size int, center geometry.Point2D, radius, bg, fg, ramp float64) *interp.Raster {
	r := interp.NewRaster(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			d := radius - math.Hypot(px-center.X, py-center.Y)

			var v float64
			switch {
			case ramp <= 0:
				v = bg
				if d >= 0 {
					v = fg
				}
			case d <= -ramp/2:
				v = bg
			case d >= ramp/2:
				v = fg
			default:
				v = bg + (d/ramp+0.5)*(fg-bg)
			}
			r.Set(x, y, v)
		}
	}
	return r
}

// fittedRadius measures the mean distance of the fitted curve from the
// known disk center.
func fittedRadius(t *testing.T, s *Solver, u []float64, center geometry.Point2D) float64 {
	t.Helper()
	pts, err := s.FittedCurve(u, 400)
	require.NoError(t, err)
	var sum float64
	for _, p := range pts {
		sum += center.Distance(p)
	}
	return sum / float64(len(pts))
}

func TestSolverRecoversRampEdge(t *testing.T) {
	center := geometry.NewPoint2D(128, 128)
	const trueRadius = 80.0
	img := renderDisk(256, center, trueRadius, 10, 210, 4)

	// Initial curve 5 pixels too large; small regularization so the
	// correlation term dominates.
	basis, ctrl, err := bspline.ClosedCircle(3, 16, center, trueRadius+5)
	require.NoError(t, err)

	params := DefaultParams().
		WithBand(15).
		WithGrid(160, 21).
		WithRegularization(10).
		WithStopping(1e-3, 100)

	profile := RampProfile{Background: 10, Foreground: 210, Width: 4}
	solver := NewSolver(basis, ctrl, img, profile, params)

	res, err := solver.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusConverged, res.Status, "solver did not converge in %d iterations", res.Iterations)

	got := fittedRadius(t, solver, res.U, center)
	assert.InDelta(t, trueRadius, got, 0.2, "recovered radius")
}

func TestSolverConcreteStepScenario(t *testing.T) {
	// 256x256 step edge, background 10 / foreground 210, radius error 5,
	// h=20, rho=10000, tol=5e-3, cap 100: must converge to the true edge
	// within half a pixel.
	center := geometry.NewPoint2D(128, 128)
	const trueRadius = 80.0
	img := renderDisk(256, center, trueRadius, 10, 210, 0)

	basis, ctrl, err := bspline.ClosedCircle(3, 16, center, trueRadius+5)
	require.NoError(t, err)

	params := DefaultParams().
		WithBand(20).
		WithGrid(200, 30).
		WithRegularization(1e4).
		WithStopping(5e-3, 100)

	profile := StepProfile{Background: 10, Foreground: 210}
	solver := NewSolver(basis, ctrl, img, profile, params)

	res, err := solver.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusConverged, res.Status, "solver did not converge in %d iterations", res.Iterations)

	got := fittedRadius(t, solver, res.U, center)
	assert.InDelta(t, trueRadius, got, 0.5, "recovered radius")
}

func TestSolverDeterministic(t *testing.T) {
	center := geometry.NewPoint2D(64, 64)
	img := renderDisk(128, center, 40, 20, 200, 3)

	run := func() *Result {
		basis, ctrl, err := bspline.ClosedCircle(3, 12, center, 43)
		require.NoError(t, err)
		params := DefaultParams().
			WithBand(10).
			WithGrid(80, 15).
			WithRegularization(100).
			WithStopping(1e-3, 40)
		s := NewSolver(basis, ctrl, img, RampProfile{Background: 20, Foreground: 200, Width: 3}, params)
		res, err := s.Run()
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Iterations, b.Iterations)
	assert.Equal(t, a.U, b.U, "identical inputs must produce identical displacements")
}

func TestSolverReportsMaxIterations(t *testing.T) {
	center := geometry.NewPoint2D(64, 64)
	img := renderDisk(128, center, 40, 20, 200, 3)

	basis, ctrl, err := bspline.ClosedCircle(3, 12, center, 44)
	require.NoError(t, err)

	// An unreachable tolerance with a tiny cap: the solver must stop
	// with a status, not an error, and still return its displacement.
	params := DefaultParams().
		WithBand(10).
		WithGrid(60, 11).
		WithRegularization(100).
		WithStopping(1e-15, 2)
	s := NewSolver(basis, ctrl, img, RampProfile{Background: 20, Foreground: 200, Width: 3}, params)

	res, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusMaxIterations, res.Status)
	assert.Equal(t, 2, res.Iterations)
	assert.Len(t, res.U, 2*basis.NumFunctions())
}
