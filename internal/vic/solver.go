// Package vic implements Virtual Image Correlation: it registers a
// parametric B-spline curve against a raster image by minimizing the
// mismatch between gray levels sampled in a band around the curve and a
// prescribed virtual-image profile of the normal offset. The unknown is
// the displacement of the curve's control points, solved by a regularized
// Gauss-Newton iteration linearized about the reference configuration.
package vic

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"vic-fitter/internal/bspline"
	"vic-fitter/internal/interp"
	"vic-fitter/internal/linsolve"
	"vic-fitter/pkg/geometry"
)

// Status reports how a solve terminated.
type Status int

const (
	// StatusConverged means the relative step dropped below the
	// tolerance.
	StatusConverged Status = iota
	// StatusMaxIterations means the iteration cap was reached first. The
	// result still carries the best available displacement.
	StatusMaxIterations
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max iterations reached"
	default:
		return "unknown"
	}
}

// Result is the outcome of a solve.
type Result struct {
	U          []float64 // fitted control-point displacement
	Status     Status
	Iterations int
	RelStep    float64 // last relative step |dU|/|U|
	Cost       float64 // last weighted residual norm
}

// ProgressFunc observes the iteration, for logging.
type ProgressFunc func(iteration int, cost, relStep float64)

// Solver drives the correlation of one curve against one image. The
// reference configuration is immutable for the lifetime of the solver;
// every geometry-dependent quantity is recomputed from it explicitly.
type Solver struct {
	basis   *bspline.Basis
	ctrl    []float64 // reference configuration X, never mutated
	img     *interp.Raster
	profile Profile
	params  Params

	// Progress, when set, is called after every iteration.
	Progress ProgressFunc
}

// NewSolver creates a solver for the given curve, image, and virtual
// image profile.
func NewSolver(basis *bspline.Basis, ctrl []float64, img *interp.Raster, profile Profile, params Params) *Solver {
	ref := make([]float64, len(ctrl))
	copy(ref, ctrl)
	return &Solver{
		basis:   basis,
		ctrl:    ref,
		img:     img,
		profile: profile,
		params:  params,
	}
}

// Run executes the damped Gauss-Newton iteration until the relative step
// drops below the tolerance or the iteration cap is reached. Reaching the
// cap is not an error: the result carries the last displacement with
// StatusMaxIterations.
func (s *Solver) Run() (*Result, error) {
	nbf := s.basis.NumFunctions()
	dim := 2 * nbf
	workers := s.params.workers()

	// Static pieces: the (xi, gamma) grid and the stiffness operator are
	// built once and shared read-only across iterations.
	grid := NewGrid(s.params)
	stiff, err := AssembleStiffness(s.basis, s.ctrl, s.params.GaussPerSpan)
	if err != nil {
		return nil, err
	}

	u := make([]float64, dim)
	res := &Result{U: u, Status: StatusMaxIterations}

	for iter := 1; iter <= s.params.MaxIter; iter++ {
		res.Iterations = iter

		// Geometry and Jacobian are evaluated fresh on the reference
		// configuration X, not X+U: the linearization point stays
		// frozen at the reference for the whole solve.
		frame, err := EvalFrame(s.basis, s.ctrl, grid.Xi)
		if err != nil {
			return nil, err
		}
		jac := AssembleJacobian(s.basis, grid, frame)
		x0 := grid.Sample(frame)
		w := grid.Weights(frame)

		ev, err := evalResidual(s.img, jac, grid, x0, u, s.profile, iter, workers)
		if err != nil {
			return nil, err
		}
		g, h, cost := accumulate(ev, w, nbf, workers)
		res.Cost = cost

		// Normal equations: (H + rho*K) dU = -g - rho*K*U.
		a := mat.NewSymDense(dim, nil)
		a.CopySym(h)
		stiff.AddScaled(a, s.params.Rho)

		ku := stiff.MulVec(u)
		b := make([]float64, dim)
		for i := range b {
			b[i] = -g[i] - s.params.Rho*ku[i]
		}

		du, err := linsolve.SolveSym(a, b)
		if err != nil {
			return nil, &SingularSystemError{Iteration: iter, Err: err}
		}

		floats.Add(u, du)
		normU := floats.Norm(u, 2)
		normD := floats.Norm(du, 2)

		// The relative step is undefined while U is still zero; fall
		// back to an absolute floor on the increment itself.
		converged := false
		if normU > 0 {
			res.RelStep = normD / normU
			converged = res.RelStep < s.params.Tol
		} else {
			res.RelStep = normD
			converged = normD < s.params.AbsFloor
		}

		if s.Progress != nil {
			s.Progress(iter, cost, res.RelStep)
		}
		if converged {
			res.Status = StatusConverged
			return res, nil
		}
	}
	return res, nil
}

// FittedCurve evaluates the displaced configuration X+U at n uniformly
// spaced parameter values.
func (s *Solver) FittedCurve(u []float64, n int) ([]geometry.Point2D, error) {
	ctrl := make([]float64, len(s.ctrl))
	copy(ctrl, s.ctrl)
	floats.Add(ctrl, u)

	params, _ := bspline.UniformNodes(n)
	xs, ys, err := s.basis.Evaluate(ctrl, params, 0)
	if err != nil {
		return nil, err
	}
	pts := make([]geometry.Point2D, n)
	for i := range pts {
		pts[i] = geometry.Point2D{X: xs[i], Y: ys[i]}
	}
	return pts, nil
}
