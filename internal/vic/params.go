package vic

import "runtime"

// Params holds the configuration constants of a correlation solve.
type Params struct {
	HalfWidth float64 // half-width h of the normal search band, in pixels
	NumParam  int     // samples along the curve parameter
	NumOffset int     // samples across the normal band

	Rho     float64 // regularization weight
	Tol     float64 // relative-step convergence tolerance
	MaxIter int     // iteration cap

	// AbsFloor is the absolute step norm below which the solve counts as
	// converged while the accumulated displacement is still zero, where
	// the relative step is undefined.
	AbsFloor float64

	// GaussPerSpan is the Gauss point count per knot span for the
	// stiffness quadrature. Zero selects degree+1.
	GaussPerSpan int

	// Workers bounds the goroutines used for per-sample evaluation.
	// Zero selects the CPU count.
	Workers int
}

// DefaultParams returns solve parameters suitable for contours with a
// gray-level transition a few pixels wide.
func DefaultParams() Params {
	return Params{
		HalfWidth: 20,
		NumParam:  200,
		NumOffset: 30,
		Rho:       1e4,
		Tol:       5e-3,
		MaxIter:   100,
		AbsFloor:  1e-9,
		Workers:   runtime.NumCPU(),
	}
}

// WithBand returns a copy of params with the normal band half-width set.
func (p Params) WithBand(h float64) Params {
	p.HalfWidth = h
	return p
}

// WithGrid returns a copy of params with the sampling grid sizes set.
func (p Params) WithGrid(numParam, numOffset int) Params {
	p.NumParam = numParam
	p.NumOffset = numOffset
	return p
}

// WithRegularization returns a copy of params with the regularization
// weight set.
func (p Params) WithRegularization(rho float64) Params {
	p.Rho = rho
	return p
}

// WithStopping returns a copy of params with the convergence tolerance and
// iteration cap set.
func (p Params) WithStopping(tol float64, maxIter int) Params {
	p.Tol = tol
	p.MaxIter = maxIter
	return p
}

// workers returns the effective worker count.
func (p Params) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.NumCPU()
}
