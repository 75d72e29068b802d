package interp

import (
	"fmt"
	"math"
)

// OutOfDomainError reports a query point outside the valid interpolation
// domain. It is surfaced rather than clamped because during a correlation
// solve it typically indicates a diverging iterate.
type OutOfDomainError struct {
	Index int // index of the offending point in the query batch
	X, Y  float64
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("point %d at (%.3f, %.3f) outside interpolation domain", e.Index, e.X, e.Y)
}

// cubicKernel is the Catmull-Rom interpolation kernel (Keys, a = -0.5).
func cubicKernel(s float64) float64 {
	s = math.Abs(s)
	switch {
	case s < 1:
		return ((1.5*s-2.5)*s)*s + 1
	case s < 2:
		return ((-0.5*s+2.5)*s-4)*s + 2
	default:
		return 0
	}
}

// cubicKernelDeriv is the derivative of cubicKernel, odd in s.
func cubicKernelDeriv(s float64) float64 {
	a := math.Abs(s)
	var d float64
	switch {
	case a < 1:
		d = (4.5*a - 5) * a
	case a < 2:
		d = (-1.5*a+5)*a - 4
	default:
		return 0
	}
	if s < 0 {
		return -d
	}
	return d
}

// inDomain reports whether (x, y) lies inside [0, w] x [0, h].
func (r *Raster) inDomain(x, y float64) bool {
	return x >= 0 && x <= float64(r.width) && y >= 0 && y <= float64(r.height)
}

// eval computes the interpolated intensity and, when withGrad is set, its
// analytic spatial gradient at a single in-domain point.
func (r *Raster) eval(x, y float64, withGrad bool) (f, fx, fy float64) {
	// Shift to pixel-center coordinates.
	px, py := x-0.5, y-0.5
	ix := int(math.Floor(px))
	iy := int(math.Floor(py))
	dx := px - float64(ix)
	dy := py - float64(iy)

	for n := -1; n <= 2; n++ {
		wy := cubicKernel(dy - float64(n))
		var wyd float64
		if withGrad {
			wyd = cubicKernelDeriv(dy - float64(n))
		}
		for m := -1; m <= 2; m++ {
			p := r.at(ix+m, iy+n)
			wx := cubicKernel(dx - float64(m))
			f += p * wx * wy
			if withGrad {
				fx += p * cubicKernelDeriv(dx-float64(m)) * wy
				fy += p * wx * wyd
			}
		}
	}
	return f, fx, fy
}

// Intensity evaluates the sub-pixel image intensity at each (x, y) query
// point. Returns an OutOfDomainError for the first point outside the
// domain.
func (r *Raster) Intensity(xs, ys []float64) ([]float64, error) {
	out := make([]float64, len(xs))
	for i := range xs {
		if !r.inDomain(xs[i], ys[i]) {
			return nil, &OutOfDomainError{Index: i, X: xs[i], Y: ys[i]}
		}
		out[i], _, _ = r.eval(xs[i], ys[i], false)
	}
	return out, nil
}

// Gradient evaluates the analytic intensity gradient at each query point.
func (r *Raster) Gradient(xs, ys []float64) (gx, gy []float64, err error) {
	gx = make([]float64, len(xs))
	gy = make([]float64, len(xs))
	for i := range xs {
		if !r.inDomain(xs[i], ys[i]) {
			return nil, nil, &OutOfDomainError{Index: i, X: xs[i], Y: ys[i]}
		}
		_, gx[i], gy[i] = r.eval(xs[i], ys[i], true)
	}
	return gx, gy, nil
}
