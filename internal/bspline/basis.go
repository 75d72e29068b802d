// Package bspline evaluates clamped B-spline bases and planar B-spline
// curves. It provides the basis and derivative matrices, quadrature node
// generation, and curve evaluation used by the correlation engine.
package bspline

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// Basis is a clamped (open-uniform) B-spline basis on the parameter
// interval [0, 1].
type Basis struct {
	degree int
	knots  []float64
}

// NewClamped creates a clamped B-spline basis of the given degree with
// numCtrl basis functions. The interior knots are uniformly spaced.
func NewClamped(degree, numCtrl int) (*Basis, error) {
	if degree < 1 {
		return nil, fmt.Errorf("degree must be >= 1, got %d", degree)
	}
	if numCtrl < degree+1 {
		return nil, fmt.Errorf("need at least %d control points for degree %d, got %d",
			degree+1, degree, numCtrl)
	}

	// Open-uniform knot vector: degree+1 repeated knots at each end,
	// uniform interior knots in between.
	numKnots := numCtrl + degree + 1
	numSpans := numCtrl - degree
	knots := make([]float64, numKnots)
	for i := 0; i <= degree; i++ {
		knots[i] = 0
		knots[numKnots-1-i] = 1
	}
	for i := 1; i < numSpans; i++ {
		knots[degree+i] = float64(i) / float64(numSpans)
	}

	return &Basis{degree: degree, knots: knots}, nil
}

// Degree returns the polynomial degree of the basis.
func (b *Basis) Degree() int { return b.degree }

// NumFunctions returns the number of basis functions (= control points).
func (b *Basis) NumFunctions() int { return len(b.knots) - b.degree - 1 }

// Spans returns the breakpoints of the non-empty knot spans, in order,
// including both interval endpoints.
func (b *Basis) Spans() []float64 {
	var bps []float64
	for i := b.degree; i <= b.NumFunctions(); i++ {
		if len(bps) == 0 || b.knots[i] > bps[len(bps)-1] {
			bps = append(bps, b.knots[i])
		}
	}
	return bps
}

// span locates the knot span index containing u, i.e. the largest i with
// knots[i] <= u < knots[i+1]. u at the right end of the interval maps to
// the last non-empty span.
func (b *Basis) span(u float64) int {
	n := b.NumFunctions() - 1
	if u >= b.knots[n+1] {
		return n
	}
	if u <= b.knots[b.degree] {
		return b.degree
	}
	lo, hi := b.degree, n+1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if u < b.knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// basisFuns computes the degree+1 non-vanishing basis functions at u for
// the given knot span (algorithm A2.2 of Piegl & Tiller).
func (b *Basis) basisFuns(span int, u float64) []float64 {
	p := b.degree
	vals := make([]float64, p+1)
	left := make([]float64, p+1)
	right := make([]float64, p+1)

	vals[0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - b.knots[span+1-j]
		right[j] = b.knots[span+j] - u
		var saved float64
		for r := 0; r < j; r++ {
			temp := vals[r] / (right[r+1] + left[j-r])
			vals[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		vals[j] = saved
	}
	return vals
}

// dersBasisFuns computes the non-vanishing basis functions and their
// derivatives up to order n at u (algorithm A2.3 of Piegl & Tiller).
// The result has n+1 rows; row k holds the kth derivative of the degree+1
// functions that are non-zero on the span.
func (b *Basis) dersBasisFuns(span int, u float64, n int) [][]float64 {
	p := b.degree
	if n > p {
		n = p
	}

	ndu := make([][]float64, p+1)
	for i := range ndu {
		ndu[i] = make([]float64, p+1)
	}
	left := make([]float64, p+1)
	right := make([]float64, p+1)

	ndu[0][0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - b.knots[span+1-j]
		right[j] = b.knots[span+j] - u
		var saved float64
		for r := 0; r < j; r++ {
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}

	ders := make([][]float64, n+1)
	for i := range ders {
		ders[i] = make([]float64, p+1)
	}
	for j := 0; j <= p; j++ {
		ders[0][j] = ndu[j][p]
	}

	a := [2][]float64{make([]float64, p+1), make([]float64, p+1)}
	for r := 0; r <= p; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1
		for k := 1; k <= n; k++ {
			var d float64
			rk, pk := r-k, p-k
			if r >= k {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}
			j1 := 1
			if rk < -1 {
				j1 = -rk
			}
			j2 := k - 1
			if r-1 > pk {
				j2 = p - r
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][k] = -a[s1][k-1] / ndu[pk+1][r]
				d += a[s2][k] * ndu[r][pk]
			}
			ders[k][r] = d
			s1, s2 = s2, s1
		}
	}

	// Multiply through by the degree factors.
	f := float64(p)
	for k := 1; k <= n; k++ {
		for j := 0; j <= p; j++ {
			ders[k][j] *= f
		}
		f *= float64(p - k)
	}
	return ders
}

// Row evaluates the derivative-order deriv basis row at u, returning the
// column index of the first non-zero function and the degree+1 values.
func (b *Basis) Row(u float64, deriv int) (first int, vals []float64) {
	span := b.span(u)
	first = span - b.degree
	if deriv == 0 {
		return first, b.basisFuns(span, u)
	}
	if deriv > b.degree {
		// Derivatives beyond the degree vanish identically.
		return first, make([]float64, b.degree+1)
	}
	ders := b.dersBasisFuns(span, u, deriv)
	return first, ders[deriv]
}

// Matrix assembles the sparse basis (or derivative) matrix for a list of
// parameter values: entry (i, j) is the deriv-th derivative of basis
// function j at params[i]. Assembled as triplets, returned in CSR form.
func (b *Basis) Matrix(params []float64, deriv int) *sparse.CSR {
	coo := sparse.NewCOO(len(params), b.NumFunctions(), nil, nil, nil)
	for i, u := range params {
		first, vals := b.Row(u, deriv)
		for k, v := range vals {
			if v != 0 {
				coo.Set(i, first+k, v)
			}
		}
	}
	return coo.ToCSR()
}
