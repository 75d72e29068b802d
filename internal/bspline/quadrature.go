package bspline

import (
	"gonum.org/v1/gonum/integrate/quad"
)

// UniformNodes returns n midpoint-rule nodes on [0, 1] with equal weights
// summing to 1. This is the Riemann scheme used for the correlation grid.
func UniformNodes(n int) (nodes, weights []float64) {
	nodes = make([]float64, n)
	weights = make([]float64, n)
	w := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		nodes[i] = (float64(i) + 0.5) * w
		weights[i] = w
	}
	return nodes, weights
}

// OffsetNodes returns n midpoint-rule nodes spanning [-h, h] with equal
// weights summing to 2h.
func OffsetNodes(n int, h float64) (nodes, weights []float64) {
	nodes = make([]float64, n)
	weights = make([]float64, n)
	w := 2 * h / float64(n)
	for i := 0; i < n; i++ {
		nodes[i] = -h + (float64(i)+0.5)*w
		weights[i] = w
	}
	return nodes, weights
}

// GaussNodes returns Gauss–Legendre nodes and weights with perSpan points
// on each non-empty knot span. The scheme integrates piecewise polynomials
// of degree up to 2*perSpan-1 exactly, which is the scheme used for the
// stiffness assembly.
func (b *Basis) GaussNodes(perSpan int) (nodes, weights []float64) {
	bps := b.Spans()
	x := make([]float64, perSpan)
	w := make([]float64, perSpan)
	var rule quad.Legendre
	for i := 0; i+1 < len(bps); i++ {
		rule.FixedLocations(x, w, bps[i], bps[i+1])
		nodes = append(nodes, x...)
		weights = append(weights, w...)
	}
	return nodes, weights
}
