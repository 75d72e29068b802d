package vic

import (
	"vic-fitter/internal/bspline"
)

// Grid is the static (xi, gamma) sampling grid of the normal neighborhood.
// It is built once per solve; only the geometry evaluated on it changes
// between iterations. Samples are ordered with gamma varying fastest
// within each xi, and stacked coordinate vectors hold all x coordinates
// followed by all y coordinates.
type Grid struct {
	Xi     []float64 // curve-parameter nodes, length p
	Gamma  []float64 // normal-offset nodes in [-h, h], length q
	WXi    []float64 // parameter-space integration weights
	WGamma []float64 // offset-space integration weights
}

// NewGrid builds the correlation sampling grid: uniform midpoint nodes
// along the parameter interval and across the normal band.
func NewGrid(p Params) *Grid {
	xi, wxi := bspline.UniformNodes(p.NumParam)
	gamma, wgamma := bspline.OffsetNodes(p.NumOffset, p.HalfWidth)
	return &Grid{Xi: xi, Gamma: gamma, WXi: wxi, WGamma: wgamma}
}

// NumSamples returns the total sample count p*q.
func (g *Grid) NumSamples() int { return len(g.Xi) * len(g.Gamma) }

// Sample maps every (xi, gamma) pair to its physical location on the
// configuration described by the frame: position(xi) + gamma*normal(xi).
// The result is a stacked vector of length 2*p*q.
func (g *Grid) Sample(f *Frame) []float64 {
	p, q := len(g.Xi), len(g.Gamma)
	n := p * q
	out := make([]float64, 2*n)
	for i := 0; i < p; i++ {
		for j := 0; j < q; j++ {
			s := i*q + j
			out[s] = f.X[i] + g.Gamma[j]*f.NX[i]
			out[n+s] = f.Y[i] + g.Gamma[j]*f.NY[i]
		}
	}
	return out
}

// Weights returns the per-sample quadrature weights: the parameter weight
// scaled by the local curve speed and the fixed offset weight.
func (g *Grid) Weights(f *Frame) []float64 {
	p, q := len(g.Xi), len(g.Gamma)
	w := make([]float64, p*q)
	for i := 0; i < p; i++ {
		wi := g.WXi[i] / f.Speed[i]
		for j := 0; j < q; j++ {
			w[i*q+j] = wi * g.WGamma[j]
		}
	}
	return w
}
