package vic

import (
	"math"

	"vic-fitter/internal/bspline"
)

// epsTangent is the tangent norm below which the parametrization counts as
// degenerate.
const epsTangent = 1e-10

// Frame holds the curve position, tangent, and normal fields evaluated at
// a set of parameter values on one configuration. The normal is the
// tangent rotated by 90 degrees and normalized: n = R*t/|t| with
// R = [[0,-1],[1,0]].
type Frame struct {
	X, Y   []float64 // curve positions
	TX, TY []float64 // tangent vectors, unnormalized
	NX, NY []float64 // unit normals
	Speed  []float64 // tangent norms |t|
}

// EvalFrame evaluates the position/tangent/normal frame of the curve
// defined by the stacked control vector at every parameter value. Returns
// a *DegenerateGeometryError if the tangent vanishes anywhere.
func EvalFrame(basis *bspline.Basis, ctrl, params []float64) (*Frame, error) {
	x, y, err := basis.Evaluate(ctrl, params, 0)
	if err != nil {
		return nil, err
	}
	tx, ty, err := basis.Evaluate(ctrl, params, 1)
	if err != nil {
		return nil, err
	}

	f := &Frame{
		X: x, Y: y, TX: tx, TY: ty,
		NX:    make([]float64, len(params)),
		NY:    make([]float64, len(params)),
		Speed: make([]float64, len(params)),
	}
	for i := range params {
		norm := math.Hypot(tx[i], ty[i])
		if norm <= epsTangent {
			return nil, &DegenerateGeometryError{Param: params[i], Index: i, Norm: norm}
		}
		f.Speed[i] = norm
		f.NX[i] = -ty[i] / norm
		f.NY[i] = tx[i] / norm
	}
	return f, nil
}
