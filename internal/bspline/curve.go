package bspline

import (
	"fmt"

	"vic-fitter/pkg/geometry"
)

// Evaluate maps a stacked control vector (all x coordinates followed by all
// y coordinates) to curve positions (deriv 0) or parametric derivatives
// (deriv 1 or 2) at the given parameter values.
func (b *Basis) Evaluate(ctrl, params []float64, deriv int) (xs, ys []float64, err error) {
	nbf := b.NumFunctions()
	if len(ctrl) != 2*nbf {
		return nil, nil, fmt.Errorf("control vector length %d, want %d", len(ctrl), 2*nbf)
	}
	cx, cy := ctrl[:nbf], ctrl[nbf:]

	xs = make([]float64, len(params))
	ys = make([]float64, len(params))
	for i, u := range params {
		first, vals := b.Row(u, deriv)
		var sx, sy float64
		for k, v := range vals {
			sx += v * cx[first+k]
			sy += v * cy[first+k]
		}
		xs[i] = sx
		ys[i] = sy
	}
	return xs, ys, nil
}

// ControlPoints unstacks a control vector into points.
func (b *Basis) ControlPoints(ctrl []float64) []geometry.Point2D {
	nbf := b.NumFunctions()
	pts := make([]geometry.Point2D, nbf)
	for i := range pts {
		pts[i] = geometry.Point2D{X: ctrl[i], Y: ctrl[nbf+i]}
	}
	return pts
}

// StackPoints stacks points into a control vector (all x, then all y).
func StackPoints(pts []geometry.Point2D) []float64 {
	n := len(pts)
	ctrl := make([]float64, 2*n)
	for i, p := range pts {
		ctrl[i] = p.X
		ctrl[n+i] = p.Y
	}
	return ctrl
}

// ClosedCircle builds a clamped basis and a stacked control vector tracing
// a closed circle: numCtrl-1 distinct control points evenly spaced on the
// circle, with the last control point repeated onto the first so the curve
// closes. The curve is C0 at the seam, which is sufficient for correlation
// since the sampling grid never straddles it.
func ClosedCircle(degree, numCtrl int, center geometry.Point2D, radius float64) (*Basis, []float64, error) {
	if numCtrl < degree+2 {
		return nil, nil, fmt.Errorf("need at least %d control points, got %d", degree+2, numCtrl)
	}
	basis, err := NewClamped(degree, numCtrl)
	if err != nil {
		return nil, nil, err
	}

	pts := geometry.GenerateCirclePoints(center.X, center.Y, radius, numCtrl-1)
	pts = append(pts, pts[0])
	return basis, StackPoints(pts), nil
}
