package vic

import (
	"github.com/james-bowman/sparse"

	"vic-fitter/internal/bspline"
)

// sampleRow is one row of a linear operator on the stacked control space.
// Only the degree+1 basis functions alive on the sample's knot span carry
// coefficients: xv on control x-columns first..first+degree, yv on the
// matching y-columns.
type sampleRow struct {
	first  int
	xv, yv []float64
}

// dot applies the row to a stacked control-space vector of length 2*nbf.
func (r *sampleRow) dot(u []float64, nbf int) float64 {
	var s float64
	for k := range r.xv {
		s += r.xv[k]*u[r.first+k] + r.yv[k]*u[nbf+r.first+k]
	}
	return s
}

// Jacobian maps a control-point displacement to the displacement of every
// neighborhood sample. It is linearized about the reference configuration:
// J(xi, gamma) = N(xi) - gamma*(t/|t|)*Theta(xi)^T, where Theta is the
// small-rotation functional giving the normal-frame rotation angle
// Theta(xi)*U = (R*t)·(N'(xi)U) / |t|^2.
type Jacobian struct {
	// M is the assembled (2pq) x (2nbf) sparse matrix, sample x rows on
	// top of sample y rows, matching the stacked coordinate layout.
	M *sparse.CSR

	// XRows and YRows hold the same coefficients row by row for the
	// chain-rule gradient assembly.
	XRows, YRows []sampleRow

	nbf int
}

// AssembleJacobian builds the neighborhood Jacobian on the reference
// configuration, as coordinate triplets converted to compressed form.
func AssembleJacobian(basis *bspline.Basis, grid *Grid, f *Frame) *Jacobian {
	nbf := basis.NumFunctions()
	p, q := len(grid.Xi), len(grid.Gamma)
	n := p * q
	deg := basis.Degree()

	jac := &Jacobian{
		XRows: make([]sampleRow, n),
		YRows: make([]sampleRow, n),
		nbf:   nbf,
	}
	coo := sparse.NewCOO(2*n, 2*nbf, nil, nil, nil)

	thetaX := make([]float64, deg+1)
	thetaY := make([]float64, deg+1)
	for i, u := range grid.Xi {
		first, nvals := basis.Row(u, 0)
		_, dvals := basis.Row(u, 1)

		tx, ty, nrm := f.TX[i], f.TY[i], f.Speed[i]
		ux, uy := tx/nrm, ty/nrm
		// Theta coefficients: rotation angle sensitivity to x- and
		// y-block control displacements.
		for k := 0; k <= deg; k++ {
			thetaX[k] = -ty * dvals[k] / (nrm * nrm)
			thetaY[k] = tx * dvals[k] / (nrm * nrm)
		}

		for j, gamma := range grid.Gamma {
			s := i*q + j
			xr := sampleRow{first: first, xv: make([]float64, deg+1), yv: make([]float64, deg+1)}
			yr := sampleRow{first: first, xv: make([]float64, deg+1), yv: make([]float64, deg+1)}
			for k := 0; k <= deg; k++ {
				// Curve-point displacement plus the normal
				// rotation correction -gamma*theta*t/|t|.
				xr.xv[k] = nvals[k] - gamma*ux*thetaX[k]
				xr.yv[k] = -gamma * ux * thetaY[k]
				yr.xv[k] = -gamma * uy * thetaX[k]
				yr.yv[k] = nvals[k] - gamma*uy*thetaY[k]
			}
			jac.XRows[s] = xr
			jac.YRows[s] = yr

			for k := 0; k <= deg; k++ {
				c := first + k
				if xr.xv[k] != 0 {
					coo.Set(s, c, xr.xv[k])
				}
				if xr.yv[k] != 0 {
					coo.Set(s, nbf+c, xr.yv[k])
				}
				if yr.xv[k] != 0 {
					coo.Set(n+s, c, yr.xv[k])
				}
				if yr.yv[k] != 0 {
					coo.Set(n+s, nbf+c, yr.yv[k])
				}
			}
		}
	}

	jac.M = coo.ToCSR()
	return jac
}

// Mul applies the Jacobian to a control displacement, producing the
// stacked sample displacements.
func (j *Jacobian) Mul(u []float64) []float64 {
	rows, _ := j.M.Dims()
	out := make([]float64, rows)
	sparse.MulMatRawVec(j.M, u, out)
	return out
}
