package vic

import (
	"errors"
	"sync"

	"vic-fitter/internal/interp"
)

// Evaluation holds the per-sample residuals and gradient rows of one
// displacement candidate.
type Evaluation struct {
	R    []float64   // gray-level mismatch per sample
	Grad []sampleRow // d r / d U per sample, via the chain rule
}

// evalResidual computes r = f(x0 + J*U) - g(gamma) and its gradient rows
// grad_r = grad f(x0 + J*U) * J. Per-sample work is split across worker
// goroutines; samples carry no cross dependency.
func evalResidual(img *interp.Raster, jac *Jacobian, grid *Grid, x0, u []float64,
	profile Profile, iteration, workers int) (*Evaluation, error) {

	n := grid.NumSamples()
	q := len(grid.Gamma)

	// Displaced sample positions under the candidate displacement.
	disp := jac.Mul(u)
	for i := range disp {
		disp[i] += x0[i]
	}
	xs, ys := disp[:n], disp[n:]

	ev := &Evaluation{
		R:    make([]float64, n),
		Grad: make([]sampleRow, n),
	}

	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()

			f, err := img.Intensity(xs[lo:hi], ys[lo:hi])
			if err != nil {
				errs[w] = wrapDomainError(err, iteration, lo)
				return
			}
			gx, gy, err := img.Gradient(xs[lo:hi], ys[lo:hi])
			if err != nil {
				errs[w] = wrapDomainError(err, iteration, lo)
				return
			}

			for s := lo; s < hi; s++ {
				ev.R[s] = f[s-lo] - profile.At(grid.Gamma[s%q])

				xr, yr := &jac.XRows[s], &jac.YRows[s]
				row := sampleRow{
					first: xr.first,
					xv:    make([]float64, len(xr.xv)),
					yv:    make([]float64, len(xr.yv)),
				}
				for k := range row.xv {
					row.xv[k] = gx[s-lo]*xr.xv[k] + gy[s-lo]*yr.xv[k]
					row.yv[k] = gx[s-lo]*xr.yv[k] + gy[s-lo]*yr.yv[k]
				}
				ev.Grad[s] = row
			}
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ev, nil
}

// wrapDomainError rebases a chunk-relative interpolation failure onto the
// global sample index and attaches the iteration.
func wrapDomainError(err error, iteration, offset int) error {
	var oob *interp.OutOfDomainError
	if errors.As(err, &oob) {
		return &OutOfDomainError{Iteration: iteration, Sample: offset + oob.Index, Err: oob}
	}
	return err
}
