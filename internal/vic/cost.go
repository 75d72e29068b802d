package vic

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// accumulate integrates the weighted mismatch over the sampling grid,
// producing the Gauss-Newton gradient g = sum w_i r_i grad_i, the Gauss
// approximation of the Hessian H = sum w_i grad_i^T grad_i (second-order
// residual curvature dropped, valid for small residuals), and the cost
// functional sum w_i r_i^2. Workers accumulate private partials which are
// reduced in a fixed order, keeping the result deterministic.
func accumulate(ev *Evaluation, w []float64, nbf, workers int) (g []float64, h *mat.SymDense, cost float64) {
	n := len(ev.R)
	dim := 2 * nbf

	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	type partial struct {
		g    []float64
		h    *mat.SymDense
		cost float64
	}
	parts := make([]partial, workers)

	var wg sync.WaitGroup
	for wk := 0; wk < workers; wk++ {
		lo := wk * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(wk, lo, hi int) {
			defer wg.Done()
			pg := make([]float64, dim)
			ph := mat.NewSymDense(dim, nil)

			var pcost float64
			cols := make([]int, 0, 8)
			vals := make([]float64, 0, 8)
			for s := lo; s < hi; s++ {
				row := &ev.Grad[s]
				cols = cols[:0]
				vals = vals[:0]
				for k := range row.xv {
					if row.xv[k] != 0 {
						cols = append(cols, row.first+k)
						vals = append(vals, row.xv[k])
					}
				}
				for k := range row.yv {
					if row.yv[k] != 0 {
						cols = append(cols, nbf+row.first+k)
						vals = append(vals, row.yv[k])
					}
				}

				ws, rs := w[s], ev.R[s]
				pcost += ws * rs * rs
				for a := range cols {
					pg[cols[a]] += ws * rs * vals[a]
					for b := a; b < len(cols); b++ {
						i, j := cols[a], cols[b]
						ph.SetSym(i, j, ph.At(i, j)+ws*vals[a]*vals[b])
					}
				}
			}
			parts[wk] = partial{g: pg, h: ph, cost: pcost}
		}(wk, lo, hi)
	}
	wg.Wait()

	g = make([]float64, dim)
	h = mat.NewSymDense(dim, nil)
	for _, p := range parts {
		if p.g == nil {
			continue
		}
		cost += p.cost
		for i := range g {
			g[i] += p.g[i]
		}
		h.AddSym(h, p.h)
	}
	return g, h, cost
}
