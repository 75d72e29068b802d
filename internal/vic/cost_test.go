package vic

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// randomEvaluation builds a synthetic evaluation with known dense
// equivalents for checking the accumulator.
func randomEvaluation(rng *rand.Rand, n, nbf, span int) (*Evaluation, []float64) {
	ev := &Evaluation{
		R:    make([]float64, n),
		Grad: make([]sampleRow, n),
	}
	w := make([]float64, n)
	for s := 0; s < n; s++ {
		ev.R[s] = rng.NormFloat64()
		w[s] = 0.1 + rng.Float64()
		first := rng.Intn(nbf - span + 1)
		row := sampleRow{first: first, xv: make([]float64, span), yv: make([]float64, span)}
		for k := 0; k < span; k++ {
			row.xv[k] = rng.NormFloat64()
			row.yv[k] = rng.NormFloat64()
		}
		ev.Grad[s] = row
	}
	return ev, w
}

// denseRow expands a sparse gradient row to a dense vector.
func denseRow(r sampleRow, nbf int) []float64 {
	d := make([]float64, 2*nbf)
	for k := range r.xv {
		d[r.first+k] = r.xv[k]
		d[nbf+r.first+k] = r.yv[k]
	}
	return d
}

func TestAccumulateMatchesDenseSums(t *testing.T) {
	const (
		n    = 57
		nbf  = 9
		span = 4
	)
	rng := rand.New(rand.NewSource(11))
	ev, w := randomEvaluation(rng, n, nbf, span)

	g, h, cost := accumulate(ev, w, nbf, 4)

	// Reference: dense Gauss-Newton sums.
	wantG := make([]float64, 2*nbf)
	wantH := mat.NewSymDense(2*nbf, nil)
	var wantCost float64
	for s := 0; s < n; s++ {
		d := denseRow(ev.Grad[s], nbf)
		wantCost += w[s] * ev.R[s] * ev.R[s]
		for i := range d {
			wantG[i] += w[s] * ev.R[s] * d[i]
			for j := i; j < len(d); j++ {
				wantH.SetSym(i, j, wantH.At(i, j)+w[s]*d[i]*d[j])
			}
		}
	}

	if math.Abs(cost-wantCost) > 1e-10*(1+math.Abs(wantCost)) {
		t.Errorf("cost %g, want %g", cost, wantCost)
	}
	for i := range wantG {
		if math.Abs(g[i]-wantG[i]) > 1e-10 {
			t.Errorf("gradient[%d] = %g, want %g", i, g[i], wantG[i])
		}
		for j := i; j < len(wantG); j++ {
			if math.Abs(h.At(i, j)-wantH.At(i, j)) > 1e-10 {
				t.Errorf("hessian(%d,%d) = %g, want %g", i, j, h.At(i, j), wantH.At(i, j))
			}
		}
	}
}

func TestAccumulateWorkerCountInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	ev, w := randomEvaluation(rng, 101, 12, 4)

	g1, h1, c1 := accumulate(ev, w, 12, 1)
	g8, h8, c8 := accumulate(ev, w, 12, 8)

	if math.Abs(c1-c8) > 1e-12*(1+math.Abs(c1)) {
		t.Errorf("cost differs across worker counts: %g vs %g", c1, c8)
	}
	for i := range g1 {
		if math.Abs(g1[i]-g8[i]) > 1e-12 {
			t.Errorf("gradient[%d] differs across worker counts: %g vs %g", i, g1[i], g8[i])
		}
	}
	r, _ := h1.Dims()
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			if math.Abs(h1.At(i, j)-h8.At(i, j)) > 1e-12 {
				t.Errorf("hessian(%d,%d) differs across worker counts", i, j)
			}
		}
	}
}
