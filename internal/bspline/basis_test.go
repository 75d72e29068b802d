package bspline

import (
	"math"
	"testing"
)

func TestPartitionOfUnity(t *testing.T) {
	for _, degree := range []int{1, 2, 3, 4} {
		b, err := NewClamped(degree, degree+7)
		if err != nil {
			t.Fatalf("NewClamped(%d): %v", degree, err)
		}
		for _, u := range []float64{0, 0.01, 0.25, 0.3333, 0.5, 0.75, 0.999, 1} {
			_, vals := b.Row(u, 0)
			var sum float64
			for _, v := range vals {
				sum += v
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("degree %d: basis sum at u=%g is %g, want 1", degree, u, sum)
			}
		}
	}
}

func TestClampedEndpointInterpolation(t *testing.T) {
	b, err := NewClamped(3, 9)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := make([]float64, 18)
	for i := 0; i < 9; i++ {
		ctrl[i] = float64(i) * 1.5      // x
		ctrl[9+i] = 3 - float64(i)*0.25 // y
	}

	xs, ys, err := b.Evaluate(ctrl, []float64{0, 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(xs[0]-ctrl[0]) > 1e-12 || math.Abs(ys[0]-ctrl[9]) > 1e-12 {
		t.Errorf("curve start (%g, %g) != first control point (%g, %g)", xs[0], ys[0], ctrl[0], ctrl[9])
	}
	if math.Abs(xs[1]-ctrl[8]) > 1e-12 || math.Abs(ys[1]-ctrl[17]) > 1e-12 {
		t.Errorf("curve end (%g, %g) != last control point (%g, %g)", xs[1], ys[1], ctrl[8], ctrl[17])
	}
}

func TestDerivativesMatchFiniteDifferences(t *testing.T) {
	b, err := NewClamped(3, 10)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := make([]float64, 20)
	for i := 0; i < 10; i++ {
		ctrl[i] = math.Cos(float64(i))
		ctrl[10+i] = math.Sin(1.3 * float64(i))
	}

	const h = 1e-6
	for _, u := range []float64{0.11, 0.37, 0.52, 0.83} {
		for deriv := 1; deriv <= 2; deriv++ {
			lo, _, _ := b.Evaluate(ctrl, []float64{u - h}, deriv-1)
			hi, _, _ := b.Evaluate(ctrl, []float64{u + h}, deriv-1)
			want := (hi[0] - lo[0]) / (2 * h)

			got, _, _ := b.Evaluate(ctrl, []float64{u}, deriv)
			if math.Abs(got[0]-want) > 1e-4*(1+math.Abs(want)) {
				t.Errorf("deriv %d at u=%g: analytic %g, finite difference %g", deriv, u, got[0], want)
			}
		}
	}
}

func TestMatrixMatchesRows(t *testing.T) {
	b, err := NewClamped(2, 8)
	if err != nil {
		t.Fatal(err)
	}
	params := []float64{0, 0.2, 0.41, 0.77, 1}
	m := b.Matrix(params, 1)

	r, c := m.Dims()
	if r != len(params) || c != b.NumFunctions() {
		t.Fatalf("matrix is %dx%d, want %dx%d", r, c, len(params), b.NumFunctions())
	}
	for i, u := range params {
		first, vals := b.Row(u, 1)
		for k, v := range vals {
			if got := m.At(i, first+k); math.Abs(got-v) > 1e-14 {
				t.Errorf("entry (%d, %d): matrix %g, row %g", i, first+k, got, v)
			}
		}
	}
}

func TestGaussNodesIntegrateExactly(t *testing.T) {
	b, err := NewClamped(3, 12)
	if err != nil {
		t.Fatal(err)
	}
	nodes, weights := b.GaussNodes(2)

	// 2-point Gauss is exact for cubics on every span:
	// integral of u^3 over [0,1] is 1/4.
	var sum float64
	for i, u := range nodes {
		sum += weights[i] * u * u * u
	}
	if math.Abs(sum-0.25) > 1e-12 {
		t.Errorf("integral of u^3 = %g, want 0.25", sum)
	}
}

func TestUniformNodes(t *testing.T) {
	nodes, weights := UniformNodes(10)
	var sum float64
	for i, w := range weights {
		sum += w
		if nodes[i] <= 0 || nodes[i] >= 1 {
			t.Errorf("node %d = %g outside (0, 1)", i, nodes[i])
		}
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("uniform weights sum to %g, want 1", sum)
	}

	offs, ow := OffsetNodes(5, 20)
	if offs[2] != 0 {
		t.Errorf("middle offset node = %g, want 0", offs[2])
	}
	sum = 0
	for _, w := range ow {
		sum += w
	}
	if math.Abs(sum-40) > 1e-12 {
		t.Errorf("offset weights sum to %g, want 40", sum)
	}
}
