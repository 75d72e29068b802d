package linsolve

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSolveSym(t *testing.T) {
	// A = L L^T for L = [[2,0],[1,3]]: positive definite by construction.
	a := mat.NewSymDense(2, []float64{4, 2, 2, 10})
	x, err := SolveSym(a, []float64{6, 14})
	if err != nil {
		t.Fatal(err)
	}

	// Check A*x = b.
	b0 := 4*x[0] + 2*x[1]
	b1 := 2*x[0] + 10*x[1]
	if math.Abs(b0-6) > 1e-12 || math.Abs(b1-14) > 1e-12 {
		t.Errorf("A*x = (%g, %g), want (6, 14)", b0, b1)
	}
}

func TestSolveSymSingular(t *testing.T) {
	// Rank-deficient: second row is twice the first.
	a := mat.NewSymDense(2, []float64{1, 2, 2, 4})
	_, err := SolveSym(a, []float64{1, 2})
	var sing *SingularError
	if !errors.As(err, &sing) {
		t.Fatalf("expected SingularError, got %v", err)
	}
}
