// Package linsolve wraps the direct factorization used to invert the
// regularized normal-equations system.
package linsolve

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SingularError reports a system whose matrix could not be factorized.
type SingularError struct {
	Cond float64 // reciprocal condition estimate when available, else 0
}

func (e *SingularError) Error() string {
	if e.Cond > 0 {
		return fmt.Sprintf("singular or ill-conditioned system (condition number %.3g)", e.Cond)
	}
	return "singular or ill-conditioned system"
}

// SolveSym solves A*x = b for a symmetric positive-definite A via Cholesky
// factorization. A failed factorization is reported as a *SingularError;
// it is never silently ignored.
func SolveSym(a *mat.SymDense, b []float64) ([]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, &SingularError{}
	}

	n, _ := a.Dims()
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(n, b)); err != nil {
		return nil, &SingularError{Cond: chol.Cond()}
	}
	return x.RawVector().Data, nil
}
