package vic

import (
	"fmt"

	"vic-fitter/internal/interp"
)

// DegenerateGeometryError reports a vanishing tangent at a sampled
// parameter. The reference configuration itself is invalid, so the solve
// aborts without retrying.
type DegenerateGeometryError struct {
	Param float64 // curve parameter where the tangent vanished
	Index int     // index of the parameter in the evaluation batch
	Norm  float64
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate curve: tangent norm %.3g at parameter %.6f (node %d)",
		e.Norm, e.Param, e.Index)
}

// OutOfDomainError reports a displaced sample that left the image's valid
// interpolation domain, which typically indicates a diverging iterate.
type OutOfDomainError struct {
	Iteration int
	Sample    int
	Err       *interp.OutOfDomainError
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("iteration %d: sample %d left the image domain: %v",
		e.Iteration, e.Sample, e.Err)
}

func (e *OutOfDomainError) Unwrap() error { return e.Err }

// SingularSystemError reports that the regularized normal-equations matrix
// could not be factorized. The caller may increase the regularization
// weight and retry; the solver does not retry on its own.
type SingularSystemError struct {
	Iteration int
	Err       error
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("iteration %d: normal equations not solvable: %v", e.Iteration, e.Err)
}

func (e *SingularSystemError) Unwrap() error { return e.Err }
