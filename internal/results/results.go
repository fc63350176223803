// Package results carries the outcome of a service operation, separating
// expected domain failures from infrastructure errors.
package results

// OperationResult holds either a success value or a domain failure.
// Infrastructure errors are returned alongside it as a plain error.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a success value.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult wraps a domain failure.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

// IsSuccess reports whether the result carries a success value.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the result carries a domain failure.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}
