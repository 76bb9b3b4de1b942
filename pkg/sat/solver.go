package sat

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout is returned when a solver runs out of time before reaching a verdict
var ErrTimeout = errors.New("sat: time limit reached without a verdict")

type SATSolver interface {
	// Returns a solution of the SAT instance if satisfiable, else returns nil (these are valid outputs where error shall be nil).
	// If the context expires before a verdict is reached, the returned error wraps ErrTimeout
	Solve(ctx context.Context, instance SAT) (SATSolution, error)
}

func timeoutError(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, cause)
	}
	return ErrTimeout
}

// CheckDeadline returns an error wrapping ErrTimeout once ctx is done, nil otherwise
func CheckDeadline(ctx context.Context) error {
	if ctx.Err() != nil {
		return timeoutError(ctx)
	}
	return nil
}
