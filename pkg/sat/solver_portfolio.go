package sat

import (
	"context"
	"errors"
)

type portfolioSolver struct {
	workers int
	seed    uint64
}

// NewPortfolioSolver runs several differently seeded CDCL searches concurrently and keeps the first verdict.
// Every worker is sound, so the verdict does not depend on which one finishes first
func NewPortfolioSolver(workers int, seed uint64) SATSolver {
	if workers < 1 {
		workers = 1
	}
	return &portfolioSolver{
		workers: workers,
		seed:    seed,
	}
}

type portfolioResult struct {
	solution SATSolution
	err      error
}

func (solver *portfolioSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultsChannel := make(chan portfolioResult, solver.workers) // Buffered so losing workers never block

	for worker := range solver.workers {
		options := DefaultCDCLOptions()
		if worker > 0 {
			// Worker 0 keeps the deterministic configuration, the rest diversify
			options.Seed = solver.seed + uint64(worker)
			options.RandomFrequency = 0.02
			options.RestartBase = 50 + 25*(worker%4)
		}

		go func(options CDCLOptions) {
			solution, err := NewCDCLSolver(options).Solve(ctx, instance)
			resultsChannel <- portfolioResult{solution, err}
		}(options)
	}

	var lastErr error
	for range solver.workers {
		result := <-resultsChannel
		if result.err == nil {
			return result.solution, nil // A model or a proof of unsatisfiability
		} else if !errors.Is(result.err, ErrTimeout) || lastErr == nil {
			lastErr = result.err
		}
	}
	return nil, lastErr
}
