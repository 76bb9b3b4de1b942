package sat

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioAgreesWithBruteForce(t *testing.T) {
	solver := NewPortfolioSolver(4, 42)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 100 {
		//** Arrange
		instance := generateSATInstance(rng, uint64(rng.IntN(10)+1), rng.IntN(40)+1)

		//** Act
		solution, err := solver.Solve(context.Background(), instance)

		//** Assert
		require.NoError(t, err)
		if bruteForceSatisfiable(instance) {
			require.NotNil(t, solution)
			assert.True(t, solution.Satisfies(instance))
		} else {
			assert.Nil(t, solution)
		}
	}
}

func TestPortfolioVerdictIsStable(t *testing.T) {
	instance := pigeonholeInstance(6, 5)

	for workers := 1; workers <= 8; workers *= 2 {
		solution, err := NewPortfolioSolver(workers, uint64(workers)).Solve(context.Background(), instance)
		assert.NoError(t, err)
		assert.Nil(t, solution)
	}
}

func TestPortfolioTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	solution, err := NewPortfolioSolver(3, 1).Solve(ctx, pigeonholeInstance(12, 11))

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, solution)
}
