package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

func TestNewSolver(t *testing.T) {
	for _, name := range []string{"cdcl", "portfolio", "kissat", "cadical"} {
		solver, err := NewSolver(name, 2, 1, filepath.Join(t.TempDir(), "absent.json"))
		require.NoError(t, err, name)
		assert.NotNil(t, solver, name)
	}

	_, err := NewSolver("portfolio", 0, 1, "")
	assert.Error(t, err)

	_, err = NewSolver("lingeling", 1, 1, "")
	assert.Error(t, err)

	malformed := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{"), 0o644))
	_, err = NewSolver("kissat", 1, 1, malformed)
	assert.Error(t, err)
}

func TestNewTimetabler(t *testing.T) {
	solver, err := NewSolver("cdcl", 1, 0, "")
	require.NoError(t, err)

	pure, err := NewTimetabler("pure", solver)
	require.NoError(t, err)
	assert.IsType(t, model.NewEmbeddedRoomTimetabler(solver), pure)

	postponed, err := NewTimetabler("postponed", solver)
	require.NoError(t, err)
	assert.IsType(t, model.NewIsolatedRoomTimetabler(solver), postponed)

	_, err = NewTimetabler("hybrid", solver)
	assert.Error(t, err)
}
