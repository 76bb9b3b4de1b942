package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "file", cfg.Dataset.Source)
	assert.Equal(t, "data.json", cfg.Dataset.Path)
	assert.Equal(t, "portfolio", cfg.Solver.Name)
	assert.Equal(t, 8, cfg.Solver.Workers)
	assert.Equal(t, "pure", cfg.Scheduler.Strategy)
	assert.Equal(t, 30, cfg.Scheduler.TimeLimitSeconds)
	assert.Equal(t, "queue", cfg.Scheduler.ConcurrencyPolicy)
	assert.Equal(t, "first", cfg.Scheduler.FacultyPolicy)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, "memory", cfg.Store)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TIME_LIMIT_SECONDS", "5")
	t.Setenv("STRATEGY", "Postponed")
	t.Setenv("CONCURRENCY_POLICY", "reject")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Scheduler.TimeLimitSeconds)
	assert.Equal(t, "postponed", cfg.Scheduler.Strategy)
	assert.Equal(t, "reject", cfg.Scheduler.ConcurrencyPolicy)
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// Registered empty so the variables godotenv exports are restored after the test
	t.Setenv("EXPORT_DIR", "")
	t.Setenv("SOLVER_WORKERS", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EXPORT_DIR=out\nSOLVER_WORKERS=2\n"), 0o600))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Export.Dir)
	assert.Equal(t, 2, cfg.Solver.Workers)
}
