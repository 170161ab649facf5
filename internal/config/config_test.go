package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PREVENTSIM_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 10000, cfg.MCIterations)
	assert.Equal(t, uint64(42), cfg.MCSeed)
	assert.Equal(t, 0, cfg.MCWorkers)
	assert.Equal(t, "0 3 * * *", cfg.SnapshotSchedule)
	assert.Equal(t, 200, cfg.RunHistoryKeep)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PREVENTSIM_DATA_DIR", t.TempDir())
	t.Setenv("PREVENTSIM_PORT", "9090")
	t.Setenv("MC_ITERATIONS", "500")
	t.Setenv("MC_SEED", "7")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("SNAPSHOT_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 500, cfg.MCIterations)
	assert.Equal(t, uint64(7), cfg.MCSeed)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "", cfg.SnapshotSchedule, "an explicitly empty schedule disables the snapshot job")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("PREVENTSIM_DATA_DIR", t.TempDir())
	t.Setenv("MC_ITERATIONS", "-1")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MC_ITERATIONS", "100")
	t.Setenv("PREVENTSIM_PORT", "99999")

	_, err = Load()
	assert.Error(t, err)
}

func TestGetEnvAsInt_IgnoresGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 5, getEnvAsInt("SOME_INT", 5))

	t.Setenv("SOME_INT", "12")
	assert.Equal(t, 12, getEnvAsInt("SOME_INT", 5))
}
