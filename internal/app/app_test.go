package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushhhy/sim-game/internal/mapdef"
)

type lineLogger struct {
	lines []string
}

func (l *lineLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, format)
}

func TestHubConfigFromEnvDefaults(t *testing.T) {
	cfg, err := hubConfigFromEnv(&lineLogger{})
	require.NoError(t, err)
	assert.Nil(t, cfg.Map)
	assert.Equal(t, 15, cfg.TickRate)
	assert.Equal(t, 4, cfg.VillagerCount)
}

func TestHubConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("TICK_RATE", "30")
	t.Setenv("VILLAGER_COUNT", "9")
	t.Setenv("MAP_SEED", "hamlet")
	t.Setenv("NATURE_DENSITY", "0.25")

	cfg, err := hubConfigFromEnv(&lineLogger{})
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, 9, cfg.VillagerCount)
	assert.Equal(t, "hamlet", cfg.Seed)
	assert.InDelta(t, 0.25, cfg.NatureDensity, 1e-9)
}

func TestHubConfigFromEnvLogsInvalidValues(t *testing.T) {
	t.Setenv("TICK_RATE", "fast")
	logger := &lineLogger{}

	cfg, err := hubConfigFromEnv(logger)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.TickRate)
	require.Len(t, logger.lines, 1)
}

func TestHubConfigFromEnvLoadsMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	data, err := json.Marshal(mapdef.Village())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("MAP_FILE", path)

	cfg, err := hubConfigFromEnv(&lineLogger{})
	require.NoError(t, err)
	require.NotNil(t, cfg.Map)
	assert.Equal(t, mapdef.Village().Name, cfg.Map.Name)

	t.Setenv("MAP_FILE", filepath.Join(t.TempDir(), "missing.json"))
	_, err = hubConfigFromEnv(&lineLogger{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
