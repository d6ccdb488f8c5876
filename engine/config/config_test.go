package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Pipeline.MaxUpdatesPerTick)
	assert.Equal(t, 8*time.Millisecond, cfg.Pipeline.MaxTimeBudget())
	assert.Equal(t, 1, cfg.Pipeline.MinFramesBetweenRegeneration)
	assert.Equal(t, 10000, cfg.Pipeline.PoolCapacity)
	assert.GreaterOrEqual(t, cfg.Pipeline.Workers, 1)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morph.toml")
	writeFile(t, path, `
[pipeline]
max_updates_per_tick = 2
max_time_budget_ms = 1.5
pool_capacity = 16

[logging]
level = "debug"
format = "JSON"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Pipeline.MaxUpdatesPerTick)
	assert.Equal(t, 1500*time.Microsecond, cfg.Pipeline.MaxTimeBudget())
	assert.Equal(t, 16, cfg.Pipeline.PoolCapacity)
	assert.Equal(t, 1, cfg.Pipeline.MinFramesBetweenRegeneration, "unset keys keep their default")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "[pipeline\n")
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestNormalizeClampsSoftKnobs(t *testing.T) {
	cfg, err := Parse([]byte(`
[pipeline]
max_updates_per_tick = 0
max_time_budget_ms = -3
min_frames_between_regeneration = -1
workers = 0
batch_size = 0
`), "inline")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Pipeline.MaxUpdatesPerTick)
	assert.Equal(t, time.Duration(0), cfg.Pipeline.MaxTimeBudget())
	assert.Equal(t, 1, cfg.Pipeline.MinFramesBetweenRegeneration)
	assert.GreaterOrEqual(t, cfg.Pipeline.Workers, 1)
	assert.Equal(t, 64, cfg.Pipeline.BatchSize)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"zero capacity", "[pipeline]\npool_capacity = 0\n"},
		{"negative capacity", "[pipeline]\npool_capacity = -4\n"},
		{"negative aging", "[pipeline]\npriority_aging_weight = -1.0\n"},
		{"unknown renderer", "[engine]\nrenderer = \"vulkan\"\n"},
		{"unknown log format", "[logging]\nformat = \"xml\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml), tt.name)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OXY_MORPH_MAX_UPDATES_PER_TICK", "7")
	t.Setenv("OXY_MORPH_MAX_TIME_BUDGET_MS", " 2.5 ")
	t.Setenv("OXY_MORPH_RENDERER", "wgpu")
	t.Setenv("OXY_MORPH_PROFILING", "true")

	cfg, err := Parse([]byte("[pipeline]\nmax_updates_per_tick = 3\n"), "inline")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.MaxUpdatesPerTick, "environment wins over the file")
	assert.Equal(t, 2500*time.Microsecond, cfg.Pipeline.MaxTimeBudget())
	assert.Equal(t, "wgpu", cfg.Engine.Renderer)
	assert.True(t, cfg.Engine.Profiling)
}

func TestEnvOverrideRejectsGarbage(t *testing.T) {
	t.Setenv("OXY_MORPH_POOL_CAPACITY", "lots")
	_, err := Parse(nil, "inline")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morph.toml")
	writeFile(t, path, "[pipeline]\nmax_updates_per_tick = 5\n")

	changes := make(chan *Config, 8)
	w, err := NewWatcher(path, func(cfg *Config) { changes <- cfg })
	require.NoError(t, err)
	defer w.Close()

	// an invalid file is ignored
	writeFile(t, path, "[pipeline]\npool_capacity = 0\n")
	writeFile(t, path, "[pipeline]\nmax_updates_per_tick = 9\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			require.NotZero(t, cfg.Pipeline.PoolCapacity)
			if cfg.Pipeline.MaxUpdatesPerTick == 9 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morph.toml")
	writeFile(t, path, "")
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.Error(t, w.Close())
}
