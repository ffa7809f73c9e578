package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 2, cfg.Task.WorkerCount)
	assert.Equal(t, 100, cfg.Task.QueueSize)
	assert.Equal(t, 30, cfg.Cache.LockTimeoutSeconds)
	assert.Equal(t, 100, cfg.Cache.PersistBatchSize)
	assert.Equal(t, 0, cfg.Cache.ComputeDelaySeconds)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PRIME_SERVER_PORT", "9090")
	t.Setenv("PRIME_SERVER_LOG_LEVEL", "debug")
	t.Setenv("PRIME_REDIS_URL", "redis://cache.internal:6379/1")
	t.Setenv("PRIME_TASK_WORKER_COUNT", "8")
	t.Setenv("PRIME_METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "redis://cache.internal:6379/1", cfg.Redis.URL)
	assert.Equal(t, 8, cfg.Task.WorkerCount)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "PRIME_SERVER_PORT", "70000"},
		{"unknown log level", "PRIME_SERVER_LOG_LEVEL", "verbose"},
		{"non-positive workers", "PRIME_TASK_WORKER_COUNT", "0"},
		{"non-positive batch", "PRIME_CACHE_PERSIST_BATCH_SIZE", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
