package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Redis   RedisConfig   `mapstructure:"redis"   validate:"required"`
	Task    TaskConfig    `mapstructure:"task"    validate:"required"`
	Cache   CacheConfig   `mapstructure:"cache"   validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// RedisConfig contains the connection settings for the Redis-compatible
// key-value store that backs both the task records and the prime cache.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// TaskConfig contains the background task processing settings.
type TaskConfig struct {
	// WorkerCount determines how many concurrent workers drain the queue.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// QueueSize is the buffer size of the in-memory task queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
}

// CacheConfig contains the prime cache settings.
type CacheConfig struct {
	// LockTimeoutSeconds bounds how long a worker waits to acquire the
	// cache's mutual-exclusion lock before failing with a lock timeout.
	LockTimeoutSeconds int `mapstructure:"lock_timeout_seconds" validate:"required,gt=0"`

	// PersistBatchSize is how many newly generated primes are accumulated
	// before in-progress results are persisted to the store.
	PersistBatchSize int `mapstructure:"persist_batch_size" validate:"required,gt=0"`

	// ComputeDelaySeconds adds an artificial delay before generation starts
	// on a cache miss, emulating a long-running background job. The delay
	// runs inside the critical section, so other extenders of the cache
	// queue behind it. Zero disables the delay.
	ComputeDelaySeconds int `mapstructure:"compute_delay_seconds" validate:"gte=0"`
}

// MetricsConfig controls the Prometheus metrics exporter.
type MetricsConfig struct {
	// Enabled selects the real Prometheus recorder when true and the
	// no-op recorder when false.
	Enabled bool `mapstructure:"enabled"`
}
