package main

import (
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/prime-api/internal/config"
	"github.com/phrazzld/prime-api/internal/metrics"
	"github.com/phrazzld/prime-api/internal/platform/redis"
	"github.com/phrazzld/prime-api/internal/primecache"
	"github.com/phrazzld/prime-api/internal/service"
	"github.com/phrazzld/prime-api/internal/store"
	"github.com/phrazzld/prime-api/internal/task"
)

// application holds the initialized dependencies of the server.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	redisClient *goredis.Client
	kv          store.KV
	taskService *service.TaskService
	queue       *task.TaskQueue
	pool        *task.WorkerPool
	recorder    metrics.Recorder
	promhandler *metrics.PrometheusRecorder // nil when metrics are disabled
}

// newApplication wires every component together: the Redis-backed stores,
// the prime cache behind its distributed lock, the task queue and worker
// pool, and the metrics recorder selected by configuration.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	client, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	var recorder metrics.Recorder
	var promRecorder *metrics.PrometheusRecorder
	if cfg.Metrics.Enabled {
		promRecorder = metrics.NewPrometheusRecorder()
		recorder = promRecorder
	} else {
		recorder = metrics.NopRecorder{}
	}

	kv := store.NewRedisKV(client)
	locker := store.NewRedisLocker(client)
	records := store.NewTaskRecordStore(kv)

	cache := primecache.New(
		store.NewPrimeCacheStore(kv, logger.With("component", "prime_cache_store")),
		locker,
		primecache.Config{
			LockTimeout:  time.Duration(cfg.Cache.LockTimeoutSeconds) * time.Second,
			PersistBatch: cfg.Cache.PersistBatchSize,
			ComputeDelay: time.Duration(cfg.Cache.ComputeDelaySeconds) * time.Second,
		},
		logger.With("component", "prime_cache"),
		recorder,
	)

	queue := task.NewTaskQueue(cfg.Task.QueueSize, logger.With("component", "task_queue"))
	pool := task.NewWorkerPool(
		queue,
		task.WorkerPoolConfig{WorkerCount: cfg.Task.WorkerCount},
		logger.With("component", "worker_pool"),
		recorder,
	)

	taskService := service.NewTaskService(
		records,
		queue,
		cache,
		logger.With("component", "task_service"),
		recorder,
	)

	return &application{
		config:      cfg,
		logger:      logger,
		redisClient: client,
		kv:          kv,
		taskService: taskService,
		queue:       queue,
		pool:        pool,
		recorder:    recorder,
		promhandler: promRecorder,
	}, nil
}

// cleanup releases resources in reverse dependency order: stop accepting
// work, let workers drain, then drop the Redis connection.
func (app *application) cleanup() {
	app.queue.Close()
	app.pool.Stop()

	if err := app.redisClient.Close(); err != nil {
		app.logger.Error("failed to close redis client", "error", err)
	}
}
