package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendboard/internal/amqp"
	"spendboard/internal/backend"
	"spendboard/internal/cache"
	"spendboard/internal/cli"
	"spendboard/internal/config"
	"spendboard/internal/dataset"
	apphttp "spendboard/internal/http"
	applog "spendboard/internal/log"
	"spendboard/internal/metrics"
	"spendboard/internal/services"
	"spendboard/internal/worker"
)

const (
	cacheCleanupInterval = 5 * time.Minute
	shutdownTimeout      = 30 * time.Second
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	reg := cli.LoadRegister(logger, cfg.RiskRegisterFile)

	reader, err := backend.NewFactory(logger.Logger).NewReader(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize data source", "error", err, "source", cfg.DataSource)
		os.Exit(1)
	}
	store := dataset.NewStore(dataset.NewLoader(reader), cfg.DataTTL)
	m := metrics.New()

	var (
		snapshots services.SnapshotStore
		history   apphttp.Pinger
	)
	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if sqliteRepo != nil {
		snapshots = sqliteRepo
		history = sqliteRepo
	}

	// AMQP is optional; the dashboard works without a broker.
	var (
		amqpClient *amqp.Client
		publisher  services.LoadPublisher
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRefreshQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, refresh events disabled", "error", err)
			amqpClient = nil
		} else {
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPRefreshQueue)
		}
	}

	recorder := services.NewLoadRecorder(reg, snapshots, publisher, m)
	store.OnLoad(recorder.Hook)

	viewCache, cacheManager := newViewCache(logger, cfg)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:          store,
		Register:       reg,
		Tracker:        recorder,
		History:        history,
		Cache:          viewCache,
		Metrics:        m,
		Logger:         logger,
		RegionPrefixes: cfg.RegionPrefixes,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 90 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// A failed first load is reported by /readyz and the error panel; the
	// server still starts so the source can be fixed and refreshed.
	if ds, err := store.Current(context.Background()); err != nil {
		logger.LogError(context.Background(), "Initial dataset load failed", err, applog.OpLoad, nil)
	} else {
		logger.Info("Initial dataset loaded",
			applog.FieldFingerprint, ds.Fingerprint,
			"source", ds.Source,
			"warnings", len(ds.Warnings))
	}

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if cacheManager != nil {
			cacheManager.Stop()
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if sqliteRepo != nil {
			if err := sqliteRepo.Close(); err != nil {
				logger.Warn("SQLite close error", "error", err)
			}
		}
	})

	refresher := worker.NewRefreshWorker(store, cfg.RefreshMinInterval)
	if amqpClient != nil {
		go func() {
			if err := refresher.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Refresh consumer stopped", "error", err)
			}
		}()
	}
	if cfg.RefreshInterval > 0 {
		go refresher.RunPeriodic(ctx, cfg.RefreshInterval)
	}

	logger.Info("Starting spendboard server",
		"port", cfg.Port,
		"source", cfg.DataSource,
		"cache", cfg.CacheBackend,
		"data_ttl", cfg.DataTTL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// newViewCache builds the rendered view cache. Redis failures at startup fall
// back to the in-process LRU.
func newViewCache(logger *applog.Logger, cfg *config.Config) (cache.Cache[[]byte], *cache.Manager) {
	if cfg.CacheBackend == "redis" {
		rdb, err := cache.NewRedisClient(context.Background(), cfg.RedisAddr)
		if err == nil {
			logger.Info("Using Redis view cache", "addr", cfg.RedisAddr)
			return cache.NewRedisCache[[]byte](rdb, "spendboard:", cfg.CacheTTL), nil
		}
		logger.Warn("Redis unavailable, using in-memory view cache", "error", err, "addr", cfg.RedisAddr)
	}

	lru := cache.NewLRUCache[[]byte](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager()
	manager.Register(lru)
	manager.StartCleanup(cacheCleanupInterval)
	return lru, manager
}
