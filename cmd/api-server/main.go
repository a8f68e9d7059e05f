package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinician-availability/internal/api"
	"github.com/hackgods/clinician-availability/internal/availability"
	"github.com/hackgods/clinician-availability/internal/config"
	"github.com/hackgods/clinician-availability/internal/db"
	"github.com/hackgods/clinician-availability/internal/logging"
	"github.com/hackgods/clinician-availability/internal/metrics"
	redisclient "github.com/hackgods/clinician-availability/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("dev", "info").Error("config load error", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	logger.Info("api-server starting up", "env", cfg.Env, "http_port", cfg.HTTPPort, "version", version)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection error", "err", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	if err := db.ApplySchema(rootCtx, pgPool); err != nil {
		logger.Error("schema error", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []availability.Option{
		availability.WithLogger(logger),
		availability.WithMetrics(metrics.NewAvailabilityMetrics(reg)),
	}

	// Connect Redis. The cache is optional: without it every lookup is
	// computed from Postgres.
	var redisPing api.PingFunc
	if cfg.RedisDisabled {
		logger.Info("redis disabled, availability cache off")
	} else {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, availability cache off", "err", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					logger.Warn("error closing redis", "err", err)
				}
			}()
			logger.Info("connected to Redis")

			redisPing = pingRedis(rdb)
			opts = append(opts, availability.WithCache(
				redisclient.NewJSONCache(rdb, "availability"),
				redisclient.NewRedisLocker(rdb, cfg.LockTTL),
			))
		}
	}

	repo := availability.NewPgRepository(pgPool, logger)
	svc := availability.NewService(repo, cfg, opts...)

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Service:  svc,
			Postgres: pgPool.Ping,
			Redis:    redisPing,
			Gatherer: reg,
			Logger:   logger,
			Env:      cfg.Env,
			Version:  version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr,
			"therapy_length", cfg.TherapyLength,
			"assessment_length", cfg.AssessmentLength,
			"cache_ttl", cfg.CacheTTL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("http server error", "err", err)
		}
	}

	logger.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

func pingRedis(rdb *redis.Client) api.PingFunc {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
