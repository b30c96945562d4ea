package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coursesched/internal/config"
	"coursesched/internal/engine"
	"coursesched/internal/router"
	"coursesched/pkg/logger"
	"coursesched/pkg/metrics"
	"coursesched/pkg/solvecache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{Env: cfg.Env, Level: cfg.Log.Level})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting scheduler API server", zap.String("log_level", cfg.Log.Level))

	rec := metrics.New()

	redisClient, err := solvecache.NewRedisClient(context.Background(), cfg.Redis.Addr)
	if err != nil {
		log.Warn("redis unreachable, concurrency gate disabled", zap.Error(err))
		redisClient = nil
	}
	gate := solvecache.NewConcurrencyGate(redisClient, cfg.Redis.MaxConcurrent)
	reports := solvecache.NewReportCache(cfg.Scheduler.ReportCacheSize)

	r := router.New()
	r.Setup(router.Deps{
		Log:    log,
		Config: engine.Config{
			OptimizeTimeout:    cfg.Scheduler.OptimizeTimeout,
			FeasibilityTimeout: cfg.Scheduler.FeasibilityTimeout,
		},
		Metrics: rec,
		Gate:    gate,
		Reports: reports,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited gracefully")
}
