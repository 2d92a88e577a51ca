package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"solar-roi-workers/internal/common/camunda"
	"solar-roi-workers/internal/common/config"
	"solar-roi-workers/internal/common/database"
	"solar-roi-workers/internal/common/logger"
	"solar-roi-workers/internal/common/observability"
	"solar-roi-workers/internal/common/pvwatts"
	"solar-roi-workers/internal/session"
	"solar-roi-workers/pkg/registry"
	"solar-roi-workers/pkg/roi"

	gl "solar-roi-workers/internal/workers/solar/generation-lookup"
	rc "solar-roi-workers/internal/workers/solar/roi-calculate"
	sr "solar-roi-workers/internal/workers/solar/session-reset"
)

const serviceName = "solar-roi-workers"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"service": serviceName,
		"version": cfg.App.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		zapLog.Fatal("worker manager failed", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		return fmt.Errorf("load activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("activity registry: %w", err)
	}
	if err := reg.RequireTaskTypes(gl.TaskType, rc.TaskType, sr.TaskType); err != nil {
		return err
	}

	obs := observability.New(serviceName, log)
	defer obs.Shutdown()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RetryConfig:            camunda.DefaultRetryConfig,
	}, log)
	if err != nil {
		return err
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	checks := map[string]readinessCheck{"zeebe": zeebe.HealthCheck}

	// --- Session store ---
	var store session.Store
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		store = session.NewMemoryStore(cfg.SessionTTL())
		log.Warn("using in-memory session store; sessions are lost on restart", nil)
	default:
		redisClient, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		err = camunda.Retry(ctx, camunda.DefaultRetryConfig, log, "Redis connection", redisClient.Ping)
		if err != nil {
			return err
		}
		store = session.NewRedisStore(redisClient.Client, cfg.SessionTTL())
		checks["redis"] = redisClient.Ping
		log.Info("Redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
	}

	engine, err := roi.NewEngine(*cfg.Finance.ExportRate)
	if err != nil {
		return err
	}
	sessions := session.NewManager(store, engine, log)

	lookup := pvwatts.NewClient(pvwatts.ClientConfig{
		BaseURL: cfg.APIs.PVWatts.BaseURL,
		APIKey:  cfg.APIs.PVWatts.APIKey,
		Timeout: config.GetDuration(cfg.APIs.PVWatts.Timeout),
	})

	// --- Workers ---
	workers := camunda.NewWorkers(zeebe.GetClient(), serviceName, log)

	lookupHandler, err := gl.NewHandler(gl.HandlerOptions{
		AppConfig:     cfg,
		Logger:        log,
		Lookup:        lookup,
		Sessions:      sessions,
		Observability: obs,
	})
	if err != nil {
		return err
	}
	calculateHandler, err := rc.NewHandler(rc.HandlerOptions{
		AppConfig:     cfg,
		Logger:        log,
		Analyzer:      engine,
		Sessions:      sessions,
		Observability: obs,
	})
	if err != nil {
		return err
	}
	resetHandler, err := sr.NewHandler(sr.HandlerOptions{
		AppConfig:     cfg,
		Logger:        log,
		Sessions:      sessions,
		Observability: obs,
	})
	if err != nil {
		return err
	}

	subs := []camunda.Subscription{
		{Handler: lookupHandler, MaxJobsActive: lookupHandler.GetConfig().MaxJobsActive, Timeout: lookupHandler.GetConfig().Timeout},
		{Handler: calculateHandler, MaxJobsActive: calculateHandler.GetConfig().MaxJobsActive, Timeout: calculateHandler.GetConfig().Timeout},
		{Handler: resetHandler, MaxJobsActive: resetHandler.GetConfig().MaxJobsActive, Timeout: resetHandler.GetConfig().Timeout},
	}
	for _, sub := range subs {
		if err := workers.Register(sub); err != nil {
			return err
		}
	}
	workers.Open()
	log.Info("workers registered", map[string]interface{}{"taskTypes": workers.TaskTypes()})

	// --- Health & Metrics Server ---
	srv := newHealthServer(cfg.Server.Address, checks, log)
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping health server", map[string]interface{}{"error": err.Error()})
	}
	return nil
}
