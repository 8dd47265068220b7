package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pagegen-workers/internal/common/camunda"
	"pagegen-workers/internal/common/config"
	"pagegen-workers/internal/common/database"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/common/observability"
	"pagegen-workers/internal/pipeline"

	mt "pagegen-workers/internal/workers/pagegen/match-template"
	pp "pagegen-workers/internal/workers/pagegen/process-page"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("app", cfg.App.Name), zap.String("version", cfg.App.Version))

	if err := config.ValidateForWorkers(cfg); err != nil {
		zapLog.Fatal("invalid worker configuration", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.Connect(ctx, cfg.Camunda, camunda.Backoff{Retries: 9, Base: 2 * time.Second, Max: 30 * time.Second})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Init Redis with retry, only for the shared limiter ---
	opts := pipeline.BuildOptions{Tracer: obs.Tracer()}
	if cfg.RateLimit.Backend == "redis" {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.Connect(ctx, cfg.Redis)
			return err
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		opts.Redis = redis.Scripter()
		zapLog.Info("Redis connected successfully")
	}

	svc, err := pipeline.Build(cfg, log, opts)
	if err != nil {
		zapLog.Fatal("pipeline build failed", zap.Error(err))
	}

	if cfg.Orchestrator.SelfTest {
		testCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		available := svc.Orchestrator.SelfTest(testCtx)
		cancel()
		zapLog.Info("provider self-test finished", zap.Strings("available", available))
	}

	// --- Register Workers ---
	var workers []*camunda.CamundaWorker

	if wcfg := pp.ConfigFromApp(cfg); wcfg.Enabled {
		handler, err := pp.NewHandler(wcfg, svc, log)
		if err != nil {
			zapLog.Fatal("failed to create process-page handler", zap.Error(err))
		}
		workers = append(workers, startWorker(zeebe, pp.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wcfg.Timeout,
		}, handler.Handle, obs, zapLog))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", pp.TaskType))
	}

	if wcfg := mt.ConfigFromApp(cfg); wcfg.Enabled {
		handler, err := mt.NewHandler(wcfg, svc, log)
		if err != nil {
			zapLog.Fatal("failed to create match-template handler", zap.Error(err))
		}
		workers = append(workers, startWorker(zeebe, mt.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wcfg.Timeout,
		}, handler.Handle, obs, zapLog))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", mt.TaskType))
	}

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		brokers, err := zeebe.Brokers(r.Context())
		if err != nil || brokers == 0 {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status":    status,
			"brokers":   brokers,
			"providers": svc.Orchestrator.Available(),
			"time":      time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func startWorker(
	client *camunda.Client,
	taskType string,
	opts camunda.WorkerOptions,
	handle func(worker.JobClient, entities.Job),
	obs *observability.Observability,
	log *zap.Logger,
) *camunda.CamundaWorker {
	handler := camunda.HandlerFunc(func(jc worker.JobClient, job entities.Job) error {
		start := time.Now()
		handle(jc, job)
		obs.RecordJobProcessed(context.Background(), taskType)
		obs.RecordJobDuration(context.Background(), time.Since(start), taskType)
		return nil
	})

	w := camunda.NewWorker(client.Zeebe(), taskType, opts, handler, log)
	w.Start()
	log.Info("worker options",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", opts.MaxJobsActive),
		zap.Duration("timeout", opts.Timeout),
	)
	return w
}
