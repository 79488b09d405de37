package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LuckVd/AIVoice/internal/audio"
	"github.com/LuckVd/AIVoice/internal/config"
	"github.com/LuckVd/AIVoice/internal/observability"
	"github.com/LuckVd/AIVoice/internal/pipeline"
	"github.com/LuckVd/AIVoice/internal/storage"
	"github.com/LuckVd/AIVoice/internal/synth"
	"github.com/LuckVd/AIVoice/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("nats_url", cfg.NATSURL).
		Str("jobs_subject", cfg.JobsSubject).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("AIVoice synthesis service starting")

	if err := os.MkdirAll(cfg.AudioDir(), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create audio directory")
	}
	if err := os.MkdirAll(cfg.TempDir(), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create temp directory")
	}

	// Connect to NATS for job intake and progress updates
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("aivoice-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		logger.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("Failed to connect to NATS")
	}
	defer nc.Close()

	// Wire the synthesis pipeline
	synthClient := synth.New(cfg)
	assembler := audio.NewAssembler()
	orchestrator := pipeline.NewOrchestrator(cfg, synthClient, assembler)
	jobWorker := worker.NewNatsWorker(nc, cfg, orchestrator)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the job intake loop
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- jobWorker.Run(ctx)
	}()

	// Start the audio retention sweep
	janitor := storage.NewJanitor(cfg.AudioDir(), cfg.AudioTTL(), cfg.CleanupInterval())
	go janitor.Run(ctx)

	// Create HTTP server
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	// Readiness endpoint
	natsCheck := func(ctx context.Context) (bool, error) {
		if !nc.IsConnected() {
			return false, fmt.Errorf("nats connection is %s", nc.Status())
		}
		return true, nil
	}
	storageCheck := func(ctx context.Context) (bool, error) {
		if _, err := os.Stat(cfg.AudioDir()); err != nil {
			return false, err
		}
		return true, nil
	}
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"nats":    natsCheck,
		"storage": storageCheck,
	}))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	// Let the worker drain its subscription before closing NATS
	select {
	case err := <-workerDone:
		if err != nil {
			logger.Error().Err(err).Msg("Worker shutdown failed")
		}
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Worker did not drain in time")
	}

	logger.Info().Msg("Shutdown complete")
}
