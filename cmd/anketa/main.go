package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"

	"github.com/xiaot623/anketa/internal/auth"
	"github.com/xiaot623/anketa/internal/channel"
	"github.com/xiaot623/anketa/internal/config"
	"github.com/xiaot623/anketa/internal/dispatch"
	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/flow"
	"github.com/xiaot623/anketa/internal/logging"
	"github.com/xiaot623/anketa/internal/metrics"
	"github.com/xiaot623/anketa/internal/policy"
	"github.com/xiaot623/anketa/internal/repository"
	"github.com/xiaot623/anketa/internal/service"
	internalhttp "github.com/xiaot623/anketa/internal/transport/http"
	"github.com/xiaot623/anketa/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides CONFIG_FILE)")
	httpPort := flag.Int("http-port", 0, "HTTP listen port (overrides HTTP_PORT)")
	dbURL := flag.String("db", "", "SQLite DSN (overrides DATABASE_URL)")
	flag.Parse()

	cfg, err := config.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if *httpPort != 0 {
		cfg.HTTPPort = *httpPort
	}
	if *dbURL != "" {
		cfg.DatabaseURL = *dbURL
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.Error("anketa stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting anketa",
		"http_port", cfg.HTTPPort,
		"media_backend", cfg.MediaBackend,
		"job_types", len(cfg.JobTypes),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	store, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	seed := make([]domain.UserID, 0, len(cfg.Reviewers))
	for _, id := range cfg.Reviewers {
		seed = append(seed, domain.UserID(id))
	}
	if err := store.SeedReviewers(ctx, seed); err != nil {
		return fmt.Errorf("failed to seed reviewers: %w", err)
	}

	var backend repository.MediaBackend = store
	if cfg.MediaBackend == config.MediaBackendFile {
		backend = repository.NewFileMediaStore(cfg.MediaStorePath)
	}
	media := repository.NewMediaCache(ctx, backend, cfg.DefaultMedia, logger.With("component", "media"))

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	// Policy
	engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	// Channel
	hub := ws.NewHub(logger.With("component", "hub"))
	go hub.Run(ctx)
	messenger := channel.NewHubMessenger(hub)

	// Questionnaire
	sessions := repository.NewMemorySessionStore()
	machine := flow.NewMachine(flow.Config{
		JobTypes:   cfg.JobTypes,
		Messenger:  messenger,
		Sessions:   sessions,
		Media:      media,
		Dispatcher: dispatch.NewDispatcher(messenger, store, recorder, logger.With("component", "dispatch")),
		Metrics:    recorder,
		Logger:     logger.With("component", "flow"),
	})

	svc := service.New(service.Dependencies{
		Machine:   machine,
		Messenger: messenger,
		Sessions:  sessions,
		Media:     media,
		Captures:  repository.NewMemoryCaptureRegistry(),
		Reviewers: store,
		Policy:    engine,
		Metrics:   recorder,
		Logger:    logger.With("component", "service"),
	}, cfg.EventQueueSize)
	go func() {
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event loop stopped", "error", err)
		}
	}()

	wsServer := ws.NewServer(cfg, hub, svc, logger.With("component", "ws"))
	httpServer := internalhttp.NewServer(svc, hub, internalhttp.Options{
		APIKey:    cfg.APIKey,
		Tokens:    auth.NewSigner(cfg.AuthSecret),
		Store:     store,
		Gatherer:  reg,
		WebSocket: wsServer.HandleWebSocket,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("HTTP server started", "port", cfg.HTTPPort)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	logger.Info("shutting down anketa")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown HTTP server gracefully", "error", err)
	}

	logger.Info("anketa stopped")
	return nil
}
