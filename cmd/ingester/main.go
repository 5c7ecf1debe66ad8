package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/tickstore/internal/aggregate"
	"github.com/rickgao/tickstore/internal/config"
	"github.com/rickgao/tickstore/internal/dispatch"
	"github.com/rickgao/tickstore/internal/metrics"
	"github.com/rickgao/tickstore/internal/schema"
	"github.com/rickgao/tickstore/internal/store"
	"github.com/rickgao/tickstore/internal/transport/zmqsub"
	"github.com/rickgao/tickstore/internal/version"
	"github.com/rickgao/tickstore/internal/writer"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty: read environment)")
	envFile := flag.String("env-file", ".env", "optional .env file loaded before the config")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "load env file: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With("instance_id", cfg.Instance.ID)
	slog.SetDefault(logger)

	logger.Info("starting ingester",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"address", cfg.Transport.Address,
		"topics", cfg.Transport.Topics,
		"keyspace", cfg.Storage.Keyspace,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("ingester failed", "error", err)
		os.Exit(1)
	}
	logger.Info("ingester stopped")
}

func run(cfg *config.IngesterConfig, logger *slog.Logger) error {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipeline := metrics.New(registry)

	// Connect to storage
	logger.Info("connecting to storage",
		"hosts", cfg.Storage.Hosts,
		"port", cfg.Storage.Port,
	)
	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.Storage.ConnectTimeout)
	session, err := store.Connect(connectCtx, cfg.Storage)
	connectCancel()
	if err != nil {
		return fmt.Errorf("connect to storage: %w", err)
	}
	defer session.Close()
	logger.Info("storage connected")

	schemas := schema.NewManager(session, pipeline, logger)
	if err := schemas.EnsureKeyspace(ctx, cfg.Storage.Keyspace, cfg.Storage.ReplicationFactor); err != nil {
		return err
	}

	policy, err := aggregate.ParseResetPolicy(cfg.Aggregation.DayReset)
	if err != nil {
		return err
	}

	// Subscribe
	subscriber, err := zmqsub.Dial(cfg.Transport, logger)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer subscriber.Close()

	dispatcher := dispatch.New(
		cfg.Storage.Keyspace,
		subscriber,
		aggregate.NewState(policy),
		schemas,
		writer.NewWriter(session, pipeline, logger),
		pipeline,
		logger,
	)

	// Health and metrics server
	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newHealthHandler(cfg.Metrics.Path, session, dispatcher, schemas, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting health server",
			"port", cfg.Metrics.Port,
			"metrics_path", cfg.Metrics.Path,
		)
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		healthServer.Shutdown(shutdownCtx)
	}()

	return dispatcher.Run(ctx)
}

// pinger is the storage check behind /health.
type pinger interface {
	Ping(ctx context.Context) error
}

// newHealthHandler serves /health and the Prometheus metrics path.
func newHealthHandler(
	metricsPath string,
	storage pinger,
	dispatcher *dispatch.Dispatcher,
	schemas *schema.Manager,
	gatherer prometheus.Gatherer,
) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Build      version.Info   `json:"build"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Build:      version.Get(),
			Components: make(map[string]any),
		}

		// Check storage
		if err := storage.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["cassandra"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["cassandra"] = "connected"
		}

		stats := dispatcher.Stats()
		health.Components["dispatcher"] = stats
		health.Components["schema"] = schemas.Stats()
		health.Components["aggregation"] = map[string]any{
			"symbols": dispatcher.State().Symbols(),
			"policy":  dispatcher.State().Policy(),
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
