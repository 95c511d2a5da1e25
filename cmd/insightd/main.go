package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lilac-app/insightd/internal/api"
	"github.com/lilac-app/insightd/internal/config"
	"github.com/lilac-app/insightd/internal/events"
	"github.com/lilac-app/insightd/internal/llm"
	"github.com/lilac-app/insightd/internal/pipeline"
	"github.com/lilac-app/insightd/internal/store"
)

func main() {
	serve := flag.Bool("serve", false, "run the read-side HTTP API instead of a batch run")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("insightd starting", "serve", *serve)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	if *serve {
		runServer(cfg, db)
		return
	}

	runBatch(ctx, cancel, cfg, db)
}

func runServer(cfg config.Config, db *store.Store) {
	srv := api.NewServer(cfg.Port, db, cfg.StatePath)

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("insightd serving", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("insightd stopped")
}

func runBatch(ctx context.Context, cancel context.CancelFunc, cfg config.Config, db *store.Store) {
	if cfg.OpenAIAPIKey == "" || cfg.AnthropicAPIKey == "" {
		slog.Error("OPENAI_API_KEY and ANTHROPIC_API_KEY are required")
		os.Exit(1)
	}
	caller := llm.NewClient(cfg.OpenAIAPIKey, cfg.AnthropicAPIKey)

	// NATS publisher (optional — the run works without it, just no events)
	var pub *events.Publisher
	if cfg.NatsURL != "" {
		p, err := events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		pub = p
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without run events")
	}

	// Cancel the run on SIGINT/SIGTERM; progress is saved in the state file.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown requested, cancelling run")
		cancel()
	}()

	runner := pipeline.NewRunner(cfg, caller, db, pub, slog.Default())
	result, err := runner.Run(ctx)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
	if !result.Success {
		slog.Warn("run finished without merge", "message", result.Message)
		os.Exit(2)
	}
	slog.Info("run finished", "message", result.Message)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
