// Package main runs the DAIO holder reward tracker:
// - Command loop on stdin (add, remove, list, check, history, exit)
// - Daily scheduled check at a fixed local time
// - Activity re-checks from WebSocket log subscriptions (optional)
// - HTTP /health, /metrics, /status
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"daio-rewards/internal/analysis"
	"daio-rewards/internal/cli"
	"daio-rewards/internal/config"
	"daio-rewards/internal/holdings"
	"daio-rewards/internal/httpapi"
	"daio-rewards/internal/observability"
	"daio-rewards/internal/quantum"
	"daio-rewards/internal/reporting"
	"daio-rewards/internal/reward"
	"daio-rewards/internal/solana"
	"daio-rewards/internal/storage"
	chstore "daio-rewards/internal/storage/clickhouse"
	"daio-rewards/internal/storage/memory"
	"daio-rewards/internal/storage/migrations"
	pgstore "daio-rewards/internal/storage/postgres"
	"daio-rewards/internal/tracker"
)

func main() {
	// Load .env file if exists
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	configPath := configPathFromArgs(os.Args[1:])
	if configPath == "" {
		configPath = os.Getenv("DAIO_CONFIG")
	}
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override file and environment
	flag.String("config", configPath, "TOML config file (env DAIO_CONFIG)")
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	logger, logCloser := observability.NewLogger("tracker", cfg.LogFile)
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		logger.Fatalf("Invalid schedule: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := observability.InitTracer(ctx, cfg.TracingEnabled, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Printf("WARN: tracer shutdown: %v", err)
		}
	}()

	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint,
		solana.WithTimeout(cfg.RPCTimeout.Duration),
		solana.WithMaxRetries(cfg.RPCMaxRetries),
		solana.WithRateLimit(cfg.RPCRateLimit),
	)
	lookup := holdings.NewLookup(rpc, holdings.Config{
		IssuerAddress:  cfg.IssuerAddress,
		TokenProgramID: cfg.TokenProgramID,
		PageLimit:      cfg.HistoryPageLimit,
		MaxPages:       cfg.MaxHistoryPages,
		Logger:         observability.WithPrefix(logger, "holdings"),
		Tracer:         tracer,
	})

	sim := quantum.NewSimulator()
	seeds := quantum.NewSeedGenerator(sim)
	calculator := reward.NewCalculator(seeds, quantum.NewBooster(sim))

	var analyzer analysis.Analyzer = analysis.Disabled{}
	if cfg.OpenAIAPIKey != "" {
		analyzer = analysis.NewService(tracer,
			analysis.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL),
			seeds,
			analysis.Config{
				Model:     cfg.OpenAIModel,
				MaxTokens: cfg.AnalysisMaxTokens,
				Timeout:   cfg.AnalysisTimeout.Duration,
			})
	} else {
		logger.Println("OPENAI_API_KEY not set, holding analysis disabled")
	}

	// Activity watcher is optional
	var watcher tracker.ActivityWatcher
	var triggers <-chan string
	if cfg.WSEndpoint != "" {
		wsCfg := solana.DefaultWSConfig()
		wsCfg.Logger = observability.WithPrefix(logger, "ws")
		ws, err := solana.NewWSClient(ctx, cfg.WSEndpoint, &wsCfg)
		if err != nil {
			logger.Fatalf("Failed to connect websocket: %v", err)
		}
		defer ws.Close()

		w := tracker.NewWatcher(ws, tracker.WatcherConfig{
			Debounce: cfg.WatchDebounce.Duration,
			Logger:   observability.WithPrefix(logger, "watcher"),
		})
		watcher = w
		triggers = w.Triggers()
	}

	ctrl := tracker.New(tracker.Options{
		Holdings:  lookup,
		Rewards:   calculator,
		Analyzer:  analyzer,
		Wallets:   stores.wallets,
		Snapshots: stores.snapshots,
		Watcher:   watcher,
		Logger:    logger,
		Tracer:    tracer,
	})
	if err := ctrl.Hydrate(ctx); err != nil {
		logger.Printf("WARN: load tracked wallets: %v", err)
	}
	for _, addr := range cfg.Wallets {
		if _, err := ctrl.Add(ctx, addr); err != nil {
			logger.Printf("WARN: skip configured wallet %q: %v", addr, err)
		}
	}

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var sig os.Signal
		select {
		case sig = <-sigCh:
		case <-done:
			return
		}
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	var httpServer *http.Server
	if cfg.MetricsAddr != "" {
		api := httpapi.New(httpapi.Options{
			Source:   ctrl,
			Schedule: &schedule,
			Logger:   observability.WithPrefix(logger, "http"),
		})
		httpServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Printf("Starting HTTP server on %s", cfg.MetricsAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("HTTP server error: %v", err)
			}
		}()
	}

	var reports *reporting.Writer
	if cfg.OutputDir != "" {
		reports = reporting.NewWriter(cfg.OutputDir)
	}

	console := reporting.NewConsole(os.Stdout, schedule.Location)
	console.Banner(schedule.String())

	loop := cli.New(cli.Options{
		In:         os.Stdin,
		Console:    console,
		Controller: ctrl,
		Ticks:      schedule.Ticks(ctx, time.Now),
		Triggers:   triggers,
		Reports:    reports,
		Logger:     observability.WithPrefix(logger, "cli"),
	})

	err = loop.Run(ctx)
	close(done)
	cancel()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("WARN: http shutdown: %v", err)
		}
		shutdownCancel()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("Command loop error: %v", err)
	}
	fmt.Println("\nExiting DAIO Reward System Tracker...")
	logger.Println("Shutdown complete")
}

// configPathFromArgs finds -config before flag parsing, since the file
// supplies defaults for the remaining flags.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if len(name) == len(arg) {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// trackerStores holds the stores backing the controller.
type trackerStores struct {
	wallets   storage.WalletStore
	snapshots storage.RewardSnapshotStore
}

// createStores opens PostgreSQL and ClickHouse when configured and falls back
// to in-memory stores otherwise.
func createStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (*trackerStores, func(), error) {
	stores := &trackerStores{
		wallets:   memory.NewWalletStore(),
		snapshots: memory.NewRewardSnapshotStore(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.wallets = pgstore.NewWalletStore(pool)
		logger.Println("Tracked wallets persisted to PostgreSQL")
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		stores.snapshots = chstore.NewRewardSnapshotStore(conn)
		logger.Println("Reward history recorded to ClickHouse")
	}

	return stores, cleanup, nil
}
