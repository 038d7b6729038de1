package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/ideaforge/internal/api"
	"github.com/hyperengineering/ideaforge/internal/auth"
	"github.com/hyperengineering/ideaforge/internal/config"
	"github.com/hyperengineering/ideaforge/internal/llm"
	"github.com/hyperengineering/ideaforge/internal/metrics"
	"github.com/hyperengineering/ideaforge/internal/prompt"
	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/workflow"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

// limiterPruneInterval is how often idle rate-limit buckets are dropped.
const limiterPruneInterval = 10 * time.Minute

var rootCmd = &cobra.Command{
	Use:          "ideaforge",
	Short:        "IdeaForge - guided product building API",
	Long:         "Runs the IdeaForge HTTP API. Subcommands cover schema migration, AI configuration and local tokens.",
	Version:      Version,
	SilenceUsage: true,
	RunE:         run,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (same as running without a subcommand)",
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(aiconfigCmd)
}

func run(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	// 3. Initialize logger
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))
	slog.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)
	if config.DevMode() {
		slog.Warn("dev mode enabled, secret validation skipped")
	}

	// 4. Initialize store (migrations, WAL mode)
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	// 5. Initialize model client
	m := metrics.New()
	client := llm.Instrumented(llm.NewOpenAI(llm.Options{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: time.Duration(cfg.LLM.RequestTimeout),
	}), m)
	slog.Info("llm client initialized", "model", cfg.LLM.Model)

	// 6. Initialize workflow and HTTP router
	svc := workflow.New(workflow.Deps{
		Store:    db,
		LLM:      client,
		Defaults: prompt.DefaultConfigs().WithModel(cfg.LLM.Model),
		Metrics:  m,
	})
	limiter := api.NewGenerationLimiter(cfg.RateLimit.GenerationBurst,
		time.Duration(cfg.RateLimit.GenerationInterval))
	routerCfg := api.RouterConfig{
		Verifier: auth.NewVerifier(authOptions(cfg.Auth)),
		Limiter:  limiter,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = m
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	handler := api.NewHandler(db, svc, cfg.LLM.Model, Version)
	router := api.NewRouter(handler, routerCfg)
	slog.Info("router initialized", "metrics", cfg.Metrics.Enabled)

	// 7. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 8. Background workers
	var wg sync.WaitGroup
	if cfg.RateLimit.GenerationBurst > 0 {
		startWorker(ctx, &wg, "limiter-prune", func(ctx context.Context) {
			limiter.RunPruner(ctx, limiterPruneInterval)
		})
	}

	// 9. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// 10. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 11. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// 11a. Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// 11b. Wait for workers to complete
	wg.Wait()

	// 11c. Close store
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func authOptions(c config.AuthConfig) auth.Options {
	return auth.Options{
		Secret:    []byte(c.JWTSecret),
		Issuer:    c.Issuer,
		Audience:  c.Audience,
		AdminRole: c.AdminRole,
	}
}

func newLogger(w io.Writer, c config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.Level)}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
