// Command gambit serves the chess coaching companion over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/gambit/internal/app"
	"github.com/MrWong99/gambit/internal/config"
	"github.com/MrWong99/gambit/internal/observe"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── Environment ────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "gambit: load .env: %v\n", err)
		return 1
	}

	// ── CLI flags ──────────────────────────────────────────────────────────────
	defaultConfig := os.Getenv(config.EnvConfigPath)
	configPath := flag.String("config", defaultConfig, "path to the YAML configuration file (empty: built-in defaults)")
	watchInterval := flag.Duration("watch-interval", config.DefaultWatchInterval, "how often to poll the config file for changes")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gambit: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(cfg.Server.LogLevel.SlogLevel())
	slog.SetDefault(newLogger(level))

	slog.Info("gambit starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	telemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	application, err := app.New(ctx, cfg,
		app.WithLevelVar(level),
		app.WithEnv(os.LookupEnv),
		app.WithMetrics(telemetry.Metrics()),
		app.WithMetricsHandler(telemetry.MetricsHandler()),
	)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	// ── Run ───────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return application.Run(gctx) })

	var watcher *config.Watcher
	if *configPath != "" {
		watcher, err = config.NewWatcher(*configPath, application.ApplyConfig, config.WithInterval(*watchInterval))
		if err != nil {
			slog.Error("failed to start config watcher", "err", err)
			return 1
		}
		g.Go(func() error { return watcher.Run(gctx) })
	}

	g.Go(func() error {
		reloadOnHangup(gctx, watcher, application)
		return nil
	})

	slog.Info("server ready, press Ctrl+C to shut down")

	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("run error", "err", runErr)
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("stopping")
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// loadConfig reads path, or starts from the defaults when path is empty, and
// applies the GAMBIT_* environment overrides.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %q not found; copy configs/example.yaml to get started", path)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	return cfg, nil
}

// reloadOnHangup re-checks the config file (when watched) and re-reads the
// coaching profile on every SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, watcher *config.Watcher, application *app.App) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			slog.Info("SIGHUP received, reloading")
			if watcher != nil {
				if _, err := watcher.Check(); err != nil {
					slog.Error("config reload failed", "err", err)
				}
			}
			if err := application.ReloadProfile(ctx); err != nil {
				slog.Error("profile reload failed", "err", err)
			}
		}
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
