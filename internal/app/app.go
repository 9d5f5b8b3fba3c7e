// Package app wires the Gambit subsystems into a running application.
//
// The App struct owns the full lifecycle: New loads the coaching profile and
// builds the session manager and HTTP front end, Run serves until the context
// ends, and Shutdown tears everything down in order. ApplyConfig is the
// config watcher callback that hot-reloads what can change at runtime.
//
// For testing, inject doubles via functional options (WithScheduler,
// WithProfileStore, WithMetrics). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/MrWong99/gambit/internal/api"
	"github.com/MrWong99/gambit/internal/config"
	"github.com/MrWong99/gambit/internal/health"
	"github.com/MrWong99/gambit/internal/observe"
	"github.com/MrWong99/gambit/internal/profile"
	"github.com/MrWong99/gambit/internal/schedule"
)

// HTTP server timeouts. WriteTimeout stays zero for the transcript stream.
const (
	readTimeout = 30 * time.Second
	idleTimeout = 120 * time.Second
)

// App owns all subsystem lifetimes.
type App struct {
	mu  sync.Mutex
	cfg *config.Config

	levelVar       *slog.LevelVar
	lookupEnv      func(string) (string, bool)
	profiles       *profile.Store
	sessions       *SessionManager
	metrics        *observe.Metrics
	sched          schedule.Scheduler
	metricsHandler http.Handler
	handler        *api.Server
	server         *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithProfileStore injects a profile store instead of loading one from
// config.
func WithProfileStore(s *profile.Store) Option {
	return func(a *App) { a.profiles = s }
}

// WithScheduler replaces the runtime timer that schedules coach replies.
func WithScheduler(s schedule.Scheduler) Option {
	return func(a *App) { a.sched = s }
}

// WithMetrics sets the metrics sink. By default [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithLevelVar lets ApplyConfig change the level of the process logger.
func WithLevelVar(v *slog.LevelVar) Option {
	return func(a *App) { a.levelVar = v }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *App) { a.metricsHandler = h }
}

// WithEnv sets the environment lookup re-applied to reloaded configs, so
// GAMBIT_* overrides survive a reload. By default reloaded configs are used
// as read.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(a *App) { a.lookupEnv = lookup }
}

// New creates an App from cfg. cfg must have passed [config.Validate].
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Profile ───────────────────────────────────────────────────────
	if a.profiles == nil {
		p, err := loadProfile(cfg.Profile.Path)
		if err != nil {
			return nil, fmt.Errorf("app: load profile: %w", err)
		}
		a.profiles = profile.NewStore(p)
	}

	// ── 2. Sessions ──────────────────────────────────────────────────────
	classifier, err := cfg.Classifier.Build()
	if err != nil {
		return nil, fmt.Errorf("app: build classifier: %w", err)
	}
	a.sessions = NewSessionManager(SessionManagerConfig{
		Profiles:   a.profiles,
		Scheduler:  a.sched,
		Metrics:    a.metrics,
		Classifier: classifier,
		ReplyDelay: cfg.Dialogue.EffectiveReplyDelay(),
		Greeting:   cfg.Dialogue.Greeting,
	})
	a.closers = append(a.closers, a.sessions.Stop)

	// ── 3. HTTP ──────────────────────────────────────────────────────────
	checks := health.New(
		health.Checker{Name: "profile", Check: a.checkProfile},
	)
	apiOpts := []api.Option{
		api.WithMetrics(a.metrics),
		api.WithHealth(checks),
	}
	if a.metricsHandler != nil {
		apiOpts = append(apiOpts, api.WithMetricsHandler(a.metricsHandler))
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		apiOpts = append(apiOpts, api.WithAllowedOrigins(cfg.Server.AllowedOrigins...))
	}
	a.handler = api.New(a.sessions, a.profiles, apiOpts...)
	a.server = &http.Server{
		Addr:        cfg.Server.ListenAddr,
		Handler:     a.handler,
		ReadTimeout: readTimeout,
		IdleTimeout: idleTimeout,
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	p := a.profiles.Current()
	slog.Info("app initialised",
		"player", p.PlayerName,
		"rating", p.Rating,
		"reply_delay", cfg.Dialogue.EffectiveReplyDelay(),
		"extra_rules", len(cfg.Classifier.Rules),
	)
	return a, nil
}

// loadProfile reads the profile at path. An empty path, or one that does not
// exist yet, yields the built-in profile.
func loadProfile(path string) (*profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	p, err := profile.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("profile file not found, using built-in profile", "path", path)
		return profile.Default(), nil
	}
	return p, err
}

func (a *App) checkProfile(context.Context) error {
	return profile.Validate(a.profiles.Current())
}

// Handler returns the HTTP handler serving the API, health and metrics
// routes.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Sessions returns the session manager.
func (a *App) Sessions() *SessionManager {
	return a.sessions
}

// Profiles returns the profile store.
func (a *App) Profiles() *profile.Store {
	return a.profiles
}

// Config returns the config currently in effect.
func (a *App) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts the server down gracefully. It returns nil after a clean stop.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("app: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Serve(ln)
	}()
	slog.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: http shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("app: serve: %w", err)
	}
	return nil
}

// ─── Hot reload ──────────────────────────────────────────────────────────────

// ApplyConfig applies the hot-reloadable parts of next. It is the
// [config.Watcher] callback; the watcher's old config is ignored in favour of
// the one the App is running with.
func (a *App) ApplyConfig(_, next *config.Config) {
	if a.lookupEnv != nil {
		if err := config.ApplyEnv(next, a.lookupEnv); err != nil {
			slog.Error("reloaded config invalid after environment overrides, ignoring", "err", err)
			return
		}
	}

	a.mu.Lock()
	old := a.cfg
	a.cfg = next
	a.mu.Unlock()

	diff := config.Diff(old, next)
	if !diff.Changed() {
		return
	}

	if diff.LogLevelChanged && a.levelVar != nil {
		a.levelVar.Set(diff.NewLogLevel.SlogLevel())
		slog.Info("log level changed", "level", diff.NewLogLevel)
	}
	if diff.ReplyDelayChanged {
		a.sessions.SetReplyDelay(diff.NewReplyDelay)
		slog.Info("reply delay changed", "reply_delay", diff.NewReplyDelay)
	}
	if diff.ClassifierChanged {
		c, err := next.Classifier.Build()
		if err != nil {
			slog.Error("rebuild classifier, keeping previous rules", "err", err)
		} else {
			a.sessions.SetClassifier(c)
			slog.Info("classifier rules changed; new sessions use them", "extra_rules", len(next.Classifier.Rules))
		}
	}
	if diff.GreetingChanged {
		a.sessions.SetGreeting(next.Dialogue.Greeting)
	}
	if diff.ProfilePathChanged {
		if err := a.ReloadProfile(context.Background()); err != nil {
			slog.Error("reload profile", "path", diff.NewProfilePath, "err", err)
		}
	}
	for _, field := range diff.RestartRequired {
		slog.Warn("config change requires a restart", "field", field)
	}
}

// ReloadProfile re-reads the configured profile and swaps it in atomically.
// Sessions pick it up with their next reply. On error the previous profile
// stays active.
func (a *App) ReloadProfile(ctx context.Context) error {
	path := a.Config().Profile.Path
	p, err := loadProfile(path)
	if err == nil {
		err = a.profiles.Replace(p)
	}
	if err != nil {
		a.metrics.RecordProfileReload(ctx, "error")
		return fmt.Errorf("app: reload profile %q: %w", path, err)
	}
	a.metrics.RecordProfileReload(ctx, "ok")
	slog.Info("profile reloaded", "path", path, "player", p.PlayerName, "rating", p.Rating)
	return nil
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown closes the HTTP server and the session. It respects the context
// deadline: if ctx expires before all closers finish, the remaining ones are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		if err := a.server.Shutdown(ctx); err != nil {
			slog.Warn("http server shutdown error", "err", err)
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
