// Package api exposes the coaching session and profile over HTTP.
//
// Routes (all JSON):
//
//	POST /api/messages            submit a player message (?wait=true blocks for the reply)
//	GET  /api/transcript          full transcript and turn state
//	GET  /api/transcript/stream   WebSocket stream of transcript events
//	GET  /api/state               turn state only
//	POST /api/session/reset       close the session; the next access starts a fresh one
//	GET  /api/profile             current coaching profile snapshot
//	GET  /api/dashboard           derived progress figures
//	GET  /api/quick-questions     suggested questions
//
// plus /healthz, /readyz and /metrics when the corresponding handlers are
// configured. The single dialogue session is created on first access.
package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrWong99/gambit/internal/dialogue"
	"github.com/MrWong99/gambit/internal/health"
	"github.com/MrWong99/gambit/internal/observe"
)

// defaultWaitTimeout bounds POST /api/messages?wait=true.
const defaultWaitTimeout = 30 * time.Second

// Sessions hands out the current dialogue session.
type Sessions interface {
	// Session returns the current session, creating it on first use.
	Session() *dialogue.Session

	// Reset closes the current session, if any.
	Reset() error
}

// Option configures a [Server].
type Option func(*Server)

// WithMetrics sets the metrics used by the request middleware and the
// transcript stream. By default [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealth mounts /healthz and /readyz.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithAllowedOrigins enables CORS for the given browser origins and lets
// them open the transcript stream. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// WithWaitTimeout bounds how long ?wait=true blocks for the coach reply.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

// Server is the HTTP front end. It implements [http.Handler].
type Server struct {
	sessions       Sessions
	profiles       dialogue.ProfileSource
	metrics        *observe.Metrics
	health         *health.Handler
	metricsHandler http.Handler
	allowedOrigins []string
	waitTimeout    time.Duration

	router chi.Router
}

// New builds the router over sessions and profiles.
func New(sessions Sessions, profiles dialogue.ProfileSource, opts ...Option) *Server {
	s := &Server{
		sessions:    sessions,
		profiles:    profiles,
		waitTimeout: defaultWaitTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(observe.Middleware(s.metrics))
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"X-Correlation-ID"},
			MaxAge:         300,
		}))
	}

	if s.health != nil {
		s.health.Register(r)
	}
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/messages", s.postMessage)
		r.Get("/transcript", s.getTranscript)
		r.Get("/transcript/stream", s.streamTranscript)
		r.Get("/state", s.getState)
		r.Post("/session/reset", s.resetSession)
		r.Get("/profile", s.getProfile)
		r.Get("/dashboard", s.getDashboard)
		r.Get("/quick-questions", s.getQuickQuestions)
	})
	return r
}

// originPatterns converts allowed origins to the host patterns the
// WebSocket handshake checks against.
func (s *Server) originPatterns() []string {
	patterns := make([]string, 0, len(s.allowedOrigins))
	for _, o := range s.allowedOrigins {
		if o == "*" {
			patterns = append(patterns, o)
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
