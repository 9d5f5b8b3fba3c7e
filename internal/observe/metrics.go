// Package observe provides application-wide observability primitives for
// Gambit: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported to
// Prometheus by the [Provider] that [InitProvider] builds. [DefaultMetrics]
// binds to the global meter provider; tests use [NewMetrics] with a
// ManualReader-backed provider instead.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Dialogue ---

	// TurnsSubmitted counts accepted player messages. Use with attribute:
	//   attribute.String("intent", ...) once the turn is classified.
	TurnsSubmitted metric.Int64Counter

	// TurnsRejected counts refused submissions. Use with attribute:
	//   attribute.String("reason", ...) ("empty_content", "session_busy", "session_closed")
	TurnsRejected metric.Int64Counter

	// ReplyDuration tracks the time from submission to the coach reply,
	// including the configured reply delay.
	ReplyDuration metric.Float64Histogram

	// ActiveSessions tracks the number of open dialogue sessions.
	ActiveSessions metric.Int64UpDownCounter

	// StreamSubscribers tracks the number of connected transcript streams.
	StreamSubscribers metric.Int64UpDownCounter

	// --- Profile ---

	// ProfileReloads counts coaching profile reload attempts. Use with attribute:
	//   attribute.String("status", ...) ("ok", "error")
	ProfileReloads metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// replyBuckets defines histogram bucket boundaries (in seconds) around the
// default one second reply delay.
var replyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 2, 5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(instrumentationScope)
	var err error
	met := &Metrics{}

	if met.TurnsSubmitted, err = m.Int64Counter("gambit.turns.submitted",
		metric.WithDescription("Total accepted player messages by intent."),
	); err != nil {
		return nil, err
	}
	if met.TurnsRejected, err = m.Int64Counter("gambit.turns.rejected",
		metric.WithDescription("Total rejected player messages by reason."),
	); err != nil {
		return nil, err
	}
	if met.ReplyDuration, err = m.Float64Histogram("gambit.reply.duration",
		metric.WithDescription("Time from player message to coach reply."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(replyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("gambit.active_sessions",
		metric.WithDescription("Number of open dialogue sessions."),
	); err != nil {
		return nil, err
	}
	if met.StreamSubscribers, err = m.Int64UpDownCounter("gambit.stream.subscribers",
		metric.WithDescription("Number of connected transcript streams."),
	); err != nil {
		return nil, err
	}
	if met.ProfileReloads, err = m.Int64Counter("gambit.profile.reloads",
		metric.WithDescription("Total coaching profile reloads by status."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("gambit.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordTurnSubmitted records an accepted player message classified as intent.
func (m *Metrics) RecordTurnSubmitted(ctx context.Context, intent string) {
	m.TurnsSubmitted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("intent", intent)),
	)
}

// RecordTurnRejected records a refused submission.
func (m *Metrics) RecordTurnRejected(ctx context.Context, reason string) {
	m.TurnsRejected.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordProfileReload records a profile reload attempt.
func (m *Metrics) RecordProfileReload(ctx context.Context, status string) {
	m.ProfileReloads.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}
