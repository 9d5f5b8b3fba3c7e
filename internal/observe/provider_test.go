package observe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitProvider(t *testing.T) {
	prevMP, prevTP, prevProp := otel.GetMeterProvider(), otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetMeterProvider(prevMP)
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	spans := tracetest.NewInMemoryExporter()
	p, err := InitProvider(context.Background(), ProviderConfig{
		ServiceVersion: "test",
		TraceExporter:  spans,
		Registry:       prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}

	ctx := context.Background()
	p.Metrics().RecordTurnSubmitted(ctx, "endgame")
	p.Metrics().RecordTurnRejected(ctx, "session_busy")
	_, span := StartSpan(ctx, "dialogue.reply")
	span.End()

	rec := httptest.NewRecorder()
	p.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	for _, want := range []string{
		"gambit_turns_submitted_total",
		`intent="endgame"`,
		"gambit_turns_rejected_total",
		`reason="session_busy"`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics output missing %q", want)
		}
	}

	if _, ok := otel.GetTextMapPropagator().(propagation.TraceContext); !ok {
		t.Errorf("global propagator = %T, want TraceContext", otel.GetTextMapPropagator())
	}

	if err := p.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}
	got := spans.GetSpans()
	if len(got) != 1 || got[0].Name != "dialogue.reply" {
		t.Fatalf("exported spans = %v, want dialogue.reply", got)
	}
	var service string
	for _, kv := range got[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	if service != "gambit" {
		t.Errorf("service.name = %q, want gambit", service)
	}

	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
