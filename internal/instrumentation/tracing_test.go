package instrumentation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTracingTestProvider(t *testing.T) (*Provider, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return provider, ctx
}

func TestStartSpan(t *testing.T) {
	_, ctx := newTracingTestProvider(t)

	spanCtx, span := StartSpan(ctx, "refresh.run")
	defer span.End()

	if spanCtx == nil {
		t.Error("expected context to be non-nil")
	}
	if span == nil {
		t.Error("expected span to be non-nil")
	}
}

func TestStartToolSpan(t *testing.T) {
	_, ctx := newTracingTestProvider(t)

	spanCtx, span := StartToolSpan(ctx, "tasks_list")
	defer span.End()

	if spanCtx == nil {
		t.Error("expected context to be non-nil")
	}
	if span == nil {
		t.Error("expected span to be non-nil")
	}
}

func TestStartClientSpan(t *testing.T) {
	_, ctx := newTracingTestProvider(t)

	spanCtx, span := StartClientSpan(ctx, "gmail", "list")
	defer span.End()

	if spanCtx == nil {
		t.Error("expected context to be non-nil")
	}
	if span == nil {
		t.Error("expected span to be non-nil")
	}
}

func TestSetSpanError(t *testing.T) {
	_, ctx := newTracingTestProvider(t)

	_, span := StartSpan(ctx, "refresh.run")

	// Should not panic
	SetSpanError(span, errors.New("fetch failed"))
	SetSpanError(span, nil) // nil error should be safe
	span.End()
}

func TestSetSpanSuccess(t *testing.T) {
	_, ctx := newTracingTestProvider(t)

	_, span := StartSpan(ctx, "refresh.run")

	// Should not panic
	SetSpanSuccess(span)
	span.End()
}

func TestGetTraceID_NoSpan(t *testing.T) {
	ctx := context.Background()
	traceID := GetTraceID(ctx)
	if traceID != "" {
		t.Errorf("expected empty trace ID for context without span, got %q", traceID)
	}
}
