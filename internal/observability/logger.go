// Package observability wires structured logging, OpenTelemetry tracing,
// and Prometheus-backed metrics for a single analysis run, grounded on
// the teacher pack's pkg/observability (trimmed to the exporters this
// module actually depends on: Prometheus for metrics, an in-process
// tracer provider for spans).
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
)

// TracingHandler is an slog.Handler that injects the active span's
// trace_id/span_id into every log record, and pre-attaches the service
// name so it survives WithGroup calls.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner, pre-attaching the service attribute.
func NewTracingHandler(inner slog.Handler, service string) *TracingHandler {
	return &TracingHandler{inner: inner.WithAttrs([]slog.Attr{slog.String(attrService, service)})}
}

// Enabled delegates to the inner handler.
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds trace context attributes from the span in ctx, then delegates.
func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	return h.inner.Handle(ctx, record)
}

// WithAttrs returns a new TracingHandler with additional attributes.
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup returns a new TracingHandler with a group prefix.
func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: h.inner.WithGroup(name)}
}

// NewLogger builds the service's structured logger: text handler when
// format is "text", JSON otherwise, both wrapped in TracingHandler.
func NewLogger(level slog.Level, format, service string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler

	if format == "text" {
		base = slog.NewTextHandler(logOutput(), opts)
	} else {
		base = slog.NewJSONHandler(logOutput(), opts)
	}

	return slog.New(NewTracingHandler(base, service))
}

func logOutput() io.Writer {
	return os.Stderr
}
