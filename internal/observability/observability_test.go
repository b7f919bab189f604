package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogendra123/git-xrays/internal/observability"
)

func TestNewProviders_WiresTracerMeterLogger(t *testing.T) {
	t.Parallel()

	providers, err := observability.NewProviders(context.Background(), "git-xrays-test", "0.0.0-test", slog.LevelInfo, "json")
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.NotNil(t, providers.Shutdown)

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestNewProviders_SpanIsValid(t *testing.T) {
	t.Parallel()

	providers, err := observability.NewProviders(context.Background(), "git-xrays-test", "0.0.0-test", slog.LevelInfo, "json")
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	ctx, span := providers.Tracer.Start(context.Background(), "test-op")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.True(t, span.SpanContext().IsValid())
}

func TestTracingHandler_InjectsTraceIDFromSpanContext(t *testing.T) {
	t.Parallel()

	providers, err := observability.NewProviders(context.Background(), "git-xrays-test", "0.0.0-test", slog.LevelInfo, "json")
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	var buf bytes.Buffer

	handler := observability.NewTracingHandler(slog.NewJSONHandler(&buf, nil), "git-xrays-test")
	logger := slog.New(handler)

	ctx, span := providers.Tracer.Start(context.Background(), "logged-op")
	logger.InfoContext(ctx, "hello")
	span.End()

	assert.Contains(t, buf.String(), "trace_id")
	assert.Contains(t, buf.String(), span.SpanContext().TraceID().String())
}

func TestMeter_RecordStageAndRunDoNotPanic(t *testing.T) {
	t.Parallel()

	meter, _, err := observability.NewMeter()
	require.NoError(t, err)

	ctx := context.Background()
	meter.RecordStage(ctx, "hotspot", 0.125, true)
	meter.RecordRun(ctx, true)
}
