package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "git-xrays"

// Meter holds the instruments git-xrays records during an analysis run:
// one histogram per pipeline stage's wall-clock duration, and a counter
// of completed runs labeled by outcome.
type Meter struct {
	PipelineDuration metric.Float64Histogram
	RunsTotal        metric.Int64Counter
	FilesAnalyzed    metric.Int64Counter
}

// NewMeter registers a Prometheus exporter as the OTel metric reader and
// builds the instruments used across pipelines. The exporter is returned
// to the caller; no HTTP /metrics endpoint is served from it.
func NewMeter() (*Meter, *prometheus.Exporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)

	duration, err := meter.Float64Histogram(
		"git_xrays_pipeline_duration_seconds",
		metric.WithDescription("wall-clock duration of a single pipeline stage"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create pipeline duration histogram: %w", err)
	}

	runs, err := meter.Int64Counter(
		"git_xrays_runs_total",
		metric.WithDescription("completed analysis runs, labeled by outcome"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create runs counter: %w", err)
	}

	files, err := meter.Int64Counter(
		"git_xrays_files_analyzed_total",
		metric.WithDescription("files processed across all pipeline stages"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create files counter: %w", err)
	}

	return &Meter{PipelineDuration: duration, RunsTotal: runs, FilesAnalyzed: files}, exporter, nil
}

// RecordStage records a pipeline stage's duration in seconds, labeled by
// its name and whether it succeeded.
func (m *Meter) RecordStage(ctx context.Context, stage string, seconds float64, ok bool) {
	if m == nil {
		return
	}

	m.PipelineDuration.Record(ctx, seconds, metric.WithAttributes(
		stageAttr(stage), okAttr(ok),
	))
}

// RecordRun increments the completed-run counter labeled by outcome.
func (m *Meter) RecordRun(ctx context.Context, ok bool) {
	if m == nil {
		return
	}

	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(okAttr(ok)))
}

func stageAttr(stage string) attribute.KeyValue {
	return attribute.String("stage", stage)
}

func okAttr(ok bool) attribute.KeyValue {
	return attribute.Bool("ok", ok)
}
