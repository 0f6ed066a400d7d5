package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/skillsenselab/asrd/logger"
)

// PipelineMetrics holds the instrument set for the transcription pipeline.
// Before InitMeter runs, the global provider is a no-op and recording is
// free; nothing here requires the exporter to be configured.
type PipelineMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	spanFailures    metric.Int64Counter
	degradations    metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on the global meter.
// Instrument creation failures are logged and the affected instrument
// stays nil; recording methods tolerate that.
func NewPipelineMetrics() *PipelineMetrics {
	meter := Meter("asrd/pipeline")
	pm := &PipelineMetrics{}
	var err error

	if pm.requestTotal, err = meter.Int64Counter("transcribe.requests.total",
		metric.WithDescription("Completed transcription requests")); err != nil {
		logger.Warn("creating transcribe.requests.total", logger.Fields("error", err.Error()))
	}
	if pm.requestDuration, err = meter.Float64Histogram("transcribe.duration",
		metric.WithDescription("End-to-end transcription duration in seconds"),
		metric.WithUnit("s")); err != nil {
		logger.Warn("creating transcribe.duration", logger.Fields("error", err.Error()))
	}
	if pm.spanFailures, err = meter.Int64Counter("transcribe.span_failures.total",
		metric.WithDescription("Spans degraded to empty segments after retry")); err != nil {
		logger.Warn("creating transcribe.span_failures.total", logger.Fields("error", err.Error()))
	}
	if pm.degradations, err = meter.Int64Counter("transcribe.degradations.total",
		metric.WithDescription("Recoverable stage failures by stage")); err != nil {
		logger.Warn("creating transcribe.degradations.total", logger.Fields("error", err.Error()))
	}
	return pm
}

// ObserveRequest records one completed transcription call.
func (pm *PipelineMetrics) ObserveRequest(ctx context.Context, duration time.Duration, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	if pm.requestTotal != nil {
		pm.requestTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
	if pm.requestDuration != nil {
		pm.requestDuration.Record(ctx, duration.Seconds())
	}
}

// CountSpanFailure records a span degraded to an empty segment.
func (pm *PipelineMetrics) CountSpanFailure(ctx context.Context) {
	if pm.spanFailures != nil {
		pm.spanFailures.Add(ctx, 1)
	}
}

// CountDegradation records a recoverable stage failure.
func (pm *PipelineMetrics) CountDegradation(ctx context.Context, stage string) {
	if pm.degradations != nil {
		pm.degradations.Add(ctx, 1, metric.WithAttributes(attribute.String(logger.FieldStage, stage)))
	}
}
