// Package observability provides OpenTelemetry tracing and metrics for the
// transcription service: OTLP exporter setup and the pipeline instrument
// set (request counts, stage durations, degradation counters).
package observability
