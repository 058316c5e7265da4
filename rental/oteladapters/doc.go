// Package oteladapters implements the rental observability interfaces on top of OpenTelemetry.
//
// MetricsCollector maps durations to histograms, counters to counters and values to gauges.
// TracingCollector wraps a trace.Tracer. SlogBridgeLogger and OTelLogger are two
// ContextualLogger implementations; the slog bridge is the one to reach for unless direct
// control over log records is needed.
package oteladapters
