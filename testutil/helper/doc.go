// Package helper provides test doubles shared across the rental packages: a slog handler that
// captures log records, and spies for the metrics and tracing collector interfaces.
package helper
