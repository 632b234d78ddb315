// Package tracing integrates OpenTelemetry with the dispatcher to provide
// spans for every compound dispatch and its phases. All instrumentation is
// kept in a separate package; without an installed provider spans are no-op.
package tracing
