// Package observe provides the client's logging and telemetry surface.
//
// Logging is a side channel: the client emits structured
// (level, message, fields) events but never depends on log output for
// correctness. The default logger discards everything; supply a Logger
// to see request, retry, and token-refresh events.
//
// Telemetry uses OpenTelemetry. The client accepts Tracer and Meter
// providers and falls back to no-op implementations, so an application
// that does not configure OpenTelemetry pays nothing. Exporter setup is
// deliberately left to the embedding application.
package observe
