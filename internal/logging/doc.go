// Package logging assembles structured slog loggers and formatting helpers used
// across shelver.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so planner and executor code can
// tag log lines with request IDs, batch directories, and pipeline stages. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
