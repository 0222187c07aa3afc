// Package logs reads shelver's log file for "shelver logs".
//
// Tail returns the last N lines (negative offset) or everything after a byte
// offset, optionally waiting for new lines, and can keep only lines that
// contain a substring such as a run's correlation id or batch directory.
// Memory stays bounded by the line limit regardless of file size.
package logs
