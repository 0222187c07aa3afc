// Package executor applies organization plans to disk.
//
// Sources resolve under the download directory and targets under the library
// directory. A plan is validated as a whole before anything moves, and all
// writes happen while holding an exclusive lock on the library so concurrent
// executions (CLI and API) never interleave. Each action reports its own
// outcome; a failed move does not stop the remaining ones.
package executor
