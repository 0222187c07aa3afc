// Package history persists plan runs in SQLite.
//
// Every plan request (CLI or API) is recorded with its batch, the routing
// verdict, the produced plan or failure, and later its execution status, so
// operators can inspect what shelver proposed and what it applied. The store
// uses the pure-Go modernc.org/sqlite driver in WAL mode and retries writes
// that hit SQLITE_BUSY.
package history
