// Package daemon runs the long-lived shelver HTTP server.
//
// A Daemon holds an exclusive lock so only one server runs per state
// directory, serves the planning API on the configured bind address, and
// shuts down gracefully when its context ends. Routes:
//
//	GET  /healthz            liveness, no auth
//	POST /v1/plan            classify and plan a batch
//	POST /v1/execute         apply a plan (inline or by run id)
//	GET  /v1/history         list recorded runs
//	GET  /v1/history/{id}    inspect one run
//
// When an API token is configured every /v1 route requires
// "Authorization: Bearer <token>".
package daemon
