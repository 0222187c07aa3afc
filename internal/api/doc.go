// Package api is the service layer shared by the CLI and the HTTP server.
//
// PlanService runs batches through the organizer, records each run in the
// plan history, applies plans with the executor, and converts history runs
// into transport-friendly DTOs.
//
// # Key Types
//
// PlanRequest/PlanResult: a batch in, a validated plan plus routing verdict out.
//
// ExecuteRequest/ExecuteResult: a plan (inline or by history run id) in, a
// per-action execution report out.
//
// RunSummary/RunDetail: history rows for listing and inspection.
//
// # Errors
//
// HTTPStatus maps the domain error taxonomy to HTTP status codes so every
// transport reports failures the same way.
package api
