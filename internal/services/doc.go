// Package services defines shared helpers for the planners and the external
// integrations they call.
//
// Key responsibilities:
//   - Context helpers that stamp request identifiers, batch directories, and
//     pipeline stage names so log lines can be correlated per request.
//   - Structured error markers plus the Wrap helper that keep collaborator
//     failures classifiable (rejected input vs failed dependency).
//
// Use these helpers when wiring new collaborators so error handling and
// observability stay uniform across the pipeline.
package services
