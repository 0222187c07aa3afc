// Package organizer turns a download batch into a move plan.
//
// The Orchestrator is a small state machine (received, classified, planned,
// or failed) that asks a Classifier for the batch's category and language,
// looks the category up in a fixed route table, and dispatches to either the
// deterministic directory-grouping planner or one of the rich planners.
// Whatever a planner returns is validated before it leaves the package, so
// callers only ever see complete, non-overlapping plans.
//
// The Orchestrator holds no per-request state and is safe for concurrent use.
// It never retries: classifier and planner failures, invalid categories, and
// cancellation all end the request with an error.
package organizer
