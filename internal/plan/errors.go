package plan

import "errors"

var (
	// ErrEmptyBatch rejects a batch with no files before any planning work.
	ErrEmptyBatch = errors.New("batch has no files")
	// ErrInvalidBatch rejects file lists that do not share one batch directory.
	ErrInvalidBatch = errors.New("invalid batch")
	// ErrClassificationFailed wraps any failure reported by a classifier.
	ErrClassificationFailed = errors.New("classification failed")
	// ErrInvalidCategory marks a category value outside the closed enumeration.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrUnroutedCategory marks a recognized category that has no planner.
	ErrUnroutedCategory = errors.New("category has no planner")
	// ErrOverlappingPlanPaths marks a plan where one source path contains another.
	ErrOverlappingPlanPaths = errors.New("plan contains overlapping paths")
	// ErrInvalidPlan marks planner output that breaks the action contract.
	ErrInvalidPlan = errors.New("invalid plan")
)
