package api

import (
	"encoding/json"
	"time"

	"shelver/internal/executor"
	"shelver/internal/history"
	"shelver/internal/plan"
)

// PlanRequest is a batch submitted for planning.
type PlanRequest struct {
	Files    []string          `json:"files"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Batch converts the request into a plan batch.
func (r PlanRequest) Batch() plan.Batch {
	return plan.Batch{Files: r.Files, Metadata: r.Metadata}
}

// PlanResult is a successful planning response. Plan stays the first field so
// the wire shape starts with the plan array.
type PlanResult struct {
	Plan       []plan.PlanAction `json:"plan"`
	RunID      string            `json:"run_id,omitempty"`
	Category   string            `json:"category"`
	Language   string            `json:"language,omitempty"`
	Route      string            `json:"route"`
	DurationMS int64             `json:"duration_ms"`
}

// Response returns the plan in its core shape.
func (r PlanResult) Response() plan.Response {
	return plan.Response{Plan: r.Plan}
}

// ExecuteRequest applies either an inline plan or the plan of a recorded run.
type ExecuteRequest struct {
	RunID  string         `json:"run_id,omitempty"`
	Plan   *plan.Response `json:"plan,omitempty"`
	DryRun bool           `json:"dry_run,omitempty"`
}

// ExecuteResult carries the executor report.
type ExecuteResult struct {
	RunID  string          `json:"run_id,omitempty"`
	Report executor.Report `json:"report"`
	Error  string          `json:"error,omitempty"`
}

// RunSummary is one history row in list views.
type RunSummary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	BatchDir   string    `json:"batch_dir,omitempty"`
	Files      int       `json:"files"`
	Category   string    `json:"category,omitempty"`
	Language   string    `json:"language,omitempty"`
	State      string    `json:"state"`
	Moves      int       `json:"moves"`
	Execution  string    `json:"execution"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// RunDetail is a full history record.
type RunDetail struct {
	RunSummary
	RequestID       string            `json:"request_id,omitempty"`
	Route           string            `json:"route,omitempty"`
	FileList        []string          `json:"file_list"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Plan            []plan.PlanAction `json:"plan,omitempty"`
	ExecutedAt      *time.Time        `json:"executed_at,omitempty"`
	ExecutionReport json.RawMessage   `json:"execution_report,omitempty"`
}

// FromRun converts a history run into its summary DTO.
func FromRun(run *history.Run) RunSummary {
	if run == nil {
		return RunSummary{}
	}
	return RunSummary{
		ID:         run.ID,
		CreatedAt:  run.CreatedAt,
		BatchDir:   run.BatchDir,
		Files:      len(run.Files),
		Category:   run.Category,
		Language:   run.Language,
		State:      run.State,
		Moves:      run.Moves(),
		Execution:  string(run.Execution),
		Error:      run.Error,
		DurationMS: run.Duration.Milliseconds(),
	}
}

// FromRuns converts a slice of runs, preserving order.
func FromRuns(runs []*history.Run) []RunSummary {
	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, FromRun(run))
	}
	return out
}

// DetailFromRun converts a history run into its detail DTO.
func DetailFromRun(run *history.Run) RunDetail {
	if run == nil {
		return RunDetail{}
	}
	detail := RunDetail{
		RunSummary:      FromRun(run),
		RequestID:       run.RequestID,
		Route:           run.Route,
		FileList:        run.Files,
		Metadata:        run.Metadata,
		ExecutionReport: run.ExecutionReport,
	}
	if run.Plan != nil {
		detail.Plan = run.Plan.Plan
	}
	if !run.ExecutedAt.IsZero() {
		executed := run.ExecutedAt
		detail.ExecutedAt = &executed
	}
	return detail
}
