package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shelver/internal/plan"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("plan run not found")

// ExecutionStatus tracks whether a run's plan was applied.
type ExecutionStatus string

const (
	ExecutionNone     ExecutionStatus = "none"
	ExecutionDryRun   ExecutionStatus = "dry_run"
	ExecutionApplied  ExecutionStatus = "applied"
	ExecutionPartial  ExecutionStatus = "partial"
	ExecutionRejected ExecutionStatus = "rejected"
)

// Run is one recorded plan request.
type Run struct {
	ID              string            `json:"id"`
	RequestID       string            `json:"request_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	BatchDir        string            `json:"batch_dir,omitempty"`
	Files           []string          `json:"files"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Category        string            `json:"category,omitempty"`
	Language        string            `json:"language,omitempty"`
	Route           string            `json:"route,omitempty"`
	State           string            `json:"state"`
	Plan            *plan.Response    `json:"plan,omitempty"`
	Error           string            `json:"error,omitempty"`
	Duration        time.Duration     `json:"duration"`
	Execution       ExecutionStatus   `json:"execution"`
	ExecutedAt      time.Time         `json:"executed_at,omitzero"`
	ExecutionReport json.RawMessage   `json:"execution_report,omitempty"`
}

// Moves counts the move actions in the run's plan.
func (r *Run) Moves() int {
	if r.Plan == nil {
		return 0
	}
	return len(r.Plan.Moves())
}

// NewRun describes a finished plan request to record.
type NewRun struct {
	RequestID string
	Batch     plan.Batch
	Category  string
	Language  string
	Route     string
	State     string
	Plan      *plan.Response
	Err       error
	Duration  time.Duration
}

// ListOptions filters List results.
type ListOptions struct {
	Limit    int
	Category string
	// FailedOnly returns runs that produced no plan.
	FailedOnly bool
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, request_id, created_at, updated_at, batch_dir, files_json, metadata_json, category, language, route, state, plan_json, error_message, duration_ms, execution_status, executed_at, execution_json"

// Record stores a plan run and returns it with its generated id.
func (s *Store) Record(ctx context.Context, in NewRun) (*Run, error) {
	files, err := json.Marshal(in.Batch.Files)
	if err != nil {
		return nil, fmt.Errorf("marshal files: %w", err)
	}
	var metadata, planJSON, errMsg any
	if len(in.Batch.Metadata) > 0 {
		data, err := json.Marshal(in.Batch.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = string(data)
	}
	if in.Plan != nil {
		data, err := json.Marshal(in.Plan)
		if err != nil {
			return nil, fmt.Errorf("marshal plan: %w", err)
		}
		planJSON = string(data)
	}
	if in.Err != nil {
		errMsg = in.Err.Error()
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(timeLayout)
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO plan_runs (
            id, request_id, created_at, updated_at, batch_dir, files_json, metadata_json,
            category, language, route, state, plan_json, error_message, duration_ms, execution_status
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		nullableString(in.RequestID),
		timestamp,
		timestamp,
		nullableString(in.Batch.BatchDir()),
		string(files),
		metadata,
		nullableString(in.Category),
		nullableString(in.Language),
		nullableString(in.Route),
		in.State,
		planJSON,
		errMsg,
		in.Duration.Milliseconds(),
		string(ExecutionNone),
	); err != nil {
		return nil, fmt.Errorf("insert plan run: %w", err)
	}
	return s.Get(ctx, id)
}

// RecordExecution attaches an execution outcome and report to a run.
func (s *Store) RecordExecution(ctx context.Context, id string, status ExecutionStatus, report any) error {
	var reportJSON any
	if report != nil {
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal execution report: %w", err)
		}
		reportJSON = string(data)
	}
	timestamp := time.Now().UTC().Format(timeLayout)
	res, err := s.execWithRetry(ctx,
		`UPDATE plan_runs SET execution_status = ?, executed_at = ?, execution_json = ?, updated_at = ? WHERE id = ?`,
		string(status), timestamp, reportJSON, timestamp, id,
	)
	if err != nil {
		return fmt.Errorf("update execution: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM plan_runs WHERE id = ?", strings.TrimSpace(id))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Run, error) {
	query := "SELECT " + runColumns + " FROM plan_runs"
	var (
		where []string
		args  []any
	)
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.FailedOnly {
		where = append(where, "plan_json IS NULL")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plan runs: %w", err)
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune deletes runs created before cutoff and reports how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM plan_runs WHERE created_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune plan runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		requestID    sql.NullString
		createdRaw   string
		updatedRaw   string
		batchDir     sql.NullString
		filesRaw     string
		metadataRaw  sql.NullString
		category     sql.NullString
		language     sql.NullString
		route        sql.NullString
		planRaw      sql.NullString
		errorMessage sql.NullString
		durationMS   int64
		execution    string
		executedRaw  sql.NullString
		reportRaw    sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&requestID,
		&createdRaw,
		&updatedRaw,
		&batchDir,
		&filesRaw,
		&metadataRaw,
		&category,
		&language,
		&route,
		&run.State,
		&planRaw,
		&errorMessage,
		&durationMS,
		&execution,
		&executedRaw,
		&reportRaw,
	); err != nil {
		return nil, err
	}

	run.RequestID = requestID.String
	run.CreatedAt = parseTime(createdRaw)
	run.UpdatedAt = parseTime(updatedRaw)
	run.BatchDir = batchDir.String
	run.Category = category.String
	run.Language = language.String
	run.Route = route.String
	run.Error = errorMessage.String
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Execution = ExecutionStatus(execution)
	if executedRaw.Valid {
		run.ExecutedAt = parseTime(executedRaw.String)
	}
	if err := json.Unmarshal([]byte(filesRaw), &run.Files); err != nil {
		return nil, fmt.Errorf("decode files for %s: %w", run.ID, err)
	}
	if metadataRaw.Valid {
		if err := json.Unmarshal([]byte(metadataRaw.String), &run.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", run.ID, err)
		}
	}
	if planRaw.Valid {
		var resp plan.Response
		if err := json.Unmarshal([]byte(planRaw.String), &resp); err != nil {
			return nil, fmt.Errorf("decode plan for %s: %w", run.ID, err)
		}
		run.Plan = &resp
	}
	if reportRaw.Valid {
		run.ExecutionReport = json.RawMessage(reportRaw.String)
	}
	return &run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
