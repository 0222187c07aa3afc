package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shelver/internal/executor"
	"shelver/internal/history"
	"shelver/internal/logging"
	"shelver/internal/organizer"
	"shelver/internal/plan"
	"shelver/internal/services"
)

// Planner runs batches through the routing state machine.
type Planner interface {
	Run(ctx context.Context, batch plan.Batch) (organizer.Outcome, error)
}

// Executor applies plans to disk.
type Executor interface {
	Execute(ctx context.Context, resp plan.Response, dryRun bool) (executor.Report, error)
}

// HistoryStore records and reads plan runs.
type HistoryStore interface {
	Record(ctx context.Context, in history.NewRun) (*history.Run, error)
	RecordExecution(ctx context.Context, id string, status history.ExecutionStatus, report any) error
	Get(ctx context.Context, id string) (*history.Run, error)
	List(ctx context.Context, opts history.ListOptions) ([]*history.Run, error)
}

// Notifier receives plan failures and completed executions.
type Notifier interface {
	NotifyPlanFailed(ctx context.Context, batchDir string, err error) error
	NotifyExecutionCompleted(ctx context.Context, batchDir string, moved, failed int, duration time.Duration) error
}

// PlanService exposes planning, execution, and history operations.
type PlanService struct {
	planner  Planner
	executor Executor
	history  HistoryStore
	notifier Notifier
	logger   *slog.Logger
}

// NewPlanService wires the service. executor and store may be nil, which
// disables execution and history respectively.
func NewPlanService(planner Planner, exec Executor, store HistoryStore, logger *slog.Logger) *PlanService {
	return &PlanService{
		planner:  planner,
		executor: exec,
		history:  store,
		logger:   logging.NewComponentLogger(logger, "plan-service"),
	}
}

// SetNotifier attaches a notifier. nil disables notifications.
func (s *PlanService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Plan classifies and plans a batch and records the run.
func (s *PlanService) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	if s == nil || s.planner == nil {
		return nil, services.Wrap(services.ErrConfiguration, "plan", "service", "planner not configured", nil)
	}
	batch := req.Batch()
	outcome, err := s.planner.Run(ctx, batch)
	runID := s.record(ctx, batch, outcome, err)
	if err != nil {
		if ctx.Err() == nil {
			s.notify(ctx, func(ctx context.Context, n Notifier) error {
				return n.NotifyPlanFailed(ctx, batch.BatchDir(), err)
			})
		}
		return nil, err
	}
	result := &PlanResult{
		Plan:       outcome.Response.Plan,
		RunID:      runID,
		Category:   outcome.Classification.Category.String(),
		Language:   outcome.Classification.Language,
		Route:      outcome.Route.String(),
		DurationMS: outcome.Duration.Milliseconds(),
	}
	if result.Plan == nil {
		result.Plan = []plan.PlanAction{}
	}
	return result, nil
}

func (s *PlanService) record(ctx context.Context, batch plan.Batch, outcome organizer.Outcome, planErr error) string {
	if s.history == nil {
		return ""
	}
	in := history.NewRun{
		Batch:    batch,
		State:    outcome.State.String(),
		Err:      planErr,
		Duration: outcome.Duration,
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		in.RequestID = id
	}
	if outcome.Classified {
		in.Category = outcome.Classification.Category.String()
		in.Language = outcome.Classification.Language
		in.Route = outcome.Route.String()
	}
	if planErr == nil {
		resp := outcome.Response
		in.Plan = &resp
	}
	// Recording must survive a cancelled request so failures stay visible.
	run, err := s.history.Record(context.WithoutCancel(ctx), in)
	if err != nil {
		logging.WithContext(ctx, s.logger).Warn("failed to record plan run",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_record_failed"),
		)
		return ""
	}
	return run.ID
}

// Execute applies a plan. When RunID is set and no inline plan is given, the
// recorded plan of that run is used and the outcome is written back to it.
func (s *PlanService) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	if s == nil || s.executor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "execute", "service", "executor not configured", nil)
	}
	resp := req.Plan
	if resp == nil {
		if req.RunID == "" {
			return nil, fmt.Errorf("%w: either plan or run_id is required", ErrBadRequest)
		}
		if s.history == nil {
			return nil, fmt.Errorf("%w: history is disabled; send the plan inline", ErrBadRequest)
		}
		run, err := s.history.Get(ctx, req.RunID)
		if err != nil {
			return nil, err
		}
		if run.Plan == nil {
			return nil, fmt.Errorf("%w: run %s produced no plan", ErrBadRequest, run.ID)
		}
		resp = run.Plan
	}

	report, execErr := s.executor.Execute(ctx, *resp, req.DryRun)
	result := &ExecuteResult{RunID: req.RunID, Report: report}
	if execErr != nil {
		result.Error = execErr.Error()
	}
	if !report.DryRun && report.Moved+report.Failed > 0 {
		batchDir := planBatchDir(*resp)
		s.notify(ctx, func(ctx context.Context, n Notifier) error {
			return n.NotifyExecutionCompleted(ctx, batchDir, report.Moved, report.Failed, report.Duration)
		})
	}
	if req.RunID != "" && s.history != nil {
		status := executionStatus(report, execErr)
		if err := s.history.RecordExecution(context.WithoutCancel(ctx), req.RunID, status, report); err != nil && !errors.Is(err, history.ErrNotFound) {
			logging.WithContext(ctx, s.logger).Warn("failed to record execution",
				logging.String("run_id", req.RunID),
				logging.Error(err),
				logging.String(logging.FieldEventType, "history_record_failed"),
			)
		}
	}
	return result, execErr
}

// notify delivers a notification outside the request's cancellation and
// logs delivery failures.
func (s *PlanService) notify(ctx context.Context, send func(context.Context, Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := send(context.WithoutCancel(ctx), s.notifier); err != nil {
		logging.WithContext(ctx, s.logger).Warn("notification failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "notification_failed"),
		)
	}
}

func planBatchDir(resp plan.Response) string {
	if len(resp.Plan) == 0 {
		return ""
	}
	return plan.Batch{Files: []string{resp.Plan[0].File}}.BatchDir()
}

func executionStatus(report executor.Report, err error) history.ExecutionStatus {
	switch {
	case report.DryRun:
		return history.ExecutionDryRun
	case err == nil:
		return history.ExecutionApplied
	case report.Moved > 0:
		return history.ExecutionPartial
	default:
		return history.ExecutionRejected
	}
}

// History lists recorded runs, newest first.
func (s *PlanService) History(ctx context.Context, opts history.ListOptions) ([]RunSummary, error) {
	if s == nil || s.history == nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "service", "history not configured", nil)
	}
	runs, err := s.history.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return FromRuns(runs), nil
}

// Run returns a single recorded run.
func (s *PlanService) Run(ctx context.Context, id string) (*RunDetail, error) {
	if s == nil || s.history == nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "service", "history not configured", nil)
	}
	run, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := DetailFromRun(run)
	return &detail, nil
}
