package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"shelver/internal/fileutil"
	"shelver/internal/logging"
	"shelver/internal/plan"
	"shelver/internal/services"
)

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 100 * time.Millisecond
)

var (
	// ErrActionsFailed reports that at least one action could not be applied.
	ErrActionsFailed = errors.New("plan actions failed")
	// ErrLibraryBusy reports that another execution holds the library lock.
	ErrLibraryBusy = errors.New("library is locked by another execution")
)

// Status is the outcome of a single action.
type Status string

const (
	StatusMoved    Status = "moved"
	StatusSkipped  Status = "skipped"
	StatusPlanned  Status = "planned"
	StatusFailed   Status = "failed"
	StatusNotRun   Status = "not_run"
	StatusConflict Status = "conflict"
)

// Result describes what happened to one plan action.
type Result struct {
	File        string `json:"file"`
	Target      string `json:"target,omitempty"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Status      Status `json:"status"`
	Bytes       int64  `json:"bytes,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Report summarizes an execution.
type Report struct {
	DryRun   bool          `json:"dry_run"`
	Results  []Result      `json:"results"`
	Moved    int           `json:"moved"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Options configures an Executor.
type Options struct {
	DownloadDir string
	LibraryDir  string
	// LockPath is the flock file guarding the library.
	LockPath string
	// Overwrite replaces existing targets instead of refusing the move.
	Overwrite bool
	// VerifyCopies hashes cross-device copies before removing the source.
	VerifyCopies bool
	// LockTimeout bounds the wait for the library lock. Zero means 5s.
	LockTimeout time.Duration
}

// Executor applies plans.
type Executor struct {
	opts   Options
	logger *slog.Logger
}

// New validates opts and returns an Executor.
func New(opts Options, logger *slog.Logger) (*Executor, error) {
	if opts.DownloadDir == "" || opts.LibraryDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "execute", "init", "download and library directories are required", nil)
	}
	if opts.LockPath == "" {
		return nil, services.Wrap(services.ErrConfiguration, "execute", "init", "lock path is required", nil)
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = defaultLockTimeout
	}
	return &Executor{opts: opts, logger: logging.NewComponentLogger(logger, "executor")}, nil
}

// Execute applies resp. With dryRun set, the plan is validated and checked
// against the filesystem but nothing moves and no lock is taken.
func (e *Executor) Execute(ctx context.Context, resp plan.Response, dryRun bool) (Report, error) {
	start := time.Now()
	report := Report{DryRun: dryRun, Results: make([]Result, len(resp.Plan))}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	logger := logging.WithContext(ctx, e.logger)

	if err := CheckPlan(resp); err != nil {
		return report, err
	}
	for i, action := range resp.Plan {
		report.Results[i] = Result{
			File:   action.File,
			Target: action.Target,
			Source: filepath.Join(e.opts.DownloadDir, filepath.FromSlash(action.File)),
			Status: StatusNotRun,
		}
		if action.Action == plan.ActionMove {
			report.Results[i].Destination = filepath.Join(e.opts.LibraryDir, filepath.FromSlash(action.Target))
		}
	}

	if !dryRun {
		if err := os.MkdirAll(e.opts.LibraryDir, 0o755); err != nil {
			return report, services.Wrap(services.ErrConfiguration, "execute", "prepare library", "cannot create library directory", err)
		}
		lock := flock.New(e.opts.LockPath)
		lockCtx, cancel := context.WithTimeout(ctx, e.opts.LockTimeout)
		locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
		cancel()
		if err != nil && ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return report, fmt.Errorf("acquire library lock: %w", err)
		}
		if !locked {
			return report, ErrLibraryBusy
		}
		defer func() {
			_ = lock.Unlock()
		}()
	}

	if err := e.preflight(&report, resp); err != nil {
		return report, err
	}

	for i, action := range resp.Plan {
		res := &report.Results[i]
		if action.Action == plan.ActionSkip {
			res.Status = StatusSkipped
			report.Skipped++
			continue
		}
		if res.Status == StatusConflict || res.Status == StatusFailed {
			report.Failed++
			continue
		}
		if dryRun {
			res.Status = StatusPlanned
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
		if e.opts.Overwrite {
			if err := os.RemoveAll(res.Destination); err != nil {
				res.Status, res.Error = StatusFailed, err.Error()
				report.Failed++
				continue
			}
		}
		if err := fileutil.MovePath(res.Source, res.Destination, e.opts.VerifyCopies); err != nil {
			res.Status, res.Error = StatusFailed, err.Error()
			report.Failed++
			logger.Warn("move failed",
				logging.String("file", action.File),
				logging.String("target", action.Target),
				logging.Error(err),
				logging.String(logging.FieldEventType, "move_failed"),
			)
			continue
		}
		res.Status = StatusMoved
		report.Moved++
		logger.Debug("moved", logging.String("file", action.File), logging.String("target", action.Target))
	}

	report.Duration = time.Since(start)
	logger.Info("plan executed",
		logging.Bool("dry_run", dryRun),
		logging.Int("moved", report.Moved),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("duration", report.Duration),
	)
	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrActionsFailed, report.Failed, len(resp.Plan))
	}
	return report, nil
}

// preflight stats every move, marks conflicts, and checks the library has
// room for data that must be copied across filesystems.
func (e *Executor) preflight(report *Report, resp plan.Response) error {
	var needed int64
	crossDevice := false
	if same, err := fileutil.SameDevice(e.opts.DownloadDir, e.opts.LibraryDir); err == nil {
		crossDevice = !same
	}
	for i, action := range resp.Plan {
		if action.Action != plan.ActionMove {
			continue
		}
		res := &report.Results[i]
		if _, err := os.Lstat(res.Source); err != nil {
			res.Status, res.Error = StatusFailed, fmt.Sprintf("source: %v", err)
			continue
		}
		size, err := fileutil.TreeSize(res.Source)
		if err != nil {
			res.Status, res.Error = StatusFailed, fmt.Sprintf("size source: %v", err)
			continue
		}
		res.Bytes = size
		if _, err := os.Lstat(res.Destination); err == nil && !e.opts.Overwrite {
			res.Status, res.Error = StatusConflict, "target already exists"
			continue
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			res.Status, res.Error = StatusFailed, fmt.Sprintf("target: %v", err)
			continue
		}
		needed += size
	}
	if !crossDevice || needed == 0 {
		return nil
	}
	free, err := fileutil.FreeBytes(e.opts.LibraryDir)
	if err != nil {
		return nil
	}
	if uint64(needed) > free {
		return services.Wrap(services.ErrValidation, "execute", "free space",
			fmt.Sprintf("library needs %d bytes but only %d are free", needed, free), nil)
	}
	return nil
}

// CheckPlan validates a plan without its original batch: every source must
// be a local relative path, every move must land under one category, and
// sources must neither repeat nor nest.
func CheckPlan(resp plan.Response) error {
	if len(resp.Plan) == 0 {
		return fmt.Errorf("%w: plan has no actions", plan.ErrInvalidPlan)
	}
	batch := plan.Batch{Files: make([]string, 0, len(resp.Plan))}
	rules := plan.Rules{Category: plan.Movie}
	placed := false
	for _, action := range resp.Plan {
		if !filepath.IsLocal(filepath.FromSlash(action.File)) || path.Clean(action.File) != action.File {
			return fmt.Errorf("%w: source %q is not a clean relative path", plan.ErrInvalidPlan, action.File)
		}
		batch.Files = append(batch.Files, action.File)
		if action.Action == plan.ActionMove && !placed {
			head, _, _ := strings.Cut(action.Target, "/")
			category, err := plan.ParseCategory(head)
			if err != nil {
				return fmt.Errorf("%w: target %q: %v", plan.ErrInvalidPlan, action.Target, err)
			}
			rules.Category = category
			placed = true
		}
	}
	return resp.Validate(batch, rules)
}
