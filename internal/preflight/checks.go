package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"shelver/internal/config"
	"shelver/internal/fileutil"
	"shelver/internal/services/llm"
	"shelver/internal/services/tmdb"
)

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, cfg config.LLM) Result {
	const name = "LLM"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", client.Model())}
}

// CheckTMDB runs a single known search to confirm the key is accepted.
func CheckTMDB(ctx context.Context, cfg config.TMDB) Result {
	const name = "TMDB"
	client, err := tmdb.New(cfg.APIKey, cfg.BaseURL, cfg.Language)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := client.SearchMovie(checkCtx, "Heat", 1995); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if err := fileutil.CheckWritable(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSameFilesystem reports whether moves from the download directory to
// the library are renames. A cross-device layout still works but every move
// copies, so the check passes with the free space noted.
func CheckSameFilesystem(downloadDir, libraryDir string) Result {
	const name = "Move strategy"
	same, err := fileutil.SameDevice(downloadDir, libraryDir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unknown (%v)", err)}
	}
	if same {
		return Result{Name: name, Passed: true, Detail: "rename (same filesystem)"}
	}
	free, err := fileutil.FreeBytes(libraryDir)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: "copy + remove (cross-device)"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("copy + remove (cross-device, %s free)", humanize.IBytes(free))}
}

// summarizeError produces a human-readable summary for service check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
