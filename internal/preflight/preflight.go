package preflight

import (
	"context"

	"shelver/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the directory checks and, when probeServices is set, the
// LLM and TMDB reachability checks.
func RunAll(ctx context.Context, cfg *config.Config, probeServices bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Download directory", cfg.Paths.DownloadDir),
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckSameFilesystem(cfg.Paths.DownloadDir, cfg.Paths.LibraryDir),
	}
	if !probeServices {
		return results
	}

	if cfg.LLMEnabled() {
		results = append(results, CheckLLM(ctx, cfg.LLM))
	} else {
		results = append(results, Result{Name: "LLM", Passed: cfg.Classifier.Mode == config.ClassifierRules, Detail: "API key missing (rules classifier only)"})
	}
	if cfg.TMDBEnabled() {
		results = append(results, CheckTMDB(ctx, cfg.TMDB))
	} else {
		results = append(results, Result{Name: "TMDB", Passed: true, Detail: "Disabled"})
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
