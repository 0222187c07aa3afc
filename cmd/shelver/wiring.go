package main

import (
	"fmt"
	"log/slog"

	"shelver/internal/api"
	"shelver/internal/classify"
	"shelver/internal/config"
	"shelver/internal/executor"
	"shelver/internal/history"
	"shelver/internal/notifications"
	"shelver/internal/organizer"
	"shelver/internal/richplan"
	"shelver/internal/services/llm"
	"shelver/internal/services/tmdb"
)

// serviceOptions selects which optional collaborators a command needs.
type serviceOptions struct {
	planner   bool
	executor  bool
	history   bool
}

// runtime holds the service plus whatever must be closed afterwards.
type runtime struct {
	service *api.PlanService
	store   *history.Store
}

func (r *runtime) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Close()
}

func buildRuntime(cfg *config.Config, logger *slog.Logger, opts serviceOptions) (*runtime, error) {
	rt := &runtime{}

	var planner api.Planner
	if opts.planner {
		orchestrator, err := buildOrchestrator(cfg, logger)
		if err != nil {
			return nil, err
		}
		planner = orchestrator
	}

	var exec api.Executor
	if opts.executor {
		e, err := executor.New(executor.Options{
			DownloadDir:  cfg.Paths.DownloadDir,
			LibraryDir:   cfg.Paths.LibraryDir,
			LockPath:     cfg.LibraryLockPath(),
			Overwrite:    cfg.Execution.OverwriteExisting,
			VerifyCopies: cfg.Execution.VerifyCopies,
		}, logger)
		if err != nil {
			return nil, err
		}
		exec = e
	}

	var store api.HistoryStore
	if opts.history {
		s, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		rt.store = s
		store = s
	}

	rt.service = api.NewPlanService(planner, exec, store, logger)
	rt.service.SetNotifier(notifications.NewService(cfg))
	return rt, nil
}

// buildOrchestrator wires the classifier chain and both rich planners. The
// LLM and TMDB clients are optional; without them every component runs
// offline.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (*organizer.Orchestrator, error) {
	var completer llm.Completer
	if cfg.LLMEnabled() {
		completer = llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
	}

	var searcher tmdb.Searcher
	if cfg.TMDBEnabled() && cfg.Classifier.Search {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
		if err != nil {
			return nil, fmt.Errorf("tmdb client: %w", err)
		}
		searcher = client
	}

	chain := classify.NewChain(logger)
	if cfg.Classifier.Mode == config.ClassifierLLM && completer != nil {
		chain.Add("llm", classify.NewLLMClassifier(completer, searcher, logger))
		if cfg.Classifier.Fallback {
			chain.Add("rules", classify.RulesClassifier{})
		}
	} else {
		chain.Add("rules", classify.RulesClassifier{})
	}

	// Rich planners only call the model when the classifier does.
	var planCompleter llm.Completer
	if cfg.Classifier.Mode == config.ClassifierLLM {
		planCompleter = completer
	}
	return organizer.New(
		chain,
		richplan.NewMoviePlanner(planCompleter, searcher, logger),
		richplan.NewSeriesPlanner(planCompleter, searcher, logger),
		organizer.WithLogger(logger),
	)
}
