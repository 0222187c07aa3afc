package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shelver/internal/api"
	"shelver/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded plan runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func withHistoryService(ctx *commandContext, fn func(*api.PlanService) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.commandLogger(cfg)
	if err != nil {
		return err
	}
	rt, err := buildRuntime(cfg, logger, serviceOptions{history: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt.service)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var opts history.ListOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent plan runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryService(ctx, func(svc *api.PlanService) error {
				runs, err := svc.History(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunTable(runs, shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Only runs classified into this category")
	cmd.Flags().BoolVar(&opts.FailedOnly, "failed", false, "Only failed runs")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

var runColumns = []column{
	{title: "ID", wrap: 36},
	{title: "Created"},
	{title: "Batch", wrap: 40},
	{title: "Category"},
	{title: "Language"},
	{title: "State"},
	{title: "Moves", right: true},
	{title: "Execution"},
}

func renderRunTable(runs []api.RunSummary, colorize bool) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		state := run.State
		if run.Error != "" {
			state = paint(state, statusError, colorize)
		}
		rows = append(rows, []string{
			run.ID,
			run.CreatedAt.Local().Format(time.DateTime),
			run.BatchDir,
			run.Category,
			run.Language,
			state,
			strconv.Itoa(run.Moves),
			run.Execution,
		})
	}
	return renderTable(runColumns, rows)
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one plan run with its plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryService(ctx, func(svc *api.PlanService) error {
				run, err := svc.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				printRunDetail(cmd, run)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printRunDetail(cmd *cobra.Command, run *api.RunDetail) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	fmt.Fprintf(out, "Created:   %s\n", run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Batch:     %s (%d files)\n", run.BatchDir, run.Files)
	if run.Category != "" {
		fmt.Fprintf(out, "Category:  %s\n", run.Category)
		fmt.Fprintf(out, "Language:  %s\n", run.Language)
		fmt.Fprintf(out, "Planner:   %s\n", run.Route)
	}
	fmt.Fprintf(out, "State:     %s\n", run.State)
	if run.Error != "" {
		fmt.Fprintf(out, "Error:     %s\n", run.Error)
	}
	fmt.Fprintf(out, "Execution: %s", run.Execution)
	if run.ExecutedAt != nil {
		fmt.Fprintf(out, " (%s)", run.ExecutedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(out)
	for _, key := range slices.Sorted(maps.Keys(run.Metadata)) {
		fmt.Fprintf(out, "Meta:      %s=%s\n", key, run.Metadata[key])
	}
	if len(run.Plan) > 0 {
		fmt.Fprintln(out, renderPlanTable(run.Plan))
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Age threshold")
	return cmd
}
