package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shelver/internal/api"
	"shelver/internal/executor"
	"shelver/internal/plan"
)

func newExecuteCommand(ctx *commandContext) *cobra.Command {
	var planPath string
	var runID string
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Apply a plan to the library",
		Long: `Apply a plan to the library.

The plan comes from a recorded run (--run) or a JSON file (--plan, "-" for
stdin) holding {"plan": [...]}; the output of "shelver plan --json" works
as-is. Existing targets are never replaced unless execution.overwrite_existing
is set. Use --dry-run to check the plan against the filesystem first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req := api.ExecuteRequest{RunID: strings.TrimSpace(runID), DryRun: dryRun}
			if strings.TrimSpace(planPath) != "" {
				var resp plan.Response
				if err := readJSONInput(cmd, planPath, &resp); err != nil {
					return err
				}
				req.Plan = &resp
			}
			if req.Plan == nil && req.RunID == "" {
				return errors.New("either --plan or --run is required")
			}

			logger, err := ctx.commandLogger(cfg)
			if err != nil {
				return err
			}
			rt, err := buildRuntime(cfg, logger, serviceOptions{executor: true, history: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			result, execErr := rt.service.Execute(cmd.Context(), req)
			if result == nil {
				return execErr
			}
			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
				return execErr
			}
			printExecuteReport(cmd, result.Report)
			return execErr
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", `Plan JSON file ("-" for stdin)`)
	cmd.Flags().StringVar(&runID, "run", "", "Apply the plan recorded for this history run")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Check the plan without moving anything")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("plan", "run")
	return cmd
}

func printExecuteReport(cmd *cobra.Command, report executor.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		detail := r.Destination
		if r.Error != "" {
			detail = r.Error
		}
		size := ""
		if r.Bytes > 0 {
			size = humanize.IBytes(uint64(r.Bytes))
		}
		rows = append(rows, []string{r.File, paint(string(r.Status), resultKind(r.Status), colorize), size, detail})
	}
	fmt.Fprintln(out, renderTable([]column{{title: "File"}, {title: "Status"}, {title: "Size", right: true}, {title: "Destination"}}, rows))

	summary := fmt.Sprintf("%d moved, %d skipped, %d failed in %s", report.Moved, report.Skipped, report.Failed, report.Duration.Round(time.Millisecond))
	if report.DryRun {
		summary = "Dry run: nothing was moved"
	}
	kind := statusOK
	if report.Failed > 0 {
		kind = statusError
	}
	fmt.Fprintln(out, paint(summary, kind, colorize))
}

func resultKind(status executor.Status) statusKind {
	switch status {
	case executor.StatusMoved, executor.StatusPlanned:
		return statusOK
	case executor.StatusFailed, executor.StatusConflict:
		return statusError
	case executor.StatusNotRun:
		return statusWarn
	default:
		return statusInfo
	}
}
