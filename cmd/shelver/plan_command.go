package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shelver/internal/api"
	"shelver/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var dirName string
	var metadata map[string]string
	var jsonOutput bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "plan [file...]",
		Short: "Classify a batch and print its library plan",
		Long: `Classify a batch and print its library plan.

Files are paths relative to the download directory and must share their
first segment. They can be given as arguments, read from a JSON request
({"files": [...], "metadata": {...}}) with --input, or collected from a
directory under the download directory with --dir.

Planning never touches the filesystem; apply a plan with "shelver execute".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := buildPlanRequest(cmd, cfg.Paths.DownloadDir, args, inputPath, dirName, metadata)
			if err != nil {
				return err
			}

			logger, err := ctx.commandLogger(cfg)
			if err != nil {
				return err
			}
			rt, err := buildRuntime(cfg, logger, serviceOptions{planner: true, history: !noHistory})
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.service.Plan(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("plan %s: %w", req.Batch().BatchDir(), err)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printPlanResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", `JSON plan request file ("-" for stdin)`)
	cmd.Flags().StringVarP(&dirName, "dir", "d", "", "Batch directory under the download directory to plan")
	cmd.Flags().StringToStringVarP(&metadata, "meta", "m", nil, "Batch metadata as key=value (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the run in the history database")
	cmd.MarkFlagsMutuallyExclusive("input", "dir")
	return cmd
}

func buildPlanRequest(cmd *cobra.Command, downloadDir string, args []string, inputPath, dirName string, metadata map[string]string) (api.PlanRequest, error) {
	var req api.PlanRequest
	switch {
	case strings.TrimSpace(inputPath) != "":
		if len(args) > 0 {
			return req, errors.New("file arguments cannot be combined with --input")
		}
		if err := readJSONInput(cmd, inputPath, &req); err != nil {
			return req, err
		}
	case strings.TrimSpace(dirName) != "":
		if len(args) > 0 {
			return req, errors.New("file arguments cannot be combined with --dir")
		}
		files, err := collectBatchFiles(downloadDir, dirName)
		if err != nil {
			return req, err
		}
		req.Files = files
	default:
		req.Files = append(req.Files, args...)
	}
	if len(req.Files) == 0 {
		return req, plan.ErrEmptyBatch
	}
	for k, v := range metadata {
		if req.Metadata == nil {
			req.Metadata = make(map[string]string, len(metadata))
		}
		req.Metadata[k] = v
	}
	return req, nil
}

// collectBatchFiles lists every regular file under downloadDir/dirName as a
// slash-separated path relative to downloadDir.
func collectBatchFiles(downloadDir, dirName string) ([]string, error) {
	dirName = filepath.Clean(strings.TrimSpace(dirName))
	if !filepath.IsLocal(dirName) {
		return nil, fmt.Errorf("batch directory %q must be relative to the download directory", dirName)
	}
	root := filepath.Join(downloadDir, dirName)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(downloadDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return files, nil
}

func printPlanResult(cmd *cobra.Command, result *api.PlanResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Category: %s\n", result.Category)
	if result.Language != "" {
		fmt.Fprintf(out, "Language: %s\n", result.Language)
	}
	fmt.Fprintf(out, "Planner:  %s\n", result.Route)
	if result.RunID != "" {
		fmt.Fprintf(out, "Run:      %s\n", result.RunID)
	}
	fmt.Fprintln(out, renderPlanTable(result.Plan))
}

func renderPlanTable(actions []plan.PlanAction) string {
	rows := make([][]string, 0, len(actions))
	for _, action := range actions {
		rows = append(rows, []string{action.File, string(action.Action), action.Target})
	}
	return renderTable([]column{{title: "File"}, {title: "Action"}, {title: "Target"}}, rows)
}
