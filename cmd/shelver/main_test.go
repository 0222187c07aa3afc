package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shelver/internal/api"
	"shelver/internal/preflight"
)

type cliTestEnv struct {
	configPath  string
	downloadDir string
	libraryDir  string
	stateDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"SHELVER_LLM_API_KEY", "OPENROUTER_API_KEY", "GROK_KEY", "TMDB_API_KEY", "SHELVER_API_TOKEN", "SHELVER_NTFY_TOPIC"} {
		t.Setenv(key, "")
	}
	base := t.TempDir()
	t.Setenv("HOME", base)

	env := &cliTestEnv{
		configPath:  filepath.Join(base, "config.toml"),
		downloadDir: filepath.Join(base, "downloads"),
		libraryDir:  filepath.Join(base, "library"),
		stateDir:    filepath.Join(base, "state"),
	}
	for _, dir := range []string{env.downloadDir, env.libraryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	contents := fmt.Sprintf(`[paths]
download_dir = %q
library_dir = %q
state_dir = %q
log_dir = %q

[classifier]
mode = "rules"
`, env.downloadDir, env.libraryDir, env.stateDir, filepath.Join(env.stateDir, "logs"))
	if err := os.WriteFile(env.configPath, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func (e *cliTestEnv) writeDownload(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(e.downloadDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlanJSONFromArgs(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "", "plan", "--json", "Album/01.flac", "Album/02.flac")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	var result api.PlanResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if result.Category != "music" || result.Route != "grouping" || result.RunID == "" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Plan) != 1 || result.Plan[0].File != "Album" || result.Plan[0].Target != "music/Album" {
		t.Fatalf("unexpected plan %+v", result.Plan)
	}
}

func TestPlanFromStdinRendersTable(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, `{"files":["Novel/novel.epub"],"metadata":{"title":"Novel"}}`, "plan", "--input", "-", "--no-history")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	for _, want := range []string{"Category: book", "Novel/novel.epub", "book/novel.epub"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Run:") {
		t.Fatalf("expected no run id with --no-history:\n%s", out)
	}
}

func TestPlanRejectsEmptyAndUnknownBatches(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "", "plan"); err == nil {
		t.Fatal("expected error for empty batch")
	}
	if _, err := env.run(t, "", "plan", "Stuff/readme.nfo"); err == nil || !strings.Contains(err.Error(), "classification failed") {
		t.Fatalf("expected classification failure, got %v", err)
	}
}

func TestPlanDirThenExecuteRun(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeDownload(t, "Album/01.flac", "one")
	env.writeDownload(t, "Album/02.flac", "two")

	out, err := env.run(t, "", "plan", "--dir", "Album", "--json")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	var planned api.PlanResult
	if err := json.Unmarshal([]byte(out), &planned); err != nil {
		t.Fatal(err)
	}

	out, err = env.run(t, "", "execute", "--run", planned.RunID, "--dry-run")
	if err != nil {
		t.Fatalf("dry run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dry run") {
		t.Fatalf("expected dry run summary:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.libraryDir, "music", "Album")); !os.IsNotExist(err) {
		t.Fatalf("dry run must not move anything: %v", err)
	}

	out, err = env.run(t, "", "execute", "--run", planned.RunID)
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(env.libraryDir, "music", "Album", "02.flac"))
	if err != nil || string(data) != "two" {
		t.Fatalf("expected moved file, got %q, %v", data, err)
	}

	out, err = env.run(t, "", "history", "show", planned.RunID, "--json")
	if err != nil {
		t.Fatalf("history show: %v\n%s", err, out)
	}
	var detail api.RunDetail
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatal(err)
	}
	if detail.Execution != "applied" || detail.ExecutedAt == nil {
		t.Fatalf("expected applied execution, got %+v", detail.RunSummary)
	}
}

func TestExecuteInlinePlanFromStdin(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeDownload(t, "Novel/novel.epub", "book")
	out, err := env.run(t, `{"plan":[{"file":"Novel/novel.epub","action":"move","target":"book/novel.epub"}]}`, "execute", "--plan", "-", "--json")
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(env.libraryDir, "book", "novel.epub")); err != nil {
		t.Fatalf("expected moved file: %v", err)
	}
	if _, err := env.run(t, "", "execute"); err == nil {
		t.Fatal("expected error without --plan or --run")
	}
}

func TestExecuteRefusesEscapingPlan(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := env.run(t, `{"plan":[{"file":"../etc","action":"move","target":"book/etc"}]}`, "execute", "--plan", "-")
	if err == nil {
		t.Fatal("expected invalid plan error")
	}
}

func TestHistoryListFilters(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "", "plan", "Album/01.flac"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "", "plan", "Stuff/readme.nfo"); err == nil {
		t.Fatal("expected failure")
	}

	out, err := env.run(t, "", "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list: %v\n%s", err, out)
	}
	var runs []api.RunSummary
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %+v", runs)
	}

	out, err = env.run(t, "", "history", "list", "--failed", "--json")
	if err != nil {
		t.Fatal(err)
	}
	runs = nil
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Error == "" {
		t.Fatalf("expected one failed run, got %+v", runs)
	}

	out, err = env.run(t, "", "history", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Album") || !strings.Contains(out, "music") {
		t.Fatalf("expected table rows:\n%s", out)
	}

	if _, err := env.run(t, "", "history", "show", "missing"); err == nil {
		t.Fatal("expected not found")
	}
}

func TestCheckOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "", "check", "--offline", "--json")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	var results []preflight.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %+v", results)
	}

	if err := os.RemoveAll(env.libraryDir); err != nil {
		t.Fatal(err)
	}
	out, err = env.run(t, "", "check", "--offline")
	if err == nil {
		t.Fatalf("expected failure with missing library:\n%s", out)
	}
	if !strings.Contains(out, "Library directory") || !strings.Contains(out, "ERROR") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "nested", "shelver.toml")

	out, err := env.run(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if _, err := env.run(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if _, err := env.run(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	out, err = env.run(t, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, env.configPath) {
		t.Fatalf("unexpected output:\n%s", out)
	}

	t.Setenv("TMDB_API_KEY", "abcdef123456")
	out, err = env.run(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "abcdef123456") || !strings.Contains(out, "ab******56") {
		t.Fatalf("expected masked key:\n%s", out)
	}
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "", "test-notify"); err == nil || !strings.Contains(err.Error(), "ntfy_topic") {
		t.Fatalf("expected missing topic error, got %v", err)
	}
}

func TestLogsShowsPlanningLines(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "", "plan", "Album/01.flac", "Album/02.flac"); err != nil {
		t.Fatal(err)
	}
	out, err := env.run(t, "", "logs", "--match", "batch planned")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "batch planned") || !strings.Contains(out, "Album") {
		t.Fatalf("expected planning log line:\n%s", out)
	}
}
