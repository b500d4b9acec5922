package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/detent/workflow-doctor/internal/exitcode"
	"github.com/detent/workflow-doctor/internal/runner"
	"github.com/detent/workflow-doctor/internal/workflow"
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	workflowsDir = runner.WorkflowsDir
	workflowFile = ""
	ignore = nil
	outputFormat = "text"
	parallel = 0
	failFast = false
	debugLog = ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeWorkflow(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRootCommandFlags(t *testing.T) {
	tests := []struct {
		flagName  string
		shorthand string
		wantType  string
		wantDef   string
	}{
		{flagName: "workflows-dir", shorthand: "w", wantType: "string", wantDef: ".github/workflows"},
		{flagName: "workflow", wantType: "string"},
		{flagName: "ignore", wantType: "stringArray", wantDef: "[]"},
		{flagName: "output", shorthand: "o", wantType: "string", wantDef: "text"},
		{flagName: "parallel", wantType: "int", wantDef: "0"},
		{flagName: "fail-fast", wantType: "bool", wantDef: "false"},
		{flagName: "debug-log", wantType: "string"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := rootCmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("Flag %q not found", tt.flagName)
			}
			if flag.Value.Type() != tt.wantType {
				t.Errorf("Flag %q type = %q, want %q", tt.flagName, flag.Value.Type(), tt.wantType)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("Flag %q shorthand = %q, want %q", tt.flagName, flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.wantDef {
				t.Errorf("Flag %q default = %q, want %q", tt.flagName, flag.DefValue, tt.wantDef)
			}
		})
	}
}

func TestRun_Report(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yml", `on:
  push:
  pull_request_target:
jobs:
  test:
    steps:
      - name: Checkout
        uses: actions/checkout@v4
      - run: make test
`)

	stdout, stderr, err := execute(t, "--workflows-dir", dir)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}

	want := "== " + filepath.Join(dir, "ci.yml") + " ==\n" +
		"Triggers: pull_request_target, push\n" +
		"Info:\n" +
		"  • Job `test` inherits workflow permissions. If it needs fewer privileges, set job-specific `permissions`.\n" +
		"Warnings:\n" +
		"  • Workflow does not declare top-level `permissions`. Define minimal permissions to avoid unexpected token scope.\n" +
		"  • step `Checkout` in job `test` uses floating tag `actions/checkout@v4`. Pin to a specific version or commit for reproducibility.\n" +
		"  • `pull_request_target` runs with elevated permissions. Ensure all referenced actions are pinned and inputs validated.\n" +
		"\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestRun_NoWorkflows(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, "--workflows-dir", dir)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if want := "No workflows found in " + dir + "\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	stdout, stderr, err := execute(t, "-w", dir)
	if !errors.Is(err, workflow.ErrDirNotFound) {
		t.Fatalf("execute() error = %v, want ErrDirNotFound", err)
	}
	if code := exitcode.FromError(err); code != exitcode.Failure {
		t.Errorf("exit code = %d, want %d", code, exitcode.Failure)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if want := "Workflow directory not found: " + dir + "\n"; stderr != want {
		t.Errorf("stderr = %q, want %q", stderr, want)
	}
}

func TestRun_WorkflowsDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows")
	if err := os.WriteFile(path, []byte("on: push\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := execute(t, "--workflows-dir", path)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if want := "No workflows found in " + path + "\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestRun_MultipleDocumentsFail(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "multi.yml", "on: push\npermissions: {}\n---\non: pull_request_target\n")

	stdout, _, err := execute(t, "--workflows-dir", dir)
	if code := exitcode.FromError(err); code != exitcode.Failure {
		t.Fatalf("exit code = %d, want %d (err %v)", code, exitcode.Failure, err)
	}
	if !strings.Contains(stdout, "Error: parsing workflow YAML: workflow file contains multiple YAML documents") {
		t.Errorf("stdout = %q, want the multiple documents error", stdout)
	}
}

func TestRun_NullUsesNamed(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yml", "on: push\npermissions: {}\njobs:\n  a:\n    permissions: {}\n    uses:\n")

	stdout, _, err := execute(t, "--workflows-dir", dir)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(stdout, "job `a` references `null` without a version.") {
		t.Errorf("stdout = %q, want the null reference named", stdout)
	}
}

func TestRun_WarningsDoNotFail(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yml", "on: pull_request_target\njobs:\n  a:\n    uses: org/repo/.github/workflows/x.yml\n")

	stdout, _, err := execute(t, "--workflows-dir", dir)
	if err != nil {
		t.Fatalf("execute() error = %v, warnings must not fail the run", err)
	}
	if !strings.Contains(stdout, "Warnings:") {
		t.Errorf("stdout = %q, want warnings", stdout)
	}
}

func TestRun_ParseFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "a.yml", "on: [push\n")
	writeWorkflow(t, dir, "b.yml", "on: push\npermissions: {}\n")

	stdout, _, err := execute(t, "--workflows-dir", dir)
	if code := exitcode.FromError(err); code != exitcode.Failure {
		t.Fatalf("exit code = %d, want %d (err %v)", code, exitcode.Failure, err)
	}
	if !strings.Contains(stdout, "== "+filepath.Join(dir, "a.yml")+" ==\nError: ") {
		t.Errorf("stdout missing error block for a.yml:\n%s", stdout)
	}
	if !strings.Contains(stdout, "== "+filepath.Join(dir, "b.yml")+" ==\nTriggers: push\nNo warnings detected.\n\n") {
		t.Errorf("stdout missing report for b.yml:\n%s", stdout)
	}
}

func TestRun_FailFastPrintsNothing(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "a.yml", "on: [push\n")
	writeWorkflow(t, dir, "b.yml", "on: push\n")

	stdout, stderr, err := execute(t, "--workflows-dir", dir, "--fail-fast")
	if err == nil {
		t.Fatal("execute() error = nil, want parse failure")
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "a.yml") {
		t.Errorf("stderr = %q, want the failing file", stderr)
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "a.yml", "on: [push]\njobs:\n  x:\n    steps:\n      - uses: actions/checkout@main\n")
	writeWorkflow(t, dir, "b.yaml", "on: workflow_dispatch\npermissions: read-all\n")

	first, _, err := execute(t, "--workflows-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := execute(t, "--workflows-dir", dir, "--parallel", "1")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("outputs differ:\n%s\n---\n%s", first, second)
	}
}

func TestRun_UnknownOutputFormat(t *testing.T) {
	_, stderr, err := execute(t, "--workflows-dir", t.TempDir(), "--output", "xml")
	if err == nil {
		t.Fatal("execute() error = nil, want unknown format error")
	}
	if !strings.Contains(stderr, "unknown output format") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yml", "on: push\n")

	stdout, _, err := execute(t, "--workflows-dir", dir, "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, `"rule": "top-level-permissions"`) {
		t.Errorf("stdout = %s, want JSON findings", stdout)
	}
}

func TestRun_DebugLog(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yml", "on: push\n")
	logPath := filepath.Join(t.TempDir(), "debug.log")

	if _, _, err := execute(t, "--workflows-dir", dir, "--debug-log", logPath); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading debug log: %v", err)
	}
	if !strings.Contains(string(data), "discovered 1 workflow(s)") {
		t.Errorf("debug log = %q", string(data))
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "workflow-doctor "+Version+"\n" {
		t.Errorf("stdout = %q", stdout)
	}
}
