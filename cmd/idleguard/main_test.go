package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deixis/idleguard"
	"github.com/deixis/idleguard/internal/action"
	"github.com/deixis/idleguard/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TestMain keeps the supervisor's debug logs out of test output.
func TestMain(m *testing.M) {
	log.Logger = zerolog.New(io.Discard)
	os.Exit(m.Run())
}

func setupWorkspace(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	if cfg != "" {
		if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv(workspaceEnv, dir)
	return dir
}

func TestRunMain_WritesOutputs(t *testing.T) {
	dir := setupWorkspace(t, "version: 1\nshell: sh\n")
	outFile := filepath.Join(dir, "github_output")
	if err := os.WriteFile(outFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	rep := &action.CommandReporter{OutputFile: outFile, Stdout: &stdout}
	in := action.MapInputs{action.InputRun: "echo hi"}

	if err := runMain(context.Background(), in, rep); err != nil {
		t.Fatalf("runMain: %v", err)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"stdout<<", "hi\n", "exit_code<<", "run_id<<"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output file missing %q:\n%s", want, data)
		}
	}
	if rep.Failed() {
		t.Error("reporter marked failed on success")
	}
}

func TestRunMain_Failure(t *testing.T) {
	setupWorkspace(t, "shell: sh\n")
	var stdout bytes.Buffer
	rep := &action.CommandReporter{Stdout: &stdout}

	err := runMain(context.Background(), action.MapInputs{action.InputRun: "exit 3"}, rep)
	if !errors.Is(err, errReported) {
		t.Fatalf("error = %v, want errReported", err)
	}
	if !strings.Contains(stdout.String(), "::error::process completed with exit code 3") {
		t.Errorf("stdout = %q, want error command", stdout.String())
	}
}

func TestRunMain_PartialLineBeforeError(t *testing.T) {
	setupWorkspace(t, "shell: sh\n")
	var stdout bytes.Buffer
	rep := &action.CommandReporter{Stdout: &stdout}

	err := runMain(context.Background(), action.MapInputs{action.InputRun: "printf partial; exit 3"}, rep)
	if !errors.Is(err, errReported) {
		t.Fatalf("error = %v, want errReported", err)
	}
	want := "partial\n::set-output name=stdout::partial\n"
	if !strings.HasPrefix(stdout.String(), want) {
		t.Errorf("stdout = %q, want prefix %q", stdout.String(), want)
	}
	if strings.Contains(stdout.String(), "\n\n") {
		t.Errorf("stdout has blank lines: %q", stdout.String())
	}
}

func TestRunMain_BadConfig(t *testing.T) {
	setupWorkspace(t, "shell: zsh\n")
	var stdout bytes.Buffer
	rep := &action.CommandReporter{Stdout: &stdout}

	err := runMain(context.Background(), action.MapInputs{action.InputRun: "true"}, rep)
	if !errors.Is(err, errReported) {
		t.Fatalf("error = %v, want errReported", err)
	}
	if !rep.Failed() || !strings.Contains(stdout.String(), "not supported") {
		t.Errorf("stdout = %q, want unsupported shell failure", stdout.String())
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != idleguard.Version {
		t.Errorf("version = %q, want %q", out.String(), idleguard.Version)
	}
}

func TestShellsCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"shells"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"bash", "sh", "python", "pwsh", "powershell"} {
		if !strings.Contains(out.String(), name+" ") {
			t.Errorf("shells output missing %s:\n%s", name, out.String())
		}
	}
}
