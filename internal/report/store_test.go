package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deixis/idleguard/internal/runner"
	"github.com/deixis/idleguard/internal/shell"
)

func TestNew_Classification(t *testing.T) {
	req := runner.Request{Command: "x", Shell: "sh"}
	res := &runner.Result{RunID: "id", ExitCode: 3, Stdout: []byte("o"), Stderr: []byte("e")}

	tests := []struct {
		name string
		res  *runner.Result
		err  error
		want Status
	}{
		{"pass", res, nil, Pass},
		{"fail", res, runner.ErrExitCode{Code: 3}, Fail},
		{"timeout", res, runner.ErrNoOutputTimeout{Timeout: time.Second}, Timeout},
		{"launch", nil, runner.ErrLaunch{Shell: "sh", Err: errors.New("nope")}, Error},
		{"shell", nil, shell.ErrUnsupportedShell{Name: "zsh"}, Error},
		{"cancelled", res, context.Canceled, Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := New(req, tt.res, tt.err)
			if rr.Status != tt.want {
				t.Errorf("Status = %s, want %s", rr.Status, tt.want)
			}
			if rr.ID == "" {
				t.Error("ID is empty")
			}
			if (tt.err == nil) != (rr.Error == "") {
				t.Errorf("Error = %q for err %v", rr.Error, tt.err)
			}
		})
	}
}

func TestNew_CopiesOutput(t *testing.T) {
	res := &runner.Result{RunID: "abc", ExitCode: 0, Stdout: []byte("hello\n"), Stderr: []byte("warn\n")}
	rr := New(runner.Request{Command: "echo hello", Shell: "bash"}, res, nil)
	if rr.ID != "abc" || rr.Stdout != "hello\n" || rr.Stderr != "warn\n" || rr.ExitCode != 0 {
		t.Errorf("record = %+v", rr)
	}
}

func TestNew_NotStarted(t *testing.T) {
	rr := New(runner.Request{Command: "x", Shell: "zsh"}, nil, shell.ErrUnsupportedShell{Name: "zsh"})
	if rr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", rr.ExitCode)
	}
}

func TestRunResult_Stream(t *testing.T) {
	rr := &RunResult{Stdout: "out", Stderr: "err"}
	if s, _ := rr.Stream("stdout"); s != "out" {
		t.Errorf("Stream(stdout) = %q", s)
	}
	if s, _ := rr.Stream("stderr"); s != "err" {
		t.Errorf("Stream(stderr) = %q", s)
	}
	if _, err := rr.Stream("stdin"); err == nil {
		t.Error("expected error for unknown stream")
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"a\nb\nc\n", 2, "b\nc\n"},
		{"a\nb\nc", 2, "b\nc"},
		{"a\nb\n", 5, "a\nb\n"},
		{"single", 1, "single"},
		{"a\nb\n", 0, ""},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := Tail(tt.in, tt.n); got != tt.want {
			t.Errorf("Tail(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
