// Package report keeps records of supervised runs so that their full
// output can be fetched after the run summary has been returned.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/idleguard/internal/runner"
	"github.com/google/uuid"
)

// Status classifies how a run ended.
type Status string

const (
	// Pass is a run that exited with code 0.
	Pass Status = "pass"
	// Fail is a run that exited with a nonzero code.
	Fail Status = "fail"
	// Timeout is a run killed for producing no output.
	Timeout Status = "timeout"
	// Error is a run that could not be started or was cancelled.
	Error Status = "error"
)

// ErrRunNotFound is returned by Store.Load for unknown or evicted runs.
var ErrRunNotFound = errors.New("run not found")

// Store persists and retrieves run records.
type Store interface {
	Save(result *RunResult) error
	Load(runID string) (*RunResult, error)
}

// RunResult is the stored record of one run.
type RunResult struct {
	ID        string        `json:"id"`
	Command   string        `json:"command"`
	Shell     string        `json:"shell"`
	Status    Status        `json:"status"`
	ExitCode  int           `json:"exit_code"`
	Error     string        `json:"error,omitempty"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	Truncated bool          `json:"truncated,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// New builds a record from a run request and its outcome. res may be nil
// when the command never started.
func New(req runner.Request, res *runner.Result, err error) *RunResult {
	rr := &RunResult{
		Command:  req.Command,
		Shell:    req.Shell,
		Status:   classify(err),
		ExitCode: -1,
	}
	if err != nil {
		rr.Error = err.Error()
	}
	if res == nil {
		rr.ID = uuid.New().String()
		return rr
	}
	rr.ID = res.RunID
	rr.ExitCode = res.ExitCode
	rr.Stdout = string(res.Stdout)
	rr.Stderr = string(res.Stderr)
	rr.Truncated = res.Truncated
	rr.Duration = res.Duration
	return rr
}

func classify(err error) Status {
	switch {
	case err == nil:
		return Pass
	case errors.As(err, new(runner.ErrNoOutputTimeout)):
		return Timeout
	case errors.As(err, new(runner.ErrExitCode)):
		return Fail
	default:
		return Error
	}
}

// Stream returns the captured text of "stdout" or "stderr".
func (r *RunResult) Stream(name string) (string, error) {
	switch name {
	case "stdout":
		return r.Stdout, nil
	case "stderr":
		return r.Stderr, nil
	default:
		return "", fmt.Errorf("unknown stream %q: want stdout or stderr", name)
	}
}

// Tail returns the last n lines of s. A trailing newline does not count
// as an extra empty line.
func Tail(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	trimmed := strings.TrimSuffix(s, "\n")
	idx := len(trimmed)
	for i := 0; i < n; i++ {
		idx = strings.LastIndexByte(trimmed[:idx], '\n')
		if idx < 0 {
			return s
		}
	}
	return s[idx+1:]
}
