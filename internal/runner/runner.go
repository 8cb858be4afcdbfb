// Package runner supervises a single shell command: it streams the
// command's output through to the caller while recording it, and kills
// the command once it has been silent for longer than the idle timeout.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/deixis/idleguard/internal/shell"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Request describes one supervised run.
type Request struct {
	Command     string        // script text handed to the shell
	Shell       string        // profile name, see shell.Names
	IdleTimeout time.Duration // zero disables the watchdog
	Dir         string        // relative to Runner.Workspace; empty means the workspace itself
}

// Runner executes requests. A Runner holds no per-run state and may be
// shared; each call to Run owns its recorders and timer.
type Runner struct {
	Workspace string
	MaxOutput int           // bytes recorded per stream; 0 records everything
	WaitDelay time.Duration // how long to wait for stdio after the shell exits

	// Stdout and Stderr receive the passthrough copy of the child's
	// streams. Nil means os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts the command and blocks until it exits, goes idle for longer
// than req.IdleTimeout, or ctx is cancelled.
//
// Whenever the process was started, the returned Result is non-nil and
// holds everything recorded so far, even when err is non-nil.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	args, err := shell.Resolve(req.Shell)
	if err != nil {
		return nil, err
	}

	dir, err := r.resolveDir(req.Dir)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger := log.With().Str("run_id", runID).Str("shell", req.Shell).Logger()

	activity := make(chan struct{}, 1)
	stdout := newRecorder(r.MaxOutput)
	stderr := newRecorder(r.MaxOutput)

	cmd := exec.Command(req.Shell, append(args, req.Command)...)
	cmd.Dir = dir
	cmd.Stdout = &tap{rec: stdout, pass: writerOr(r.Stdout, os.Stdout), activity: activity}
	cmd.Stderr = &tap{rec: stderr, pass: writerOr(r.Stderr, os.Stderr), activity: activity}
	cmd.WaitDelay = r.WaitDelay
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, ErrLaunch{Shell: req.Shell, Err: err}
	}
	started := time.Now()
	logger.Debug().Int("pid", cmd.Process.Pid).Dur("idle_timeout", req.IdleTimeout).Msg("command started")

	// Wait returns once the process has exited and both taps have seen
	// EOF, so a natural exit never resolves with truncated output.
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	snapshot := func(code int) *Result {
		return &Result{
			RunID:     runID,
			ExitCode:  code,
			Stdout:    stdout.Bytes(),
			Stderr:    stderr.Bytes(),
			Truncated: stdout.Truncated() || stderr.Truncated(),
			Duration:  time.Since(started),
		}
	}

	var idle <-chan time.Time
	if req.IdleTimeout > 0 {
		timer := time.NewTimer(req.IdleTimeout)
		defer timer.Stop()
		idle = timer.C

		rearm := func() { timer.Reset(req.IdleTimeout) }
		for {
			select {
			case <-activity:
				rearm()
				continue
			case <-idle:
			case waitErr := <-exited:
				return r.finish(logger, cmd, snapshot, waitErr)
			case <-ctx.Done():
				return r.abort(logger, cmd, snapshot, ctx.Err())
			}

			// The deadline fired. A natural exit or a chunk that raced
			// with it takes precedence over the timeout.
			select {
			case waitErr := <-exited:
				return r.finish(logger, cmd, snapshot, waitErr)
			case <-activity:
				rearm()
				continue
			default:
			}
			logger.Debug().Dur("idle_timeout", req.IdleTimeout).Msg("no output; terminating")
			r.terminate(logger, cmd)
			return snapshot(-1), ErrNoOutputTimeout{Timeout: req.IdleTimeout}
		}
	}

	select {
	case waitErr := <-exited:
		return r.finish(logger, cmd, snapshot, waitErr)
	case <-ctx.Done():
		return r.abort(logger, cmd, snapshot, ctx.Err())
	}
}

// finish maps the result of cmd.Wait to the run outcome.
func (r *Runner) finish(logger zerolog.Logger, cmd *exec.Cmd, snapshot func(int) *Result, waitErr error) (*Result, error) {
	state := cmd.ProcessState
	if waitErr != nil && errors.Is(waitErr, exec.ErrWaitDelay) && state != nil {
		// The shell exited but something it spawned still holds stdio.
		logger.Warn().Dur("wait_delay", r.WaitDelay).Msg("output streams still open after exit; giving up on them")
		waitErr = nil
		if !state.Success() {
			waitErr = &exec.ExitError{ProcessState: state}
		}
	}

	if waitErr == nil {
		logger.Debug().Msg("command exited")
		return snapshot(0), nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code := exitErr.ExitCode()
		res := snapshot(code)
		logger.Debug().Int("exit_code", code).Msg("command failed")
		if code < 0 {
			return res, ErrExitCode{Code: code, State: exitErr.String()}
		}
		return res, ErrExitCode{Code: code}
	}

	code := -1
	if state != nil {
		code = state.ExitCode()
	}
	return snapshot(code), fmt.Errorf("running %s: %w", cmd.Path, waitErr)
}

// abort terminates the child because the caller gave up on the run.
func (r *Runner) abort(logger zerolog.Logger, cmd *exec.Cmd, snapshot func(int) *Result, cause error) (*Result, error) {
	logger.Debug().Err(cause).Msg("run cancelled; terminating")
	r.terminate(logger, cmd)
	return snapshot(-1), fmt.Errorf("command cancelled: %w", cause)
}

// terminate asks the child to stop without waiting for it to do so.
func (r *Runner) terminate(logger zerolog.Logger, cmd *exec.Cmd) {
	if err := terminate(cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn().Err(err).Int("pid", cmd.Process.Pid).Msg("terminating command")
	}
}

// resolveDir resolves dir relative to the workspace and validates it
// is within the workspace boundary.
func (r *Runner) resolveDir(dir string) (string, error) {
	if dir == "" {
		return r.Workspace, nil
	}
	if r.Workspace == "" {
		return filepath.Clean(dir), nil
	}

	var resolved string
	if filepath.IsAbs(dir) {
		resolved = filepath.Clean(dir)
	} else {
		resolved = filepath.Clean(filepath.Join(r.Workspace, dir))
	}

	rel, err := filepath.Rel(r.Workspace, resolved)
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("working directory %q is outside workspace %q", dir, r.Workspace)
	}
	return resolved, nil
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
