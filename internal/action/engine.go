// Package action turns step inputs into a supervised run and reports the
// outcome back as step outputs. It is consumed by both the CLI and the
// MCP server.
package action

import (
	"context"
	"fmt"
	"strconv"

	"github.com/deixis/idleguard/internal/config"
	"github.com/deixis/idleguard/internal/runner"
	"github.com/rs/zerolog/log"
)

// Input names.
const (
	InputRun              = "run"
	InputShell            = "shell"
	InputNoOutputTimeout  = "no_output_timeout"
	InputWorkingDirectory = "working_directory"
)

// Output names.
const (
	OutputStdout   = "stdout"
	OutputStderr   = "stderr"
	OutputExitCode = "exit_code"
	OutputRunID    = "run_id"
)

// CommandRunner executes a supervised run.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, req runner.Request) (*runner.Result, error)
}

// ErrInputRequired is returned when a required input is empty.
type ErrInputRequired struct {
	Name string
}

func (e ErrInputRequired) Error() string {
	return "input required and not supplied: " + e.Name
}

// Engine holds shared dependencies for invocations.
type Engine struct {
	Config *config.Config
	Runner CommandRunner
}

// Request builds a run request from inputs, filling gaps from the config.
func (e *Engine) Request(in Inputs) (runner.Request, error) {
	cfg := e.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	req := runner.Request{
		Command:     in.Input(InputRun),
		Shell:       in.Input(InputShell),
		IdleTimeout: cfg.IdleTimeout(),
		Dir:         in.Input(InputWorkingDirectory),
	}
	if req.Command == "" {
		return runner.Request{}, ErrInputRequired{Name: InputRun}
	}
	if req.Shell == "" {
		req.Shell = cfg.Shell()
	}
	if raw := in.Input(InputNoOutputTimeout); raw != "" {
		d, err := config.ParseTimeout(raw)
		if err != nil {
			return runner.Request{}, fmt.Errorf("input %s: %w", InputNoOutputTimeout, err)
		}
		req.IdleTimeout = d
	}
	return req, nil
}

// Invoke runs the command described by in and reports to out. Captured
// output is reported whenever the command was started, including on
// failure. The returned error is the one passed to out.SetFailed.
func (e *Engine) Invoke(ctx context.Context, in Inputs, out Reporter) (*runner.Result, error) {
	req, err := e.Request(in)
	if err != nil {
		out.SetFailed(err.Error())
		return nil, err
	}

	res, err := e.Runner.Run(ctx, req)
	if res != nil {
		if outErr := setOutputs(out, res); outErr != nil {
			log.Error().Err(outErr).Str("run_id", res.RunID).Msg("setting outputs")
			if err == nil {
				err = outErr
			}
		}
	}
	if err != nil {
		out.SetFailed(err.Error())
		return res, err
	}
	return res, nil
}

func setOutputs(out Reporter, res *runner.Result) error {
	outputs := []struct{ name, value string }{
		{OutputStdout, string(res.Stdout)},
		{OutputStderr, string(res.Stderr)},
		{OutputExitCode, strconv.Itoa(res.ExitCode)},
		{OutputRunID, res.RunID},
	}
	for _, o := range outputs {
		if err := out.SetOutput(o.name, o.value); err != nil {
			return fmt.Errorf("output %s: %w", o.name, err)
		}
	}
	return nil
}
