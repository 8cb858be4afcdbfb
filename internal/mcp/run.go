package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/idleguard/internal/action"
	"github.com/deixis/idleguard/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

type runParams struct {
	Run              string `json:"run" jsonschema:"the shell command text to execute"`
	Shell            string `json:"shell,omitempty" jsonschema:"one of bash, sh, python, pwsh, powershell. Defaults to the configured shell (bash)."`
	NoOutputTimeout  string `json:"no_output_timeout,omitempty" jsonschema:"kill the command after this long without output: milliseconds (e.g. 5000) or a duration (e.g. 30s). 0 disables. Defaults to the configured timeout."`
	WorkingDirectory string `json:"working_directory,omitempty" jsonschema:"directory to run in, relative to the workspace"`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	in := action.MapInputs{
		action.InputRun:              params.Run,
		action.InputShell:            params.Shell,
		action.InputNoOutputTimeout:  params.NoOutputTimeout,
		action.InputWorkingDirectory: params.WorkingDirectory,
	}
	engine := h.currentEngine()
	runReq, err := engine.Request(in)
	if err != nil {
		return errorResult(err.Error())
	}

	res, runErr := engine.Runner.Run(ctx, runReq)
	rr := report.New(runReq, res, runErr)

	// Save the record for idle_output.
	if err := h.store.Save(rr); err != nil {
		log.Warn().Err(err).Str("run_id", rr.ID).Msg("saving run")
	}

	if res == nil {
		return errorResult(fmt.Sprintf("run failed: %v", runErr))
	}
	return textResult(formatRun(rr, h.tailLines))
}

func formatRun(rr *report.RunResult, tailLines int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(string(rr.Status)))
	fmt.Fprintf(&b, "Run: %s\n", rr.ID)
	fmt.Fprintf(&b, "Exit code: %d\n", rr.ExitCode)
	fmt.Fprintf(&b, "Duration: %s\n", rr.Duration.Round(time.Millisecond))
	if rr.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", rr.Error)
	}
	if rr.Truncated {
		fmt.Fprintln(&b, "Note: output exceeded the recording cap and was truncated.")
	}

	for _, s := range []struct{ name, text string }{{"stdout", rr.Stdout}, {"stderr", rr.Stderr}} {
		fmt.Fprintln(&b)
		if s.text == "" {
			fmt.Fprintf(&b, "%s: (empty)\n", s.name)
			continue
		}
		tail := report.Tail(s.text, tailLines)
		if tail == s.text {
			fmt.Fprintf(&b, "%s:\n", s.name)
		} else {
			fmt.Fprintf(&b, "%s (last %d lines):\n", s.name, tailLines)
		}
		for _, line := range strings.Split(strings.TrimRight(tail, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Read full output with idle_output(run_id=%q, stream=\"stdout\" or \"stderr\").\n", rr.ID)
	return b.String()
}
