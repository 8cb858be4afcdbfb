package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type outputParams struct {
	RunID  string `json:"run_id" jsonschema:"the run ID from an idle_run result"`
	Stream string `json:"stream,omitempty" jsonschema:"stdout or stderr. Default: stdout."`
}

func (h *handler) outputHandler(ctx context.Context, req *mcp.CallToolRequest, params outputParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}
	stream := params.Stream
	if stream == "" {
		stream = "stdout"
	}

	result, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	text, err := result.Stream(stream)
	if err != nil {
		return errorResult(err.Error())
	}
	if text == "" {
		return textResult(fmt.Sprintf("No %s captured for run %s (%s).", stream, params.RunID, result.Status))
	}
	return textResult(text)
}
