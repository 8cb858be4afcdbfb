package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/idleguard/internal/shell"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type shellsParams struct{}

func (h *handler) shellsHandler(ctx context.Context, req *mcp.CallToolRequest, _ shellsParams) (*mcp.CallToolResult, any, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Default: %s\n\n", h.currentEngine().Config.Shell())
	for _, p := range shell.Profiles() {
		fmt.Fprintf(&b, "%s %s <command>\n", p.Name, strings.Join(p.Args, " "))
	}
	return textResult(b.String())
}
