// Package mcp provides the idleguard MCP server, registering all tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"sync"
	"time"

	"github.com/deixis/idleguard"
	"github.com/deixis/idleguard/internal/action"
	"github.com/deixis/idleguard/internal/config"
	"github.com/deixis/idleguard/internal/report"
	"github.com/deixis/idleguard/internal/runner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

//go:embed instructions.md
var Instructions string

// DefaultTailLines is how many trailing lines of each stream idle_run returns.
const DefaultTailLines = 20

// handler holds shared dependencies for all tool handlers.
type handler struct {
	mu        sync.RWMutex
	engine    *action.Engine // replaced when the client reports its roots
	store     report.Store
	tailLines int
}

func (h *handler) currentEngine() *action.Engine {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine
}

// NewServer creates an MCP server with all idleguard tools registered.
func NewServer(cfg *config.Config, r action.CommandRunner, store report.Store, opts ...ServerOption) *mcp.Server {
	if cfg == nil {
		cfg = &config.Config{}
	}

	so := serverOptions{tailLines: DefaultTailLines}
	for _, o := range opts {
		o(&so)
	}

	h := &handler{
		engine:    &action.Engine{Config: cfg, Runner: r},
		store:     store,
		tailLines: so.tailLines,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkspaceFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "idleguard", Version: idleguard.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "idle_run",
		Description: `Run a shell command and kill it if it produces no output for no_output_timeout.

Returns the status (PASS, FAIL, TIMEOUT, ERROR), exit code and the tail of stdout/stderr.
The full output is kept for recent runs and can be read with idle_output.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "idle_output",
		Description: "Read the full captured stdout or stderr of a recent idle_run by run_id.",
	}, h.outputHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "idle_shells",
		Description: "List the supported shells and the arguments each is invoked with.",
	}, h.shellsHandler)

	return s
}

// ServerOption configures the idleguard MCP server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	tailLines int
}

// WithTailLines sets how many trailing lines of each stream idle_run returns.
func WithTailLines(n int) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.tailLines = n
		}
	}
}

// updateWorkspaceFromRoots queries the client for MCP roots and, when the
// first one is a local directory, runs later commands there with the
// .idleguard config found from it. Runners other than *runner.Runner keep
// their own workspace.
func (h *handler) updateWorkspaceFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	workspace := u.Path

	loaded, err := config.Load(workspace)
	if err != nil {
		log.Warn().Err(err).Str("workspace", workspace).Msg("ignoring client root")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.engine.Runner.(*runner.Runner)
	if !ok {
		return
	}
	next := *r
	next.Workspace = workspace
	next.MaxOutput = loaded.Config.MaxOutputBytes()
	next.WaitDelay = loaded.Config.WaitDelay()
	h.engine = &action.Engine{Config: loaded.Config, Runner: &next}
	log.Debug().Str("workspace", workspace).Msg("workspace set from client root")
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
