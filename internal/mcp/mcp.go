// Package mcp provides the helmbridge MCP server, registering the helmfile
// tools and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/deixis/helmbridge"
	"github.com/deixis/helmbridge/internal/config"
	"github.com/deixis/helmbridge/internal/executor"
	"github.com/deixis/helmbridge/internal/helmfile"
)

//go:embed instructions.md
var Instructions string

// commandExecutor runs a composed command line under a deadline.
// Implemented by executor.Executor.
type commandExecutor interface {
	Execute(ctx context.Context, command string, timeout time.Duration) *executor.Result
}

// handler holds shared dependencies for all tool handlers.
type handler struct {
	exec commandExecutor
	tool helmfile.Tool
	log  zerolog.Logger
}

// NewServer creates an MCP server with the helmfile tools registered.
func NewServer(cfg *config.Config, exec commandExecutor, log zerolog.Logger) *mcp.Server {
	h := &handler{
		exec: exec,
		tool: helmfile.Tool{Binary: cfg.Binary()},
		log:  log,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "helmbridge", Version: helmbridge.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "helmfile_execute",
		Description: `Execute a helmfile command with support for Unix pipes.

The command runs through the shell, so pipes, redirections, and flags all
work. The helmfile binary is prepended when the command does not already
name it. Returns {"status":"success","output":...} on exit 0, otherwise
{"status":"error","error":{"code":...,"message":...}} where code is one of
TIMEOUT, TERMINATION_ERROR, COMMAND_ERROR, INTERNAL_ERROR.

Examples:
  helmfile list
  helmfile status
  helmfile diff --environment prod
  helmfile list | grep nginx`,
	}, h.executeHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "helmfile_sync",
		Description: `Synchronise helmfile releases from a configuration file.

Runs "helmfile sync -f <helmfile_path>", optionally scoped to a namespace.
Returns the same result shape as helmfile_execute.`,
	}, h.syncHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "helmfile_version",
		Description: "Report the installed helmfile version.",
	}, h.versionHandler)

	return s
}

// resultContent renders an execution result as the fixed JSON shape, both
// as text and as structured content. Command failures travel inside the
// result object, never as protocol errors.
func resultContent(res *executor.Result) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return errorResult(fmt.Sprintf("encoding result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, res, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}

// paramTimeout converts an optional seconds parameter to a duration.
// Zero means "use the executor default".
func paramTimeout(seconds *int) time.Duration {
	if seconds == nil || *seconds <= 0 {
		return 0
	}
	return time.Duration(*seconds) * time.Second
}
