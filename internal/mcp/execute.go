package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type executeParams struct {
	Command string `json:"command" jsonschema:"Complete helmfile command to execute, including any pipes and flags."`
	Timeout *int   `json:"timeout,omitempty" jsonschema:"Maximum execution time in seconds. Default: 300."`
}

func (h *handler) executeHandler(ctx context.Context, req *mcp.CallToolRequest, params executeParams) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.Command) == "" {
		return errorResult("command is required")
	}

	command := h.tool.Normalize(params.Command)

	piped := ""
	if strings.Contains(command, "|") {
		piped = " piped"
	}
	h.log.Info().Str("command", command).Msgf("executing%s helmfile command", piped)

	res := h.exec.Execute(ctx, command, paramTimeout(params.Timeout))
	return resultContent(res)
}
