package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type syncParams struct {
	HelmfilePath string `json:"helmfile_path" jsonschema:"Path to the helmfile configuration file."`
	Namespace    string `json:"namespace,omitempty" jsonschema:"Kubernetes namespace to target. The -n flag is omitted when empty."`
	Timeout      *int   `json:"timeout,omitempty" jsonschema:"Maximum execution time in seconds. Default: 300."`
}

func (h *handler) syncHandler(ctx context.Context, req *mcp.CallToolRequest, params syncParams) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.HelmfilePath) == "" {
		return errorResult("helmfile_path is required")
	}

	command := h.tool.Sync(params.HelmfilePath, params.Namespace)
	h.log.Info().Str("command", command).Msg("syncing helmfile releases")

	res := h.exec.Execute(ctx, command, paramTimeout(params.Timeout))
	return resultContent(res)
}
