package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type versionParams struct{}

func (h *handler) versionHandler(ctx context.Context, req *mcp.CallToolRequest, _ versionParams) (*mcp.CallToolResult, any, error) {
	res := h.exec.Execute(ctx, h.tool.VersionCommand(), 0)
	return resultContent(res)
}
