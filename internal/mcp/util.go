package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// textResult builds a successful tool result with a single text
// segment.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult builds a failed tool result carrying a human-readable
// cause. Domain failures reach the caller only this way; the
// transport never sees them as exceptions.
func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
