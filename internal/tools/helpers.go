// Package tools implements the MCP tool handlers for the codemap query
// operations.
//
// Each tool follows the same pattern: a struct with dependencies injected
// via constructor, Definition() returning the mcp.Tool schema, and Handle()
// processing the request. All handlers are read-only over the immutable
// index tables, so they are safe for concurrent calls.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// jsonResult marshals a structured result envelope as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}
