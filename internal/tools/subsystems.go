package tools

import (
	"context"
	"errors"

	"github.com/mapache-labs/codemap/internal/index"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListSubsystemsTool handles the list_subsystems MCP tool.
type ListSubsystemsTool struct {
	idx *index.Index
}

// NewListSubsystemsTool creates a ListSubsystemsTool.
func NewListSubsystemsTool(idx *index.Index) *ListSubsystemsTool {
	return &ListSubsystemsTool{idx: idx}
}

// Definition returns the MCP tool definition for list_subsystems.
func (t *ListSubsystemsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_subsystems",
		mcp.WithDescription(
			"List all architectural subsystems with their descriptions and keywords. "+
				"Use this to discover which parts of the codebase are indexed.",
		),
	)
}

// subsystemEntry is the projection returned per subsystem, without file lists.
type subsystemEntry struct {
	Subsystem   string   `json:"subsystem"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Handle processes the list_subsystems tool call. The listing preserves the
// index's load order.
func (t *ListSubsystemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := make([]subsystemEntry, 0, t.idx.Len())
	for _, sub := range t.idx.Subsystems() {
		entries = append(entries, subsystemEntry{
			Subsystem:   sub.Key,
			Name:        sub.Name,
			Description: sub.Description,
			Keywords:    sub.Keywords,
		})
	}
	return jsonResult(map[string]any{"subsystems": entries})
}

// SubsystemFilesTool handles the get_files_for_subsystem MCP tool.
type SubsystemFilesTool struct {
	idx *index.Index
}

// NewSubsystemFilesTool creates a SubsystemFilesTool.
func NewSubsystemFilesTool(idx *index.Index) *SubsystemFilesTool {
	return &SubsystemFilesTool{idx: idx}
}

// Definition returns the MCP tool definition for get_files_for_subsystem.
func (t *SubsystemFilesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_files_for_subsystem",
		mcp.WithDescription(
			"Get the key file paths for a specific subsystem. "+
				"An unknown key returns the full list of valid keys.",
		),
		mcp.WithString("subsystem",
			mcp.Required(),
			mcp.Description("Subsystem key, e.g. 'networking' or 'rendering'"),
		),
	)
}

// Handle processes the get_files_for_subsystem tool call. An unknown key
// yields a structured error payload carrying every valid key, never a
// silent empty result and never a protocol fault.
func (t *SubsystemFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("subsystem", "")
	if key == "" {
		return mcp.NewToolResultError("'subsystem' is required"), nil
	}

	files, err := t.idx.FilesFor(key)
	if err != nil {
		var unknown *index.UnknownSubsystemError
		if errors.As(err, &unknown) {
			return jsonResult(map[string]any{
				"error":     "Unknown subsystem: " + unknown.Key,
				"available": unknown.Available,
			})
		}
		return nil, err
	}

	return jsonResult(files)
}
