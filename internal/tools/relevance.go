package tools

import (
	"context"
	"strings"

	"github.com/mapache-labs/codemap/internal/retrieval"
	"github.com/mark3labs/mcp-go/mcp"
)

// RelevantContextTool handles the find_relevant_context MCP tool.
type RelevantContextTool struct {
	scorer *retrieval.Scorer
}

// NewRelevantContextTool creates a RelevantContextTool.
func NewRelevantContextTool(scorer *retrieval.Scorer) *RelevantContextTool {
	return &RelevantContextTool{scorer: scorer}
}

// Definition returns the MCP tool definition for find_relevant_context.
func (t *RelevantContextTool) Definition() mcp.Tool {
	return mcp.NewTool("find_relevant_context",
		mcp.WithDescription(
			"Find the subsystems and files relevant to a task. Call this at the "+
				"start of a task with a description of what you're about to do; "+
				"the result ranks matching subsystems and suggests files to read.",
		),
		mcp.WithString("task_description",
			mcp.Required(),
			mcp.Description("Description of the task to find context for"),
		),
	)
}

// Handle processes the find_relevant_context tool call.
func (t *RelevantContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task := strings.TrimSpace(req.GetString("task_description", ""))
	if task == "" {
		return mcp.NewToolResultError("'task_description' is required"), nil
	}

	return jsonResult(t.scorer.FindRelevantContext(task))
}
