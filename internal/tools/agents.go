package tools

import (
	"context"
	"strings"

	"github.com/mapache-labs/codemap/internal/index"
	"github.com/mapache-labs/codemap/internal/retrieval"
	"github.com/mark3labs/mcp-go/mcp"
)

// SuggestAgentTool handles the suggest_agent MCP tool.
type SuggestAgentTool struct {
	suggester *retrieval.Suggester
}

// NewSuggestAgentTool creates a SuggestAgentTool.
func NewSuggestAgentTool(sg *retrieval.Suggester) *SuggestAgentTool {
	return &SuggestAgentTool{suggester: sg}
}

// Definition returns the MCP tool definition for suggest_agent.
func (t *SuggestAgentTool) Definition() mcp.Tool {
	return mcp.NewTool("suggest_agent",
		mcp.WithDescription(
			"Suggest which specialized agent should handle a task. Returns the "+
				"top recommendation with a confidence tier (high/medium/low/none), "+
				"the top 3 scored agents with their matched triggers, and a "+
				"disambiguation note when the top scores tie exactly.",
		),
		mcp.WithString("task_description",
			mcp.Required(),
			mcp.Description("Description of the task you're about to perform"),
		),
	)
}

// Handle processes the suggest_agent tool call.
func (t *SuggestAgentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task := strings.TrimSpace(req.GetString("task_description", ""))
	if task == "" {
		return mcp.NewToolResultError("'task_description' is required"), nil
	}

	return jsonResult(t.suggester.SuggestAgent(task))
}

// ListAgentsTool handles the list_agents MCP tool.
type ListAgentsTool struct {
	reg *index.Registry
}

// NewListAgentsTool creates a ListAgentsTool.
func NewListAgentsTool(reg *index.Registry) *ListAgentsTool {
	return &ListAgentsTool{reg: reg}
}

// Definition returns the MCP tool definition for list_agents.
func (t *ListAgentsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_agents",
		mcp.WithDescription(
			"List all registered specialized agents with their descriptions, "+
				"capability tiers, and trigger phrases.",
		),
	)
}

// agentEntry is the projection returned per agent.
type agentEntry struct {
	Agent       string   `json:"agent"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tier        string   `json:"tier"`
	Triggers    []string `json:"triggers"`
}

// Handle processes the list_agents tool call, preserving registry load order.
func (t *ListAgentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents := t.reg.Agents()
	entries := make([]agentEntry, 0, len(agents))
	for i := range agents {
		entries = append(entries, agentEntry{
			Agent:       agents[i].ID,
			Name:        agents[i].Name,
			Description: agents[i].Description,
			Tier:        agents[i].Tier,
			Triggers:    agents[i].RawTriggers(),
		})
	}
	return jsonResult(map[string]any{"agents": entries})
}
