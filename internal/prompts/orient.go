// Package prompts implements the MCP prompts exposed by codemap.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OrientPrompt handles the codemap-orient MCP prompt. It instructs the AI
// to pull relevant context before starting work on a task.
type OrientPrompt struct{}

// NewOrientPrompt creates an OrientPrompt.
func NewOrientPrompt() *OrientPrompt {
	return &OrientPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OrientPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("codemap-orient",
		mcp.WithPromptDescription(
			"Orient yourself before starting a task: find the relevant "+
				"subsystems, files, and the right specialized agent.",
		),
		mcp.WithArgument("task",
			mcp.ArgumentDescription("The task you're about to work on"),
		),
	)
}

// Handle processes the codemap-orient prompt request.
func (p *OrientPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	task := req.Params.Arguments["task"]
	if task == "" {
		task = "the task I'm about to describe"
	}

	return &mcp.GetPromptResult{
		Description: "Orient on a task",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Before writing any code for " + task + ":\n\n" +
						"1. Call `find_relevant_context` with the task description and read the suggested files\n" +
						"2. Call `suggest_agent`; if confidence is high or medium, hand the task to that agent\n" +
						"3. Call `search_context_documents` for any unfamiliar terms you encounter\n" +
						"4. Call `context_drift_check` and mention any warnings to me",
				),
			},
		},
	}, nil
}
