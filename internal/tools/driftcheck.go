package tools

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/mapache-labs/codemap/internal/drift"
	"github.com/mark3labs/mcp-go/mcp"
)

// DriftCheckTool handles the context_drift_check MCP tool. It is a scanner:
// it reports which subsystems had code changes without doc updates and
// whether the last sessions were debugging-heavy, and leaves the decision
// about updating docs to the caller.
type DriftCheckTool struct {
	checker *drift.Checker
}

// NewDriftCheckTool creates a DriftCheckTool.
func NewDriftCheckTool(c *drift.Checker) *DriftCheckTool {
	return &DriftCheckTool{checker: c}
}

// Definition returns the MCP tool definition for context_drift_check.
func (t *DriftCheckTool) Definition() mcp.Tool {
	return mcp.NewTool("context_drift_check",
		mcp.WithDescription(
			"Check recent commits and session transcripts for context drift: "+
				"subsystem code changed without its documentation, or a "+
				"debugging-heavy session that may have revealed doc gaps. "+
				"Empty output means no warnings. Warnings auto-dismiss after "+
				"being shown twice without new commits.",
		),
		mcp.WithBoolean("dismiss",
			mcp.Description("Dismiss the current warnings at the current commit"),
		),
	)
}

// Handle processes the context_drift_check tool call. The check never fails
// the session: scanner errors degrade to an empty report.
func (t *DriftCheckTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "dismiss", false) {
		head, err := t.checker.Dismiss(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("dismissing drift warnings: %v", err)), nil
		}
		if head == "" {
			return mcp.NewToolResultText("Nothing to dismiss: no commit found."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Drift warnings dismissed at %s.", head[:8])), nil
	}

	report := t.checker.Check(ctx)
	if report.Empty() {
		return mcp.NewToolResultText("No context drift detected."), nil
	}

	return mcp.NewToolResultText(formatReport(report)), nil
}

// formatReport renders the drift report grouped by priority tier, matching
// the shape injected into session context.
func formatReport(r *drift.Report) string {
	var parts []string

	if len(r.Findings) > 0 {
		remaining := max(0, r.MaxShows-r.TimesShown)
		dismissNote := fmt.Sprintf("(showing %d/%d, auto-dismisses after %d more)",
			r.TimesShown, r.MaxShows, remaining)

		high := filterByPriority(r.Findings, drift.PriorityHigh)
		medium := filterByPriority(r.Findings, drift.PriorityMedium)

		if len(high) > 0 {
			lines := []string{fmt.Sprintf("CONTEXT DRIFT [HIGH, update recommended] %s:", dismissNote)}
			for _, f := range high[:min(len(high), 3)] {
				lines = append(lines, findingLine(f, "update"))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
		if len(medium) > 0 {
			lines := []string{fmt.Sprintf("CONTEXT DRIFT [MEDIUM, mention to user] %s:", dismissNote)}
			for _, f := range medium[:min(len(medium), 3)] {
				lines = append(lines, findingLine(f, "consider"))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}

	if r.Session != nil {
		s := r.Session
		parts = append(parts, fmt.Sprintf(
			"DEBUGGING SESSION: Last session was debugging-heavy "+
				"(%d edit-build cycles, %d debug prompts, score %d/100). "+
				"If bugs revealed gaps in documentation, consider updating "+
				"relevant context docs or agent descriptions with lessons learned.",
			s.EditBuildCycles, s.DebugPrompts, s.Score,
		))
	}

	return strings.Join(parts, "\n\n")
}

func filterByPriority(findings []drift.Finding, priority string) []drift.Finding {
	var out []drift.Finding
	for _, f := range findings {
		if f.Priority == priority {
			out = append(out, f)
		}
	}
	return out
}

func findingLine(f drift.Finding, verb string) string {
	examples := make([]string, 0, 2)
	for _, cf := range f.CodeFiles[:min(len(f.CodeFiles), 2)] {
		examples = append(examples, path.Base(cf))
	}
	return fmt.Sprintf("  - %s (%s) -> %s: %s",
		f.Subsystem,
		strings.Join(examples, ", "),
		verb,
		strings.Join(f.ExpectedDocs[:min(len(f.ExpectedDocs), 3)], ", "),
	)
}
