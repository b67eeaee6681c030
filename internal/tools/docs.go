package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/mapache-labs/codemap/internal/retrieval"
	"github.com/mark3labs/mcp-go/mcp"
)

// ContextFilesTool handles the get_context_files MCP tool.
type ContextFilesTool struct {
	search *retrieval.DocSearch
}

// NewContextFilesTool creates a ContextFilesTool.
func NewContextFilesTool(ds *retrieval.DocSearch) *ContextFilesTool {
	return &ContextFilesTool{search: ds}
}

// Definition returns the MCP tool definition for get_context_files.
func (t *ContextFilesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_context_files",
		mcp.WithDescription(
			"List all available context documents with their paths, sizes, and "+
				"descriptions. Use search_context_documents to look inside them.",
		),
	)
}

// Handle processes the get_context_files tool call.
func (t *ContextFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listing, err := t.search.List()
	if err != nil {
		if errors.Is(err, retrieval.ErrDocsDirMissing) {
			return jsonResult(map[string]any{"error": "Context directory not found"})
		}
		return nil, err
	}
	return jsonResult(listing)
}

// SearchDocsTool handles the search_context_documents MCP tool.
type SearchDocsTool struct {
	search *retrieval.DocSearch
}

// NewSearchDocsTool creates a SearchDocsTool.
func NewSearchDocsTool(ds *retrieval.DocSearch) *SearchDocsTool {
	return &SearchDocsTool{search: ds}
}

// Definition returns the MCP tool definition for search_context_documents.
func (t *SearchDocsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_context_documents",
		mcp.WithDescription(
			"Full-text search across all context documents. Each match comes "+
				"with the surrounding lines for context, and subsystems whose "+
				"name, description, or keywords match are cross-referenced.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term or phrase, matched case-insensitively"),
		),
	)
}

// Handle processes the search_context_documents tool call.
func (t *SearchDocsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	result, err := t.search.Search(query)
	if err != nil {
		if errors.Is(err, retrieval.ErrDocsDirMissing) {
			return jsonResult(map[string]any{"error": "Context directory not found"})
		}
		return nil, err
	}
	return jsonResult(result)
}
