// Package resources implements MCP resource handlers for codemap.
//
// Resources provide read-only data the host can pull for context. They use
// URI-based addressing (codemap://...) following MCP conventions.
package resources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mapache-labs/codemap/internal/index"
	"github.com/mark3labs/mcp-go/mcp"
)

// architectureDoc is the document served by the architecture resource.
const architectureDoc = "architecture.md"

// Handler manages codemap resource endpoints.
type Handler struct {
	idx     *index.Index
	docsDir string
}

// NewHandler creates a resource Handler over the index and docs directory.
func NewHandler(idx *index.Index, docsDir string) *Handler {
	return &Handler{idx: idx, docsDir: docsDir}
}

// ArchitectureResource returns the MCP resource definition for the
// architecture overview document.
func (h *Handler) ArchitectureResource() mcp.Resource {
	return mcp.NewResource(
		"codemap://architecture",
		"Architecture Overview",
		mcp.WithResourceDescription("Full architecture overview document"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleArchitecture serves the architecture overview from the docs
// directory. A missing document is reported in the content, not as a fault.
func (h *Handler) HandleArchitecture(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := os.ReadFile(filepath.Join(h.docsDir, architectureDoc))
	if err != nil {
		return textResource(req.Params.URI, "Architecture document not found."), nil
	}
	return textResource(req.Params.URI, string(data)), nil
}

// FileMapResource returns the MCP resource definition for the generated
// subsystem file map.
func (h *Handler) FileMapResource() mcp.Resource {
	return mcp.NewResource(
		"codemap://file-map",
		"File Map",
		mcp.WithResourceDescription("Key file locations organized by subsystem"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleFileMap renders the file map from the subsystem index.
func (h *Handler) HandleFileMap(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var b strings.Builder
	b.WriteString("# File Map\n\nKey file locations organized by subsystem.\n")

	for _, sub := range h.idx.Subsystems() {
		fmt.Fprintf(&b, "\n## %s\n*%s*\n\n", sub.Name, sub.Description)
		for _, f := range sub.Files {
			fmt.Fprintf(&b, "- `%s`\n", h.idx.QualifyFile(f))
		}
	}

	return textResource(req.Params.URI, b.String()), nil
}

func textResource(uri, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     text,
		},
	}
}
