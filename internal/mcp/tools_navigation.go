package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerNavigationTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the pages of the navigation tree"),
	), s.handleListPages)

	// ── open_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_page",
		mcp.WithDescription("Load a page and return its content. Pages without data return placeholder text."),
		mcp.WithString("pageId",
			mcp.Description("ID of the page, e.g. products"),
			mcp.Required(),
		),
	), s.handleOpenPage)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.nav.Pages())
}

func (s *Server) handleOpenPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	// Sample rows live in memory; make sure the page shows what is on disk.
	if pageID == "samples" && s.samples != nil {
		s.samples.Open(ctx)
	}
	view, err := s.nav.Navigate(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return jsonResult(view)
}
