package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── spectra://settings ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"spectra://settings",
		"Settings",
		mcp.WithMIMEType("application/json"),
	), s.handleSettingsResource)

	// ── spectra://samples ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"spectra://samples",
		"Saved Sample Selection",
		mcp.WithMIMEType("application/json"),
	), s.handleSamplesResource)

	// ── spectra://page/{pageId} ────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"spectra://page/{pageId}",
			"Page Content",
		),
		s.handlePageResource,
	)
}

func (s *Server) handleSettingsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	res := s.settings.Load()
	return jsonContents("spectra://settings", map[string]any{
		"status": res.Status.String(),
		"values": res.Record,
	})
}

func (s *Server) handleSamplesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents("spectra://samples", indexed(s.samples.Open(ctx)))
}

func (s *Server) handlePageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := extractPageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}
	view, err := s.nav.Navigate(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, view)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractPageIDFromURI extracts the page id from "spectra://page/{id}".
func extractPageIDFromURI(uri string) string {
	const prefix = "spectra://page/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	return id
}
