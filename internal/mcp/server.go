package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"spectra/internal/domain"
	"spectra/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for Spectra.
// It exposes tools, resources, and prompts so AI agents can read the settings,
// browse pages and edit the sample selection.
type Server struct {
	mcp *server.MCPServer

	settings   *service.SettingsService
	samples    *service.SampleService
	nav        *service.NavigationService
	names      service.NameResolver
	db         func() QueryRunner
	onSettings func()
}

// QueryRunner runs agent-supplied queries. Implementations must not let the
// query change data; dbclient.Client does this with a rolled-back transaction.
type QueryRunner interface {
	FetchReadOnly(ctx context.Context, query string, params []any) ([]domain.Row, error)
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Settings   *service.SettingsService
	Samples    *service.SampleService
	Navigation *service.NavigationService
	Names      service.NameResolver
	// DB returns the current data-access client, or nil when not connected.
	DB func() QueryRunner
	// OnSettingsChanged is called after a tool changed the settings file.
	OnSettingsChanged func()
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		settings:   deps.Settings,
		samples:    deps.Samples,
		nav:        deps.Navigation,
		names:      deps.Names,
		db:         deps.DB,
		onSettings: deps.OnSettingsChanged,
	}
	if s.db == nil {
		s.db = func() QueryRunner { return nil }
	}

	s.mcp = server.NewMCPServer(
		"spectra-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerSettingsTools()
	s.registerNavigationTools()
	s.registerSampleTools()
	s.registerDatabaseTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}
