package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSettingsTools() {
	// ── get_settings ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Read the whole settings record and whether it was loaded, defaulted or degraded"),
	), s.handleGetSettings)

	// ── get_setting ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_setting",
		mcp.WithDescription("Read one settings value"),
		mcp.WithString("key",
			mcp.Description("Settings key, e.g. db_type or host"),
			mcp.Required(),
		),
	), s.handleGetSetting)

	// ── set_setting ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_setting",
		mcp.WithDescription("Write one settings value. The value is parsed as JSON when possible, otherwise stored as a string. The desktop app reconnects on its own."),
		mcp.WithString("key",
			mcp.Description("Settings key"),
			mcp.Required(),
		),
		mcp.WithString("value",
			mcp.Description(`Value as JSON (e.g. 5433, "db.lab", true) or plain text`),
			mcp.Required(),
		),
	), s.handleSetSetting)

	// ── unset_setting ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("unset_setting",
		mcp.WithDescription("Remove a settings key"),
		mcp.WithString("key",
			mcp.Description("Settings key"),
			mcp.Required(),
		),
	), s.handleUnsetSetting)

	// ── get_profile ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_profile",
		mcp.WithDescription("Show the database connection profile derived from the settings (password omitted)"),
	), s.handleGetProfile)
}

func (s *Server) handleGetSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := s.settings.Load()
	out := map[string]any{
		"status": res.Status.String(),
		"values": res.Record,
	}
	if res.Err != nil {
		out["error"] = res.Err.Error()
	}
	return jsonResult(out)
}

func (s *Server) handleGetSetting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	return jsonResult(map[string]any{"key": key, "value": s.settings.Get(key, nil)})
}

func (s *Server) handleSetSetting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	raw := req.GetString("value", "")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}

	var value any
	if err := parseJSON(raw, &value); err != nil {
		value = raw
	}
	if f, ok := value.(float64); ok && f == float64(int64(f)) {
		value = int64(f)
	}

	if !s.settings.Set(ctx, key, value) {
		return nil, fmt.Errorf("settings file could not be written (see log)")
	}
	if s.onSettings != nil {
		s.onSettings()
	}
	return textResult(fmt.Sprintf("%s updated", key)), nil
}

func (s *Server) handleUnsetSetting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	if !s.settings.Unset(ctx, key) {
		return nil, fmt.Errorf("settings file could not be written (see log)")
	}
	if s.onSettings != nil {
		s.onSettings()
	}
	return textResult(fmt.Sprintf("%s removed", key)), nil
}

func (s *Server) handleGetProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.settings.Profile())
}
