package mcpserver

import (
	"context"
	"fmt"

	"spectra/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSampleTools() {
	// ── list_samples ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_samples",
		mcp.WithDescription("List the saved sample selection (product and time range per row)"),
	), s.handleListSamples)

	// ── add_sample ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_sample",
		mcp.WithDescription("Append a row to the saved sample selection. Dates are dd.MM.yyyy, times HH:mm; the end must be after the start."),
		mcp.WithNumber("productId", mcp.Description("Product id"), mcp.Required()),
		mcp.WithString("productText", mcp.Description("Product label as typed by the user")),
		mcp.WithString("dateFrom", mcp.Description("Start date, dd.MM.yyyy"), mcp.Required()),
		mcp.WithString("timeFrom", mcp.Description("Start time, HH:mm"), mcp.Required()),
		mcp.WithString("dateTo", mcp.Description("End date, dd.MM.yyyy"), mcp.Required()),
		mcp.WithString("timeTo", mcp.Description("End time, HH:mm"), mcp.Required()),
	), s.handleAddSample)

	// ── delete_sample ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_sample",
		mcp.WithDescription("Remove a row from the saved sample selection by its position (0-based, as returned by list_samples)"),
		mcp.WithNumber("index", mcp.Description("Row position"), mcp.Required()),
	), s.handleDeleteSample)

	// ── resolve_product ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resolve_product",
		mcp.WithDescription(`Look up the display name of an active product. Returns "-1" when unknown.`),
		mcp.WithNumber("productId", mcp.Description("Product id"), mcp.Required()),
	), s.handleResolveProduct)
}

// indexedSample is a saved row with its position, which is stable between
// list_samples and delete_sample as long as the file is not edited meanwhile.
type indexedSample struct {
	Index int `json:"index"`
	domain.SampleRow
}

func indexed(rows []domain.SampleRow) []indexedSample {
	out := make([]indexedSample, len(rows))
	for i, r := range rows {
		out[i] = indexedSample{Index: i, SampleRow: r}
	}
	return out
}

func (s *Server) handleListSamples(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(indexed(s.samples.Open(ctx)))
}

func (s *Server) handleAddSample(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id := getFloat(args, "productId", -1)
	if id < 0 {
		return nil, fmt.Errorf("productId is required")
	}
	row := domain.SampleRow{
		ProductID:   int64(id),
		ProductText: req.GetString("productText", ""),
		DateFrom:    req.GetString("dateFrom", ""),
		TimeFrom:    req.GetString("timeFrom", ""),
		DateTo:      req.GetString("dateTo", ""),
		TimeTo:      req.GetString("timeTo", ""),
	}

	s.samples.Open(ctx)
	if _, err := s.samples.Add(ctx, row); err != nil {
		return nil, fmt.Errorf("add sample: %w", err)
	}
	return jsonResult(indexed(s.samples.Accept(ctx)))
}

func (s *Server) handleDeleteSample(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := int(getFloat(req.GetArguments(), "index", -1))

	s.samples.Open(ctx)
	if !s.samples.DeleteAt(ctx, index) {
		return nil, fmt.Errorf("no sample at index %d", index)
	}
	return jsonResult(indexed(s.samples.Accept(ctx)))
}

func (s *Server) handleResolveProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := getFloat(req.GetArguments(), "productId", -1)
	if id < 0 {
		return nil, fmt.Errorf("productId is required")
	}
	if s.names == nil {
		return textResult("-1"), nil
	}
	return textResult(s.names.Resolve(ctx, int64(id))), nil
}
