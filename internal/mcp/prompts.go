package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("build_sample_selection",
		mcp.WithPromptDescription("Guide through assembling a sample selection for one product over a period"),
		mcp.WithArgument("product",
			mcp.ArgumentDescription("Product id or name"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("period",
			mcp.ArgumentDescription("Period to cover, e.g. 'March 2024, day shift'"),
			mcp.RequiredArgument(),
		),
	), s.handleSampleSelectionPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("check_connection",
		mcp.WithPromptDescription("Diagnose why the Products page cannot reach the database"),
	), s.handleCheckConnectionPrompt)
}

func (s *Server) handleSampleSelectionPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	product := req.Params.Arguments["product"]
	period := req.Params.Arguments["period"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Sample selection for %s over %s", product, period),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a sample selection for product "%s" covering %s. Follow these steps:

1. If the product is given by name, use open_page with pageId "products" to find its id
2. Use resolve_product to confirm the id maps to an active product (anything but "-1")
3. Use list_samples to see what is already selected and avoid overlapping ranges
4. Add one row per range with add_sample (dates dd.MM.yyyy, times HH:mm, end after start)
5. The selection holds at most 100 rows; stop and report if it fills up
6. Finish with list_samples and summarise the rows you added`, product, period),
				},
			},
		},
	}, nil
}

func (s *Server) handleCheckConnectionPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Diagnose the database connection",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: `The Products page cannot load. Find out why:

1. Use get_settings and check the status; "degraded" means the settings file is unreadable and must be fixed by hand
2. Use get_profile to see which database type, host or server and database are in effect
3. Run run_query with "SELECT 1" to test the connection
4. Report the likely cause and the set_setting calls that would fix it, but do not change settings without asking`,
				},
			},
		},
	}, nil
}
