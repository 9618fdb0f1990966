package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDatabaseTools() {
	s.mcp.AddTool(mcp.NewTool("run_query",
		mcp.WithDescription("Run a read-only SQL query against the configured database. Use ? for parameters. Write statements are refused."),
		mcp.WithString("query", mcp.Description("SQL query (SELECT or WITH)"), mcp.Required()),
		mcp.WithArray("params", mcp.Description("Values for the ? placeholders, in order")),
		mcp.WithNumber("fetchSize", mcp.Description("Maximum rows to return (default 100)")),
	), s.handleRunQuery)
}

type queryResult struct {
	Rows      any  `json:"rows"`
	TotalRows int  `json:"totalRows"`
	HasMore   bool `json:"hasMore"`
}

func (s *Server) handleRunQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	fetchSize := int(getFloat(args, "fetchSize", 100))
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if !isReadOnly(query) {
		return textResult(fmt.Sprintf("Refused: only SELECT/WITH queries are allowed (%s)", truncate(query, 60))), nil
	}

	db := s.db()
	if db == nil {
		return nil, fmt.Errorf("no database connection configured")
	}

	var params []any
	if p, ok := args["params"].([]any); ok {
		params = p
	}
	rows, err := db.FetchReadOnly(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}

	res := queryResult{TotalRows: len(rows)}
	if fetchSize > 0 && len(rows) > fetchSize {
		rows = rows[:fetchSize]
		res.HasMore = true
	}
	res.Rows = rows
	return jsonResult(res)
}

// writeKeywords mark statements that modify data or schema. Any of them
// anywhere in the query, a CTE body included, refuses the query.
var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true,
	"UPSERT": true, "REPLACE": true, "INTO": true, "DROP": true,
	"ALTER": true, "CREATE": true, "TRUNCATE": true, "GRANT": true,
	"REVOKE": true, "EXEC": true, "EXECUTE": true, "CALL": true,
	"COPY": true, "ATTACH": true, "DETACH": true, "PRAGMA": true,
	"VACUUM": true, "LOCK": true,
}

// isReadOnly reports whether query is a single SELECT or WITH statement with
// no write keyword in it. Accepted queries still run in a rolled-back
// transaction.
func isReadOnly(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	q = strings.TrimSuffix(q, ";")
	if strings.Contains(q, ";") {
		return false
	}
	if !strings.HasPrefix(q, "SELECT") && !strings.HasPrefix(q, "WITH") {
		return false
	}
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !(r == '_' || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	for _, w := range words {
		if writeKeywords[w] {
			return false
		}
	}
	return true
}
