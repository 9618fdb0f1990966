package app

import (
	"log"

	mcpserver "spectra/internal/mcp"
	"spectra/internal/paths"
	"spectra/internal/service"
)

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It shares the settings and samples files with the desktop shell, which
// notices the changes through its file watchers.
func ServeMCP() {
	layout, err := paths.Resolve()
	if err != nil {
		log.Fatalf("Failed to resolve application directory: %v", err)
	}
	c, err := newCore(layout, service.NopEmitter{})
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}
	defer c.close()
	c.connect()

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Settings:          c.settings,
		Samples:           c.samples,
		Navigation:        c.nav,
		Names:             c.names,
		DB:                c.queryRunner,
		OnSettingsChanged: c.connect,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := mcpSrv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}

// queryRunner is the current client as an mcpserver.QueryRunner, nil when
// not connected.
func (c *core) queryRunner() mcpserver.QueryRunner {
	if db := c.client(); db != nil {
		return db
	}
	return nil
}
