// Package main runs the mssql-mcp server: an MCP server that exposes
// read-only query execution and catalog inspection for a SQL Server
// instance to agents without exposing credentials.
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rosql/mssql-mcp/internal/config"
	mcpserver "github.com/rosql/mssql-mcp/internal/server"
)

func main() {
	// stdout carries the MCP transport; all logging goes to stderr.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	s := mcpserver.New(settings)
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("server: %v", err)
	}
}
