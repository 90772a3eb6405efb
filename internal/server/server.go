// Package server builds the MCP server and registers tools.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rosql/mssql-mcp/internal/config"
	"github.com/rosql/mssql-mcp/internal/db"
	"github.com/rosql/mssql-mcp/internal/sqlguard"
)

const (
	ServerName    = "mssql-mcp"
	ServerVersion = "1.0.0"
)

// New returns an MCP server with all tools registered. settings may be nil
// (only ping works without configuration).
func New(settings *config.Settings) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	Register(s, settings)
	return s
}

// Register adds all tools to s. Each request runs independently on its own
// scoped connection; the only shared state is the immutable settings value.
func Register(s *server.MCPServer, settings *config.Settings) {
	s.AddTool(mcp.NewTool("ping",
		mcp.WithDescription("Simple health check. Returns pong."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(PingOutput{Message: "pong"})
	})

	if settings == nil {
		return
	}

	client := db.NewClient(settings)
	policy := sqlguard.Policy{
		EnforceReadonly: settings.EnforceReadonly,
		MaxQueryChars:   settings.MaxQueryChars,
		MaxRows:         settings.MaxRows,
	}

	s.AddTool(mcp.NewTool("execute_sql",
		mcp.WithDescription("Run a read-only SQL query against a database. Only SELECT "+
			"(optionally WITH-prefixed) statements are admitted; results are capped at a "+
			"configured row limit. The truncated flag means the cap was reached and more "+
			"rows may exist."),
		mcp.WithString("database", mcp.Required(), mcp.Description("Target database name.")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Raw T-SQL query text.")),
		mcp.WithNumber("max_rows", mcp.Description("Desired row cap; non-positive or missing uses the configured ceiling, larger values clamp to it.")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		database, err := req.RequireString("database")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		// Admission first: a rejected query never touches the database.
		if err := sqlguard.Validate(query, policy); err != nil {
			var verr *sqlguard.ValidationError
			if errors.As(err, &verr) {
				slog.Warn("query rejected", "reason", verr.Reason, "token", verr.Token)
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		limit := sqlguard.ResolveRowLimit(req.GetInt("max_rows", 0), policy)
		rs, err := client.ExecuteQuery(ctx, database, query, limit)
		if err != nil {
			slog.Warn("query failed", "database", database, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		slog.Info("query executed", "database", database,
			"row_count", rs.RowCount, "row_limit", rs.RowLimit, "truncated", rs.Truncated)
		return jsonResult(rs)
	})

	s.AddTool(mcp.NewTool("list_databases",
		mcp.WithDescription("List databases visible to the configured login."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return rowsResult(client.ListDatabases(ctx))
	})

	addCatalogTool(s, "list_tables",
		"List tables in the specified database with schema and creation/modification metadata.",
		client.ListTables)
	addCatalogTool(s, "list_views",
		"List views in the specified database along with schema and timestamps.",
		client.ListViews)
	addCatalogTool(s, "list_stored_procedures",
		"List stored procedures in the specified database with metadata.",
		client.ListStoredProcedures)
	addCatalogTool(s, "list_indexes",
		"List indexes for tables in the specified database.",
		client.ListIndexes)

	addObjectCatalogTool(s, "list_columns", "table",
		"List columns of a table: type, length, nullability, identity.",
		client.ListColumns)
	addObjectCatalogTool(s, "list_constraints", "table",
		"List constraints (primary key, unique, foreign key, check) on a table.",
		client.ListConstraints)
	addObjectCatalogTool(s, "list_foreign_keys", "table",
		"List foreign keys declared on a table with referenced columns and actions.",
		client.ListForeignKeys)
	addObjectCatalogTool(s, "list_dependencies", "object",
		"List objects that reference, or are referenced by, the named object.",
		client.ListDependencies)
}

// addCatalogTool registers a fixed-text catalog listing scoped to a database.
func addCatalogTool(s *server.MCPServer, name, description string,
	fetch func(ctx context.Context, database string) ([]map[string]any, error),
) {
	s.AddTool(mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("database", mcp.Required(), mcp.Description("Target database name.")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		database, err := req.RequireString("database")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return rowsResult(fetch(ctx, database))
	})
}

// addObjectCatalogTool registers a catalog listing scoped to a database and
// one named object (table, view, procedure).
func addObjectCatalogTool(s *server.MCPServer, name, argName, description string,
	fetch func(ctx context.Context, database, object string) ([]map[string]any, error),
) {
	s.AddTool(mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("database", mcp.Required(), mcp.Description("Target database name.")),
		mcp.WithString(argName, mcp.Required(), mcp.Description("Name of the "+argName+".")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		database, err := req.RequireString("database")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		object, err := req.RequireString(argName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return rowsResult(fetch(ctx, database, object))
	})
}

func rowsResult(rows []map[string]any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return jsonResult(RowsOutput{Rows: rows, RowCount: len(rows)})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

// PingOutput is the structured result of the ping tool.
type PingOutput struct {
	Message string `json:"message"`
}

// RowsOutput is the structured result of the catalog listing tools.
type RowsOutput struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}
