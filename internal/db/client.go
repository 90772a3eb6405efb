// Package db provides scoped SQL Server connections, the bounded read-only
// query executor, and the fixed-text catalog queries.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/rosql/mssql-mcp/internal/config"
)

const appName = "mssql-mcp"

// Client opens per-request scoped connections to the configured SQL Server
// instance. It holds no connection state itself: every call gets its own
// session and the session is closed on every exit path, so a timed-out or
// failed call can never leak server-side session state into a later one.
type Client struct {
	settings *config.Settings
}

// NewClient returns a client for the configured server. settings must not
// be mutated afterwards.
func NewClient(settings *config.Settings) *Client {
	return &Client{settings: settings}
}

// dsn builds a go-mssqldb connection URL scoped to the given database.
// With no configured user the driver falls back to integrated
// authentication where the platform supports it. Never log the result.
func (c *Client) dsn(database string) string {
	host := c.settings.Server
	if c.settings.Port != "" {
		host += ":" + c.settings.Port
	}

	q := url.Values{}
	q.Set("database", database)
	q.Set("app name", appName)
	q.Set("encrypt", strconv.FormatBool(c.settings.Encrypt))
	q.Set("trustservercertificate", strconv.FormatBool(c.settings.TrustServerCertificate))
	q.Set("dial timeout", strconv.Itoa(c.settings.ConnectionTimeout))

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		RawQuery: q.Encode(),
	}
	if c.settings.User != "" {
		u.User = url.UserPassword(c.settings.User, c.settings.Password)
	}
	return u.String()
}

// open establishes a scoped handle to the given database. The handle is
// capped at a single underlying connection so everything issued through it
// shares one session. Callers must Close it on every exit path.
func (c *Client) open(ctx context.Context, database string) (*sql.DB, error) {
	if database == "" {
		database = c.settings.Database
	}
	handle, err := sql.Open("sqlserver", c.dsn(database))
	if err != nil {
		return nil, fmt.Errorf("sqlserver open: %w", err)
	}
	handle.SetMaxOpenConns(1)
	handle.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(c.settings.ConnectionTimeout)*time.Second)
	defer cancel()
	if err := handle.PingContext(pingCtx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("sqlserver ping: %w", err)
	}
	return handle, nil
}
