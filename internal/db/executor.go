package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ExecuteQuery runs an already-admitted read-only statement against the
// given database and materializes up to limit rows. The caller is
// responsible for validation; the statement text is executed verbatim
// behind the session guards, never rewritten.
//
// Failure modes: *ConnectionError when the scoped connection cannot be
// established, *ExecutionError when the engine rejects the statement or the
// per-call timeout fires. In every case the connection is closed, so a
// session that timed out mid-guard is never reused.
func (c *Client) ExecuteQuery(ctx context.Context, database, query string, limit int) (*ResultSet, error) {
	handle, err := c.open(ctx, database)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer handle.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.settings.QueryTimeout)*time.Second)
	defer cancel()

	return runQuery(ctx, handle, query, limit)
}

// runQuery issues the session guards and the statement as one batch on one
// session: NOCOUNT silences row-count chatter and ROWCOUNT caps what the
// server returns. Sharing the batch means the guards cannot be skipped by
// a follow-up statement (validation already forbids one).
func runQuery(ctx context.Context, handle *sql.DB, query string, limit int) (*ResultSet, error) {
	batch := fmt.Sprintf("SET NOCOUNT ON;\nSET ROWCOUNT %d;\n%s", limit, query)
	rows, err := handle.QueryContext(ctx, batch)
	if err != nil {
		return nil, wrapExecErr(ctx, err)
	}
	defer rows.Close()

	rs, err := shapeRows(rows, limit)
	if err != nil {
		return nil, wrapExecErr(ctx, err)
	}
	return rs, nil
}

// fetchRows runs a fixed-text catalog query with positional @pN parameters.
// Same scoped-connection discipline as ExecuteQuery, without the row-count
// guard: catalog views are small and the text is not caller-controlled.
func (c *Client) fetchRows(ctx context.Context, database, query string, args ...any) ([]map[string]any, error) {
	handle, err := c.open(ctx, database)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer handle.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.settings.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := handle.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapExecErr(ctx, err)
	}
	defer rows.Close()

	rs, err := shapeRows(rows, 0)
	if err != nil {
		return nil, wrapExecErr(ctx, err)
	}
	return rs.Rows, nil
}

func wrapExecErr(ctx context.Context, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded)
	return &ExecutionError{Err: err, Timeout: timeout}
}
