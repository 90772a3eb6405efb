package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	handle, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = handle.Close() })
	return handle, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func guardedBatch(limit int, query string) string {
	return fmt.Sprintf("SET NOCOUNT ON;\nSET ROWCOUNT %d;\n%s", limit, query)
}

func TestRunQuery_shapesRows(t *testing.T) {
	handle, mock := newSQLMock(t)

	mock.ExpectQuery(guardedBatch(10, "SELECT id, name FROM widgets")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "anvil").
			AddRow(int64(2), "hammer"))

	rs, err := runQuery(context.Background(), handle, "SELECT id, name FROM widgets", 10)
	if err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	if len(rs.Columns) != 2 || rs.Columns[0] != "id" || rs.Columns[1] != "name" {
		t.Errorf("Columns = %v", rs.Columns)
	}
	if rs.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", rs.RowCount)
	}
	if rs.RowLimit != 10 {
		t.Errorf("RowLimit = %d, want 10", rs.RowLimit)
	}
	if rs.Truncated {
		t.Error("Truncated = true for result under the cap")
	}
	if rs.Rows[0]["name"] != "anvil" || rs.Rows[1]["id"] != int64(2) {
		t.Errorf("Rows = %v", rs.Rows)
	}
	assertSQLMock(t, mock)
}

func TestRunQuery_truncatedAtLimit(t *testing.T) {
	handle, mock := newSQLMock(t)

	mock.ExpectQuery(guardedBatch(2, "SELECT n FROM numbers")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1).AddRow(2))

	rs, err := runQuery(context.Background(), handle, "SELECT n FROM numbers", 2)
	if err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	if !rs.Truncated {
		t.Error("Truncated = false when row count reached the cap")
	}
	assertSQLMock(t, mock)
}

func TestRunQuery_emptyResult(t *testing.T) {
	handle, mock := newSQLMock(t)

	mock.ExpectQuery(guardedBatch(5, "SELECT n FROM numbers WHERE n < 0")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}))

	rs, err := runQuery(context.Background(), handle, "SELECT n FROM numbers WHERE n < 0", 5)
	if err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	if rs.RowCount != 0 || rs.Truncated {
		t.Errorf("RowCount = %d, Truncated = %v", rs.RowCount, rs.Truncated)
	}
	if rs.Rows == nil {
		t.Error("Rows should be an empty slice, not nil")
	}
	assertSQLMock(t, mock)
}

func TestRunQuery_nullValues(t *testing.T) {
	handle, mock := newSQLMock(t)

	mock.ExpectQuery(guardedBatch(5, "SELECT note FROM widgets")).
		WillReturnRows(sqlmock.NewRows([]string{"note"}).AddRow(nil))

	rs, err := runQuery(context.Background(), handle, "SELECT note FROM widgets", 5)
	if err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	if v, ok := rs.Rows[0]["note"]; !ok || v != nil {
		t.Errorf("NULL should shape to nil, got %v (present=%v)", v, ok)
	}
	assertSQLMock(t, mock)
}

func TestRunQuery_engineError(t *testing.T) {
	handle, mock := newSQLMock(t)

	mock.ExpectQuery(guardedBatch(5, "SELECT * FROM no_such_table")).
		WillReturnError(errors.New("invalid object name 'no_such_table'"))

	_, err := runQuery(context.Background(), handle, "SELECT * FROM no_such_table", 5)
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("runQuery() error = %v, want *ExecutionError", err)
	}
	if execErr.Timeout {
		t.Error("engine error misclassified as timeout")
	}
	assertSQLMock(t, mock)
}

func TestRunQuery_timeout(t *testing.T) {
	handle, mock := newSQLMock(t)

	mock.ExpectQuery(guardedBatch(5, "SELECT slow FROM t")).
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"slow"}).AddRow(1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := runQuery(ctx, handle, "SELECT slow FROM t", 5)
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("runQuery() error = %v, want *ExecutionError", err)
	}
	if !execErr.Timeout {
		t.Errorf("timeout not classified: %v", execErr)
	}
}
