package db

// ConnectionError reports a failure to establish the scoped connection
// (network, driver, or authentication). The target database was never
// queried.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "connection failed: " + e.Err.Error() }

func (e *ConnectionError) Unwrap() error { return e.Err }

// ExecutionError reports a statement the engine rejected or a query that
// exceeded the per-call timeout. When Timeout is set the scoped connection
// has been discarded, not reused: a killed session may still carry a
// ROWCOUNT guard.
type ExecutionError struct {
	Err     error
	Timeout bool
}

func (e *ExecutionError) Error() string {
	if e.Timeout {
		return "query timed out: " + e.Err.Error()
	}
	return "query failed: " + e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }
