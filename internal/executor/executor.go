// Package executor runs validated, read-only SQL against the shared pool and
// materializes the full result set in memory. The row count is bounded only by
// the LIMIT the generator was instructed to emit; nothing here rewrites SQL.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ExecutionError wraps a database-level failure (malformed SQL, missing
// relation, permission error). Never retried: re-sending the same SQL would
// fail the same way.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// QueryTimeoutError reports an execution that finished but blew the
// wall-clock budget. The rows are discarded.
type QueryTimeoutError struct {
	Elapsed time.Duration
	Budget  time.Duration
}

func (e *QueryTimeoutError) Error() string {
	return fmt.Sprintf("query exceeded %s budget (took %s)", e.Budget, e.Elapsed)
}

// Result holds the fully materialized result set. Rows preserve column order
// through Columns; each row maps column name to the scanned value.
type Result struct {
	Columns  []string
	Rows     []map[string]any
	Duration time.Duration
}

type Executor struct {
	db     *sql.DB
	budget time.Duration
}

func New(db *sql.DB, budget time.Duration) *Executor {
	if budget <= 0 {
		budget = 5 * time.Second
	}
	return &Executor{db: db, budget: budget}
}

// Execute runs sqlText exactly once. The budget check happens after the rows
// are materialized: a slow query is detected and reported as a timeout, not
// preempted mid-flight. The pool connection is released on every path via the
// rows Close.
func (e *Executor) Execute(ctx context.Context, sqlText string) (Result, error) {
	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, &ExecutionError{Err: err}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, &ExecutionError{Err: err}
	}

	result := Result{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return Result{}, &ExecutionError{Err: err}
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			row[name] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, &ExecutionError{Err: err}
	}

	result.Duration = time.Since(start)
	if result.Duration > e.budget {
		return Result{}, &QueryTimeoutError{Elapsed: result.Duration, Budget: e.budget}
	}
	return result, nil
}

// normalizeValue makes driver-raw values JSON-friendly: byte slices become
// strings so text columns do not serialize as base64.
func normalizeValue(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
