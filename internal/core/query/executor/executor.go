// Package executor implements query execution.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/satishbabariya/datatables-go/internal/adapters/database"
	"github.com/satishbabariya/datatables-go/internal/adapters/telemetry"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// QueryExecutor implements domain.QueryExecutor over a database adapter.
type QueryExecutor struct {
	db        database.Adapter
	telemetry telemetry.Telemetry
}

// Option configures a QueryExecutor.
type Option func(*QueryExecutor)

// WithTelemetry records every statement on t.
func WithTelemetry(t telemetry.Telemetry) Option {
	return func(e *QueryExecutor) {
		if t != nil {
			e.telemetry = t
		}
	}
}

// NewQueryExecutor creates a new query executor.
func NewQueryExecutor(db database.Adapter, opts ...Option) *QueryExecutor {
	e := &QueryExecutor{
		db:        db,
		telemetry: telemetry.NewNoopTelemetry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the dialect of the underlying adapter.
func (e *QueryExecutor) Dialect() domain.SQLDialect {
	if e.db == nil {
		return domain.SQLite
	}
	return domain.SQLDialect(e.db.GetDialect())
}

// FetchRows executes a statement and scans every row into a map.
func (e *QueryExecutor) FetchRows(ctx context.Context, sql domain.SQL) ([]domain.Row, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database adapter not initialized")
	}

	start := time.Now()
	results, err := e.fetch(ctx, sql)
	e.record(ctx, "fetch", sql, start, int64(len(results)), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (e *QueryExecutor) fetch(ctx context.Context, sql domain.SQL) ([]domain.Row, error) {
	rows, err := e.db.Query(ctx, sql.Query, sql.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make([]domain.Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(domain.Row, len(columns))
		for i, col := range columns {
			// Text columns arrive as []byte from some drivers.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

// Count executes a statement whose single column is a row count.
func (e *QueryExecutor) Count(ctx context.Context, sql domain.SQL) (int64, error) {
	if e.db == nil {
		return 0, fmt.Errorf("database adapter not initialized")
	}

	start := time.Now()
	var n int64
	row := e.db.QueryRow(ctx, sql.Query, sql.Args...)
	err := domain.ErrNotConnected
	if row != nil {
		err = row.Scan(&n)
	}
	if err != nil {
		err = fmt.Errorf("failed to count rows: %w", err)
	}
	e.record(ctx, "count", sql, start, n, err)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (e *QueryExecutor) record(ctx context.Context, op string, sql domain.SQL, start time.Time, rows int64, err error) {
	e.telemetry.RecordQuery(ctx, telemetry.QueryInfo{
		Operation: op,
		Duration:  time.Since(start),
		Success:   err == nil,
		Rows:      rows,
	})
	if err != nil {
		e.telemetry.RecordError(ctx, telemetry.ErrorInfo{
			Error:     err,
			Operation: op,
			Query:     sql.Query,
		})
	}
}

// Ensure QueryExecutor implements domain.QueryExecutor.
var _ domain.QueryExecutor = (*QueryExecutor)(nil)
