// Package domain contains the core entities and interfaces shared by the table engine.
package domain

import (
	"context"
	"errors"
)

// SQLDialect represents a SQL dialect.
type SQLDialect string

const (
	// PostgreSQL dialect.
	PostgreSQL SQLDialect = "postgres"
	// MySQL dialect.
	MySQL SQLDialect = "mysql"
	// SQLite dialect.
	SQLite SQLDialect = "sqlite"
)

// SQL represents a compiled statement with its positional bind values.
type SQL struct {
	Query   string
	Args    []interface{}
	Dialect SQLDialect
}

// Row is a single result row keyed by column name.
type Row map[string]interface{}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ColumnFunc computes a column value from a read-only view of a row.
type ColumnFunc func(row Row) interface{}

// LikePosition controls where wildcards are placed around a LIKE term.
type LikePosition string

const (
	// LikeBoth matches the term anywhere.
	LikeBoth LikePosition = "both"
	// LikeBefore places the wildcard before the term (suffix match).
	LikeBefore LikePosition = "before"
	// LikeAfter places the wildcard after the term (prefix match).
	LikeAfter LikePosition = "after"
)

// SortDirection represents a normalized sort direction.
type SortDirection string

const (
	// Asc sorts ascending.
	Asc SortDirection = "ASC"
	// Desc sorts descending.
	Desc SortDirection = "DESC"
)

// Errors returned by the engine and its adapters.
var (
	ErrNotConnected = errors.New("database not connected")
	ErrNoTable      = errors.New("no source table configured")
	ErrUnknownTable = errors.New("unknown table")
)

// QueryExecutor runs compiled statements against a data source.
type QueryExecutor interface {
	// FetchRows executes a statement and returns every row.
	FetchRows(ctx context.Context, sql SQL) ([]Row, error)

	// Count executes a statement returning a single integer column.
	Count(ctx context.Context, sql SQL) (int64, error)

	// Dialect returns the SQL dialect of the underlying source.
	Dialect() SQLDialect
}
