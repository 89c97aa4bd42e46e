// Package database defines database adapter interfaces.
package database

import (
	"context"
	"database/sql"
	"time"
)

// Adapter defines the database adapter interface.
type Adapter interface {
	// Connect establishes a database connection.
	Connect(ctx context.Context) error

	// Disconnect closes the database connection.
	Disconnect(ctx context.Context) error

	// Execute executes a SQL statement.
	Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// Query executes a query that returns rows.
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

	// QueryRow executes a query that returns a single row.
	// It returns nil when the adapter is not connected.
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetDialect returns the SQL dialect.
	GetDialect() SQLDialect
}

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

// DefaultConnectTimeout bounds the initial ping when Config.ConnectTimeout is unset.
const DefaultConnectTimeout = 5 * time.Second

// Config holds database connection configuration.
type Config struct {
	Provider string
	// Driver selects the database/sql driver within a provider.
	// Empty picks the provider default.
	Driver         string
	URL            string
	MaxConnections int
	MaxIdleTime    int // seconds
	ConnectTimeout int // seconds
}

// PingTimeout returns the timeout for the initial ping.
func (c Config) PingTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return time.Duration(c.ConnectTimeout) * time.Second
}
