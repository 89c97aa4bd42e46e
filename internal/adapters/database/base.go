package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Conn holds the *sql.DB shared by the provider adapters and implements the
// statement methods of Adapter on top of it.
type Conn struct {
	db *sql.DB
}

// Open opens driverName, applies pool settings from cfg and pings within
// cfg.PingTimeout.
func Open(ctx context.Context, driverName string, cfg Config, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open(driverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxIdleTime(time.Duration(cfg.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(ctx, cfg.PingTimeout())
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Attach sets the connection used by the statement methods.
func (c *Conn) Attach(db *sql.DB) {
	c.db = db
}

// DB returns the underlying pool, nil before Connect.
func (c *Conn) DB() *sql.DB {
	return c.db
}

// Disconnect closes the database connection.
func (c *Conn) Disconnect(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Execute executes a query without returning rows.
func (c *Conn) Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	return c.db.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (c *Conn) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns a single row.
func (c *Conn) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if c.db == nil {
		return nil
	}
	return c.db.QueryRowContext(ctx, query, args...)
}

// Ping checks if the database connection is alive.
func (c *Conn) Ping(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not connected")
	}
	return c.db.PingContext(ctx)
}
