// Package sqlite implements the SQLite database adapter.
package sqlite

import (
	"context"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // cgo driver "sqlite3"
	_ "modernc.org/sqlite"          // pure Go driver "sqlite"

	"github.com/satishbabariya/datatables-go/internal/adapters/database"
)

const (
	// DriverCgo is the mattn/go-sqlite3 driver name.
	DriverCgo = "sqlite3"
	// DriverPure is the modernc.org/sqlite driver name.
	DriverPure = "sqlite"
)

// SQLiteAdapter implements the database.Adapter interface for SQLite.
type SQLiteAdapter struct {
	database.Conn
	config database.Config
}

// NewSQLiteAdapter creates a new SQLite adapter.
func NewSQLiteAdapter(config database.Config) (*SQLiteAdapter, error) {
	switch config.Driver {
	case "":
		config.Driver = DriverCgo
	case DriverCgo, DriverPure:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver: %s", config.Driver)
	}
	return &SQLiteAdapter{config: config}, nil
}

// Driver returns the database/sql driver name in use.
func (a *SQLiteAdapter) Driver() string {
	return a.config.Driver
}

// Connect opens the database file. A single connection is used so that
// in-memory databases survive between statements.
func (a *SQLiteAdapter) Connect(ctx context.Context) error {
	db, err := database.Open(ctx, a.config.Driver, a.config, 1, 1)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	a.Attach(db)
	return nil
}

// GetDialect returns the SQL dialect.
func (a *SQLiteAdapter) GetDialect() database.SQLDialect {
	return database.SQLite
}

// Ensure SQLiteAdapter implements Adapter interface.
var _ database.Adapter = (*SQLiteAdapter)(nil)
