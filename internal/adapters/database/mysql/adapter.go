// Package mysql implements the MySQL database adapter.
package mysql

import (
	"context"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/satishbabariya/datatables-go/internal/adapters/database"
)

// MySQLAdapter implements the database.Adapter interface for MySQL.
type MySQLAdapter struct {
	database.Conn
	config database.Config
}

// NewMySQLAdapter creates a new MySQL adapter.
func NewMySQLAdapter(config database.Config) (*MySQLAdapter, error) {
	return &MySQLAdapter{config: config}, nil
}

// Connect establishes a connection to the MySQL database.
func (a *MySQLAdapter) Connect(ctx context.Context) error {
	db, err := database.Open(ctx, "mysql", a.config, a.config.MaxConnections, a.config.MaxConnections/2)
	if err != nil {
		return err
	}
	a.Attach(db)
	return nil
}

// GetDialect returns the SQL dialect.
func (a *MySQLAdapter) GetDialect() database.SQLDialect {
	return database.MySQL
}

// Ensure MySQLAdapter implements Adapter interface.
var _ database.Adapter = (*MySQLAdapter)(nil)
