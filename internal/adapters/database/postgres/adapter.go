// Package postgres implements the PostgreSQL database adapter.
package postgres

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver "pgx"
	_ "github.com/lib/pq"              // driver "postgres"

	"github.com/satishbabariya/datatables-go/internal/adapters/database"
)

const (
	// DriverPQ is the lib/pq driver name.
	DriverPQ = "postgres"
	// DriverPGX is the pgx stdlib driver name.
	DriverPGX = "pgx"
)

// PostgresAdapter implements the database.Adapter interface for PostgreSQL.
type PostgresAdapter struct {
	database.Conn
	config database.Config
}

// NewPostgresAdapter creates a new PostgreSQL adapter.
func NewPostgresAdapter(config database.Config) (*PostgresAdapter, error) {
	switch config.Driver {
	case "":
		config.Driver = DriverPQ
	case DriverPQ, DriverPGX:
	default:
		return nil, fmt.Errorf("unsupported postgres driver: %s", config.Driver)
	}
	return &PostgresAdapter{config: config}, nil
}

// Connect establishes a connection to the PostgreSQL database.
func (a *PostgresAdapter) Connect(ctx context.Context) error {
	db, err := database.Open(ctx, a.config.Driver, a.config, a.config.MaxConnections, a.config.MaxConnections/2)
	if err != nil {
		return err
	}
	a.Attach(db)
	return nil
}

// GetDialect returns the SQL dialect.
func (a *PostgresAdapter) GetDialect() database.SQLDialect {
	return database.PostgreSQL
}

// Ensure PostgresAdapter implements Adapter interface.
var _ database.Adapter = (*PostgresAdapter)(nil)
