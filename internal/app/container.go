// Package app wires configuration, adapters and tables together.
package app

import (
	"context"
	"fmt"

	"github.com/satishbabariya/datatables-go/internal/adapters/database"
	"github.com/satishbabariya/datatables-go/internal/adapters/database/mysql"
	"github.com/satishbabariya/datatables-go/internal/adapters/database/postgres"
	"github.com/satishbabariya/datatables-go/internal/adapters/database/sqlite"
	"github.com/satishbabariya/datatables-go/internal/adapters/telemetry"
	"github.com/satishbabariya/datatables-go/internal/config"
	"github.com/satishbabariya/datatables-go/internal/core/datatable"
	"github.com/satishbabariya/datatables-go/internal/core/query/executor"
	"github.com/satishbabariya/datatables-go/internal/logging"
)

// Container holds all application dependencies.
type Container struct {
	// Configuration
	config *config.Config

	// Adapters
	dbAdapter database.Adapter
	telemetry telemetry.Telemetry

	// Services
	executor *executor.QueryExecutor
	tables   *Registry
}

// NewContainer creates a container. The database is not contacted until
// Connect is called.
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{
		config: cfg,
	}

	var err error
	c.dbAdapter, err = createDatabaseAdapter(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database adapter: %w", err)
	}

	c.telemetry, err = telemetry.NewTelemetry(&telemetry.Config{
		Type:      cfg.Telemetry.Type,
		Namespace: cfg.Telemetry.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry: %w", err)
	}

	c.executor = executor.NewQueryExecutor(c.dbAdapter, executor.WithTelemetry(c.telemetry))
	c.tables = NewRegistry(c.executor, cfg.Tables, datatable.WithTelemetry(c.telemetry))

	return c, nil
}

// Connect opens the database connection.
func (c *Container) Connect(ctx context.Context) error {
	if err := c.dbAdapter.Connect(ctx); err != nil {
		return err
	}
	logging.Debug("database connected", "provider", c.config.Database.Provider, "dialect", c.dbAdapter.GetDialect())
	return nil
}

// Config returns the configuration the container was built from.
func (c *Container) Config() *config.Config {
	return c.config
}

// Database returns the database adapter.
func (c *Container) Database() database.Adapter {
	return c.dbAdapter
}

// Executor returns the query executor.
func (c *Container) Executor() *executor.QueryExecutor {
	return c.executor
}

// Telemetry returns the telemetry adapter.
func (c *Container) Telemetry() telemetry.Telemetry {
	return c.telemetry
}

// Tables returns the table registry.
func (c *Container) Tables() *Registry {
	return c.tables
}

// Reload swaps in the table declarations of cfg. Connection settings are
// not reloaded.
func (c *Container) Reload(cfg *config.Config) {
	c.tables.Update(cfg.Tables)
	logging.Info("tables reloaded", "count", len(cfg.Tables))
}

// Close cleans up resources.
func (c *Container) Close(ctx context.Context) error {
	if c.telemetry != nil {
		_ = c.telemetry.Close(ctx)
	}
	if c.dbAdapter != nil {
		return c.dbAdapter.Disconnect(ctx)
	}
	return nil
}

// InitLogging configures the global logger from cfg.
func InitLogging(cfg config.LoggingConfig) {
	logging.Init(logging.Options{
		Level:  cfg.Level,
		Format: cfg.Format,
		SeqURL: cfg.SeqURL,
	})
}

// createDatabaseAdapter creates the appropriate database adapter based on provider.
func createDatabaseAdapter(cfg config.DatabaseConfig) (database.Adapter, error) {
	dbConfig := database.Config{
		Provider:       cfg.Provider,
		Driver:         cfg.Driver,
		URL:            cfg.URL,
		MaxConnections: cfg.MaxConnections,
		MaxIdleTime:    cfg.MaxIdleTime,
		ConnectTimeout: cfg.ConnectTimeout,
	}

	var adapter database.Adapter
	var err error

	switch cfg.Provider {
	case "postgresql", "postgres":
		adapter, err = postgres.NewPostgresAdapter(dbConfig)
	case "mysql":
		adapter, err = mysql.NewMySQLAdapter(dbConfig)
	case "sqlite":
		adapter, err = sqlite.NewSQLiteAdapter(dbConfig)
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create adapter: %w", err)
	}

	return adapter, nil
}
