package config_test

import (
	"os"
	"testing"

	"github.com/satishbabariya/datatables-go/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
database:
  provider: postgres
  driver: pgx
  url: postgres://localhost/shop
server:
  addr: ":9090"
logging:
  level: debug
tables:
  orders:
    from: orders
    select: [orders.id, orders.status, customers.name]
    joins:
      - table: customers
        on: customers.id = orders.customer_id
        type: left
    searchable: [orders.status, customers.name]
    orderable: [orders.id]
    hidden: [customer_id]
    order:
      - field: orders.id
        dir: desc
    relations:
      - table: order_items
        as: items
        local_key: id
        foreign_key: order_id
        columns: [id, qty]
        nested:
          - table: products
            local_key: product_id
            foreign_key: id
`

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := config.AppFs
	fs := afero.NewMemMapFs()
	config.AppFs = fs
	t.Cleanup(func() { config.AppFs = prev })
	return fs
}

func TestLoad_File(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/etc/datatables/config.yaml", []byte(sampleConfig), 0644))

	cfg, err := config.NewLoader("/etc/datatables/config.yaml").Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Provider)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/shop", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "noop", cfg.Telemetry.Type)

	require.Contains(t, cfg.Tables, "orders")
	orders := cfg.Tables["orders"]
	assert.Equal(t, "orders", orders.From)
	assert.Equal(t, []string{"orders.status", "customers.name"}, orders.Searchable)
	require.Len(t, orders.Joins, 1)
	assert.Equal(t, "left", orders.Joins[0].Type)
	require.Len(t, orders.Order, 1)
	assert.Equal(t, "desc", orders.Order[0].Dir)
	require.Len(t, orders.Relations, 1)
	assert.Equal(t, "items", orders.Relations[0].As)
	require.Len(t, orders.Relations[0].Nested, 1)
	assert.Equal(t, "products", orders.Relations[0].Nested[0].Table)
}

func TestLoad_Defaults(t *testing.T) {
	useMemFs(t)
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotNil(t, cfg.Tables)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	useMemFs(t)

	_, err := config.NewLoader("/nowhere.yaml").Load()
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(sampleConfig), 0644))
	t.Setenv("DATATABLES_DATABASE_URL", "postgres://override/shop")

	cfg, err := config.NewLoader("/c.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://override/shop", cfg.Database.URL)
}

func TestLoad_DotEnv(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("DATABASE_URL=file:from-env.db\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("DATABASE_URL=file:from-local.db\n"), 0644))

	// t.Setenv restores the variable set by the loader.
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	cfg, err := config.NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, "file:from-local.db", cfg.Database.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  config.Config{Tables: map[string]config.TableConfig{"a": {From: "a"}}},
		},
		{
			name:    "missing from",
			cfg:     config.Config{Tables: map[string]config.TableConfig{"a": {}}},
			wantErr: "from is required",
		},
		{
			name: "incomplete join",
			cfg: config.Config{Tables: map[string]config.TableConfig{
				"a": {From: "a", Joins: []config.JoinConfig{{Table: "b"}}},
			}},
			wantErr: "join 0",
		},
		{
			name: "incomplete nested relation",
			cfg: config.Config{Tables: map[string]config.TableConfig{
				"a": {From: "a", Relations: []config.RelationConfig{{
					Table: "b", LocalKey: "id", ForeignKey: "a_id",
					Nested: []config.RelationConfig{{Table: "c"}},
				}}},
			}},
			wantErr: `relation "c"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	useMemFs(t)

	cfg := &config.Config{
		Database:  config.DatabaseConfig{Provider: "sqlite", Driver: "sqlite", URL: "shop.db"},
		Server:    config.ServerConfig{Addr: ":7000"},
		Logging:   config.LoggingConfig{Level: "warn", Format: "json"},
		Telemetry: config.TelemetryConfig{Type: "prometheus"},
		Tables: map[string]config.TableConfig{
			"orders": {From: "orders", Searchable: []string{"orders.status"}},
		},
	}
	require.NoError(t, config.Save(cfg, "/home/me/.datatables.yaml"))

	loaded, err := config.NewLoader("/home/me/.datatables.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "shop.db", loaded.Database.URL)
	assert.Equal(t, ":7000", loaded.Server.Addr)
	assert.Equal(t, "prometheus", loaded.Telemetry.Type)
	assert.Equal(t, []string{"orders.status"}, loaded.Tables["orders"].Searchable)
}
