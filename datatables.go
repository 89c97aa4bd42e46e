// Package datatables renders server-side table responses over SQL.
//
// A Table wraps a base query. Each render applies the client's search,
// ordering and pagination to forks of that query, counts the rows before
// and after filtering, batch-loads declared relations and shapes every row
// with computed columns:
//
//	resp, err := datatables.New(exec, "orders").
//		Select("orders.id", "orders.status", "customers.name").
//		Join("customers", "customers.id = orders.customer_id", "LEFT").
//		Searchable("orders.status", "customers.name").
//		Orderable("orders.id").
//		Render(ctx, datatables.ParseRequest(r.URL.Query()))
package datatables

import (
	"context"
	"net/http"
	"net/url"

	"github.com/satishbabariya/datatables-go/internal/adapters/database"
	"github.com/satishbabariya/datatables-go/internal/app"
	"github.com/satishbabariya/datatables-go/internal/config"
	"github.com/satishbabariya/datatables-go/internal/core/datatable"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
	"github.com/satishbabariya/datatables-go/internal/core/query/executor"
	"github.com/satishbabariya/datatables-go/internal/transport/httpapi"
)

type (
	// Table is a configured server-side table.
	Table = datatable.Table
	// Option configures a Table.
	Option = datatable.Option

	ClientRequest    = domain.ClientRequest
	OrderRequest     = domain.OrderRequest
	ColumnDescriptor = domain.ColumnDescriptor
	Relation         = domain.Relation
	Row              = domain.Row
	ColumnFunc       = domain.ColumnFunc
	Response         = domain.Response
	DebugResponse    = domain.DebugResponse
	DebugQuery       = domain.DebugQuery
	LikePosition     = domain.LikePosition

	// QueryExecutor runs compiled statements.
	QueryExecutor = domain.QueryExecutor

	// Config is the file-based configuration.
	Config = config.Config
	// TableConfig declares a table by configuration.
	TableConfig = config.TableConfig
)

// LIKE wildcard positions.
const (
	LikeBoth   = domain.LikeBoth
	LikeBefore = domain.LikeBefore
	LikeAfter  = domain.LikeAfter
)

var (
	// ErrNotConnected is returned when rendering without an executor.
	ErrNotConnected = domain.ErrNotConnected
	// ErrNoTable is returned when a Table has no source table.
	ErrNoTable = domain.ErrNoTable
	// ErrUnknownTable is returned for undeclared table names.
	ErrUnknownTable = domain.ErrUnknownTable
)

// Table options.
var (
	WithLogger    = datatable.WithLogger
	WithDialect   = datatable.WithDialect
	WithName      = datatable.WithName
	WithTelemetry = datatable.WithTelemetry
)

// New creates a Table over table. exec may be nil for SQL-only use.
func New(exec QueryExecutor, table string, opts ...Option) *Table {
	return datatable.New(exec, table, opts...)
}

// NewExecutor runs statements on a connected database adapter.
func NewExecutor(db database.Adapter) QueryExecutor {
	return executor.NewQueryExecutor(db)
}

// ParseRequest reads a client request from query or form values.
func ParseRequest(values url.Values) ClientRequest {
	return httpapi.ParseRequest(values)
}

// Open builds and connects everything cfg describes.
func Open(ctx context.Context, cfg *Config) (*app.Container, error) {
	c, err := app.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	return c, nil
}

// Handler returns an HTTP handler serving the tables declared in c at
// /tables/:name.
func Handler(c *app.Container, allowDebug bool) http.Handler {
	return httpapi.NewRouter(
		httpapi.NewTableHandler(c.Tables().Table, allowDebug),
		c.Telemetry().Handler(),
	)
}
