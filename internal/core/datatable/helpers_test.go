package datatable_test

import (
	"context"
	"sync"
	"testing"

	"github.com/satishbabariya/datatables-go/internal/adapters/database"
	"github.com/satishbabariya/datatables-go/internal/adapters/database/sqlite"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
	"github.com/satishbabariya/datatables-go/internal/core/query/executor"
	"github.com/stretchr/testify/require"
)

const shopSchema = `
CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE orders (
	id INTEGER PRIMARY KEY,
	customer_id INTEGER,
	status TEXT NOT NULL,
	total INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE order_items (
	id INTEGER PRIMARY KEY,
	order_id INTEGER NOT NULL,
	product_id INTEGER NOT NULL,
	qty INTEGER NOT NULL
);
INSERT INTO customers VALUES (1, 'Ada'), (2, 'Brian'), (3, 'Chen');
INSERT INTO orders VALUES
	(1, 1, 'new', 10, '2023-05-01'),
	(2, 2, 'paid', 25, '2024-01-15'),
	(3, 1, 'paid', 5, '2024-02-20'),
	(4, 3, 'new', 40, '2024-03-03'),
	(5, NULL, 'void', 0, '2024-04-04');
INSERT INTO products VALUES (1, 'pen'), (2, 'ink'), (3, 'paper');
INSERT INTO order_items VALUES (1, 1, 1, 2), (2, 1, 2, 1), (3, 2, 3, 5), (4, 4, 1, 1);
`

// openDB returns an executor over a fresh in-memory SQLite database.
func openDB(t *testing.T, script string) *executor.QueryExecutor {
	t.Helper()

	adapter, err := sqlite.NewSQLiteAdapter(database.Config{
		Provider: "sqlite",
		Driver:   sqlite.DriverPure,
		URL:      ":memory:",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, adapter.Connect(ctx))
	t.Cleanup(func() { _ = adapter.Disconnect(ctx) })

	if script != "" {
		_, err = adapter.Execute(ctx, script)
		require.NoError(t, err)
	}
	return executor.NewQueryExecutor(adapter)
}

// recorder wraps an executor and remembers every statement it runs.
type recorder struct {
	domain.QueryExecutor

	mu      sync.Mutex
	fetches []domain.SQL
	counts  []domain.SQL
}

func record(exec domain.QueryExecutor) *recorder {
	return &recorder{QueryExecutor: exec}
}

func (r *recorder) FetchRows(ctx context.Context, sql domain.SQL) ([]domain.Row, error) {
	r.mu.Lock()
	r.fetches = append(r.fetches, sql)
	r.mu.Unlock()
	return r.QueryExecutor.FetchRows(ctx, sql)
}

func (r *recorder) Count(ctx context.Context, sql domain.SQL) (int64, error) {
	r.mu.Lock()
	r.counts = append(r.counts, sql)
	r.mu.Unlock()
	return r.QueryExecutor.Count(ctx, sql)
}

func (r *recorder) statements() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fetches) + len(r.counts)
}

func ids(rows []domain.Row) []int64 {
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, row["id"].(int64))
	}
	return out
}
