package datatable_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/satishbabariya/datatables-go/internal/core/datatable"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderQueries(q domain.DebugQueries) []byte {
	return []byte(fmt.Sprintf("-- data\n%s\n-- count_all\n%s\n-- count_filtered\n%s\n",
		q.Data, q.CountAll, q.CountFiltered))
}

func TestExplain_Golden(t *testing.T) {
	tests := []struct {
		name  string
		table func() *datatable.Table
		req   domain.ClientRequest
	}{
		{
			name: "explain_join_search_order_page",
			table: func() *datatable.Table {
				return datatable.New(nil, "orders").
					Select("orders.id", "orders.status", "customers.name").
					Join("customers", "customers.id = orders.customer_id", "left").
					WhereOp("orders.total", ">", 0).
					Searchable("orders.status", "customers.name").
					Orderable("orders.id")
			},
			req: domain.ClientRequest{
				Search:  "O'Br",
				Start:   10,
				Length:  5,
				Order:   &domain.OrderRequest{Column: 0, Dir: "DESC"},
				Columns: []domain.ColumnDescriptor{{Data: "orders.id"}},
			},
		},
		{
			name: "explain_grouped",
			table: func() *datatable.Table {
				return datatable.New(nil, "orders").
					Select("orders.customer_id", "COUNT(*) AS n").
					GroupBy("orders.customer_id").
					Orderable("orders.customer_id")
			},
			req: domain.ClientRequest{
				Length:  10,
				Order:   &domain.OrderRequest{Column: 0, Dir: "asc"},
				Columns: []domain.ColumnDescriptor{{Data: "orders.customer_id"}},
			},
		},
		{
			name: "explain_count_distinct_postgres",
			table: func() *datatable.Table {
				return datatable.New(nil, "orders", datatable.WithDialect(domain.PostgreSQL)).
					Where("orders.status", "paid").
					CountDistinct("orders.customer_id").
					Searchable("orders.status")
			},
			req: domain.ClientRequest{Search: "pa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.table().Explain(tt.req)
			require.NoError(t, err)
			assert.True(t, resp.Debug)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tt.name, renderQueries(resp.Queries))
		})
	}
}

func TestExplain_HasNoSideEffects(t *testing.T) {
	exec := record(openDB(t, shopSchema))
	ctx := context.Background()

	tb := datatable.New(exec, "orders").
		Searchable("orders.status").
		With(itemsRelation()).
		Debug(true)

	out, err := tb.Make(ctx, domain.ClientRequest{Search: "new", Length: 2})
	require.NoError(t, err)

	resp, ok := out.(*domain.DebugResponse)
	require.True(t, ok)
	assert.True(t, resp.Debug)
	assert.Equal(t, "SELECT * FROM orders WHERE (orders.status LIKE '%new%' ESCAPE '!') LIMIT 2", resp.Queries.Data)
	assert.Equal(t, "SELECT COUNT(*) FROM orders", resp.Queries.CountAll)
	assert.Equal(t, 0, exec.statements())

	rendered, err := tb.Debug(false).Render(ctx, domain.ClientRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), rendered.RecordsTotal)
}
