package datatable_test

import (
	"context"
	"testing"

	"github.com/satishbabariya/datatables-go/internal/core/datatable"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SearchRestrictedToWhitelist(t *testing.T) {
	exec := openDB(t, `
		CREATE TABLE orders (id INTEGER PRIMARY KEY, status TEXT NOT NULL);
		INSERT INTO orders VALUES (1, 'new'), (2, 'paid');
	`)

	resp, err := datatable.New(exec, "orders").
		Searchable("status").
		Render(context.Background(), domain.ClientRequest{Draw: 3, Search: "new"})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Draw)
	assert.Equal(t, int64(2), resp.RecordsTotal)
	assert.Equal(t, int64(1), resp.RecordsFiltered)
	assert.Equal(t, []domain.Row{{"id": int64(1), "status": "new"}}, resp.Data)
}

func TestRender_SearchWithoutWhitelistIsNoop(t *testing.T) {
	exec := openDB(t, shopSchema)

	resp, err := datatable.New(exec, "orders").Render(context.Background(), domain.ClientRequest{
		Search:  "new",
		Columns: []domain.ColumnDescriptor{{Data: "status", Searchable: true}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), resp.RecordsTotal)
	assert.Equal(t, resp.RecordsTotal, resp.RecordsFiltered)
	assert.Len(t, resp.Data, 5)
}

func TestRender_CountInvariants(t *testing.T) {
	exec := openDB(t, shopSchema)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.ClientRequest
	}{
		{"empty request", domain.ClientRequest{}},
		{"first page", domain.ClientRequest{Length: 2}},
		{"last page", domain.ClientRequest{Start: 4, Length: 2}},
		{"past the end", domain.ClientRequest{Start: 50, Length: 10}},
		{"negative start", domain.ClientRequest{Start: -3, Length: 1}},
		{"search", domain.ClientRequest{Search: "paid", Length: 1}},
		{"search without match", domain.ClientRequest{Search: "zzz", Length: 10}},
		{"wildcards are literal", domain.ClientRequest{Search: "%", Length: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := datatable.New(exec, "orders").
				Searchable("orders.status").
				Render(ctx, tt.req)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, resp.RecordsTotal, resp.RecordsFiltered)
			assert.GreaterOrEqual(t, resp.RecordsFiltered, int64(len(resp.Data)))
			if tt.req.Length > 0 {
				assert.LessOrEqual(t, len(resp.Data), tt.req.Length)
			}
			assert.NotNil(t, resp.Data)
			if tt.req.Search == "" {
				assert.Equal(t, resp.RecordsTotal, resp.RecordsFiltered)
			}
		})
	}
}

func TestRender_Pagination(t *testing.T) {
	exec := openDB(t, shopSchema)

	resp, err := datatable.New(exec, "orders").
		OrderBy("orders.id", "asc").
		Render(context.Background(), domain.ClientRequest{Start: 2, Length: 2})
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 4}, ids(resp.Data))
	assert.Equal(t, int64(5), resp.RecordsTotal)
	assert.Equal(t, int64(5), resp.RecordsFiltered)
}

func TestRender_ClientOrdering(t *testing.T) {
	exec := openDB(t, shopSchema)
	ctx := context.Background()

	baseline, err := datatable.New(exec, "orders").Render(ctx, domain.ClientRequest{})
	require.NoError(t, err)

	tests := []struct {
		name      string
		orderable []string
		column    string
		dir       string
		want      []int64
	}{
		{"whitelisted descending", []string{"orders.total"}, "orders.total", "DESC", []int64{4, 2, 1, 3, 5}},
		{"direction is case insensitive", []string{"orders.total"}, "orders.total", "desc", []int64{4, 2, 1, 3, 5}},
		{"unknown direction means ascending", []string{"orders.total"}, "orders.total", "sideways", []int64{5, 3, 1, 2, 4}},
		{"not whitelisted", []string{"orders.id"}, "orders.total", "desc", ids(baseline.Data)},
		{"unqualified", []string{"total"}, "total", "desc", ids(baseline.Data)},
		{"empty key", []string{""}, "", "desc", ids(baseline.Data)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := datatable.New(exec, "orders").
				Orderable(tt.orderable...).
				Render(ctx, domain.ClientRequest{
					Order:   &domain.OrderRequest{Column: 0, Dir: tt.dir},
					Columns: []domain.ColumnDescriptor{{Data: tt.column}},
				})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(resp.Data))
		})
	}
}

func TestRender_OrderIndexOutOfRange(t *testing.T) {
	exec := record(openDB(t, shopSchema))

	_, err := datatable.New(exec, "orders").
		Orderable("orders.total").
		Render(context.Background(), domain.ClientRequest{
			Order:   &domain.OrderRequest{Column: 7, Dir: "desc"},
			Columns: []domain.ColumnDescriptor{{Data: "orders.total"}},
		})
	require.NoError(t, err)
	require.Len(t, exec.fetches, 1)
	assert.NotContains(t, exec.fetches[0].Query, "ORDER BY")
}

func TestRender_ExplicitOrderingWins(t *testing.T) {
	exec := openDB(t, shopSchema)

	resp, err := datatable.New(exec, "orders").
		Orderable("orders.total").
		OrderBy("orders.id", "desc").
		Render(context.Background(), domain.ClientRequest{
			Order:   &domain.OrderRequest{Column: 0, Dir: "asc"},
			Columns: []domain.ColumnDescriptor{{Data: "orders.total"}},
		})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, ids(resp.Data))
}

func TestRender_GroupedCountsGroups(t *testing.T) {
	exec := record(openDB(t, shopSchema))

	resp, err := datatable.New(exec, "orders").
		Select("orders.customer_id", "COUNT(*) AS n").
		WhereNotNull("orders.customer_id").
		GroupBy("orders.customer_id").
		Render(context.Background(), domain.ClientRequest{Length: 10})
	require.NoError(t, err)

	// four matching orders collapse into three customers
	assert.Equal(t, int64(3), resp.RecordsTotal)
	assert.Equal(t, int64(3), resp.RecordsFiltered)
	assert.Len(t, resp.Data, 3)
	require.Len(t, exec.counts, 2)
	assert.Contains(t, exec.counts[0].Query, "SELECT COUNT(*) FROM (SELECT")
}

func TestRender_CountDistinct(t *testing.T) {
	exec := openDB(t, shopSchema)

	resp, err := datatable.New(exec, "orders").
		CountDistinct("orders.customer_id").
		Searchable("orders.status").
		Render(context.Background(), domain.ClientRequest{Search: "paid"})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.RecordsTotal)
	assert.Equal(t, int64(2), resp.RecordsFiltered)
	assert.Len(t, resp.Data, 2)
}

func TestRender_JoinWithQualifiedColumns(t *testing.T) {
	exec := openDB(t, shopSchema)

	resp, err := datatable.New(exec, "orders").
		Select("orders.id", "customers.name").
		Join("customers", "customers.id = orders.customer_id", "inner").
		Searchable("customers.name").
		Orderable("customers.name", "orders.id").
		Render(context.Background(), domain.ClientRequest{
			Search: "a",
			Order:  &domain.OrderRequest{Column: 1, Dir: "asc"},
			Columns: []domain.ColumnDescriptor{
				{Data: "orders.id"},
				{Data: "customers.name"},
			},
		})
	require.NoError(t, err)

	assert.Equal(t, int64(4), resp.RecordsTotal)
	// Ada and Brian contain an "a"; Chen does not.
	assert.Equal(t, int64(3), resp.RecordsFiltered)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "Ada", resp.Data[0]["name"])
	assert.Equal(t, "Brian", resp.Data[2]["name"])
}

func TestRender_FilterHelpers(t *testing.T) {
	exec := openDB(t, shopSchema)
	ctx := context.Background()

	tests := []struct {
		name  string
		build func(*datatable.Table)
		want  []int64
	}{
		{"where", func(tb *datatable.Table) { tb.Where("status", "new") }, []int64{1, 4}},
		{"where op", func(tb *datatable.Table) { tb.WhereOp("total", ">", 10) }, []int64{2, 4}},
		{"where null", func(tb *datatable.Table) { tb.WhereNull("customer_id") }, []int64{5}},
		{"where in", func(tb *datatable.Table) { tb.WhereIn("id", []interface{}{2, 3}) }, []int64{2, 3}},
		{"where not in", func(tb *datatable.Table) { tb.WhereNotIn("status", []interface{}{"new", "void"}) }, []int64{2, 3}},
		{"where like", func(tb *datatable.Table) { tb.WhereLike("status", "pa", domain.LikeAfter) }, []int64{2, 3}},
		{"empty like ignored", func(tb *datatable.Table) { tb.WhereLike("status", "", domain.LikeBoth) }, []int64{1, 2, 3, 4, 5}},
		{"where year", func(tb *datatable.Table) { tb.WhereYear("created_at", 2023) }, []int64{1}},
		{"where raw", func(tb *datatable.Table) { tb.WhereRaw("total BETWEEN ? AND ?", 5, 10) }, []int64{1, 3}},
		{"when empty", func(tb *datatable.Table) {
			tb.When("", func(tb *datatable.Table) { tb.Where("status", "new") })
		}, []int64{1, 2, 3, 4, 5}},
		{"when set", func(tb *datatable.Table) {
			tb.When("paid", func(tb *datatable.Table) { tb.Where("status", "paid") })
		}, []int64{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := datatable.New(exec, "orders").OrderBy("id", "asc")
			tt.build(tb)
			resp, err := tb.Render(ctx, domain.ClientRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(resp.Data))
			assert.Equal(t, int64(len(tt.want)), resp.RecordsTotal)
		})
	}
}

func TestRender_DoesNotMutateTable(t *testing.T) {
	exec := openDB(t, shopSchema)
	ctx := context.Background()

	tb := datatable.New(exec, "orders").
		Searchable("orders.status").
		Orderable("orders.total")

	before, err := tb.ToSQL()
	require.NoError(t, err)

	first, err := tb.Render(ctx, domain.ClientRequest{
		Search:  "new",
		Length:  1,
		Order:   &domain.OrderRequest{Column: 0, Dir: "desc"},
		Columns: []domain.ColumnDescriptor{{Data: "orders.total"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(first.Data))

	second, err := tb.Render(ctx, domain.ClientRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), second.RecordsFiltered)
	assert.Len(t, second.Data, 5)

	after, err := tb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRender_TransportErrorPropagates(t *testing.T) {
	exec := openDB(t, shopSchema)

	_, err := datatable.New(exec, "missing_table").Render(context.Background(), domain.ClientRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count_all")
}

func TestRender_WithoutExecutor(t *testing.T) {
	_, err := datatable.New(nil, "orders").Render(context.Background(), domain.ClientRequest{})
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestRender_BuildErrorPropagates(t *testing.T) {
	exec := record(openDB(t, shopSchema))

	_, err := datatable.New(exec, "orders").
		WhereOp("total", "=~", 1).
		Render(context.Background(), domain.ClientRequest{})
	assert.ErrorContains(t, err, "unsupported operator")
	assert.Zero(t, exec.statements())
}

func TestReset(t *testing.T) {
	exec := openDB(t, shopSchema)

	tb := datatable.New(exec, "orders").
		Where("status", "new").
		Searchable("orders.status").
		Orderable("orders.id").
		CountDistinct("customer_id").
		Hidden("total").
		OrderBy("orders.id", "desc").
		Debug(true)
	tb.Reset()

	sql, err := tb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders", sql)
	assert.Equal(t, []string{"orders.status"}, tb.Policy().Searchable)
	assert.Equal(t, []string{"orders.id"}, tb.Policy().Orderable)
	assert.Empty(t, tb.Policy().GroupCountField)

	out, err := tb.Make(context.Background(), domain.ClientRequest{})
	require.NoError(t, err)
	resp, ok := out.(*domain.Response)
	require.True(t, ok)
	assert.Equal(t, int64(5), resp.RecordsTotal)
	assert.Contains(t, resp.Data[0], "total")
}

func TestNoSourceTable(t *testing.T) {
	for _, name := range []string{"", "  "} {
		tb := datatable.New(openDB(t, shopSchema), name)

		_, err := tb.ToSQL()
		assert.ErrorIs(t, err, domain.ErrNoTable)

		_, err = tb.DebugQuery()
		assert.ErrorIs(t, err, domain.ErrNoTable)

		_, err = tb.Explain(domain.ClientRequest{})
		assert.ErrorIs(t, err, domain.ErrNoTable)

		_, err = tb.Render(context.Background(), domain.ClientRequest{})
		assert.ErrorIs(t, err, domain.ErrNoTable)
	}
}

func TestToSQLAndDebugQuery(t *testing.T) {
	tb := datatable.New(nil, "orders").
		Where("status", "it's").
		WhereIn("id", []interface{}{1, 2})

	sql, err := tb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders WHERE status = 'it''s' AND id IN (1,2)", sql)

	dq, err := tb.DebugQuery()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders WHERE status = ? AND id IN (?,?)", dq.SQLRaw)
	assert.Equal(t, []interface{}{"it's", 1, 2}, dq.Binds)
	assert.Equal(t, sql, dq.SQL)
}

func TestPolicyIsACopy(t *testing.T) {
	tb := datatable.New(nil, "orders").Searchable("orders.status").Orderable("orders.id")

	p := tb.Policy()
	p.Searchable[0] = "hacked"

	assert.Equal(t, []string{"orders.status"}, tb.Policy().Searchable)
	assert.True(t, tb.Policy().IsOrderable("orders.id"))
}
