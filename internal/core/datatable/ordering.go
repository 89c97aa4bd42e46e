package datatable

import (
	"strings"

	"github.com/satishbabariya/datatables-go/internal/core/query/builder"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// applyOrdering applies the client's sort request unless the caller ordered
// the query explicitly.
func applyOrdering(q builder.QueryState, policy domain.ColumnPolicy, req domain.ClientRequest, explicit bool) builder.QueryState {
	if explicit {
		return q
	}
	column, ok := resolveSortColumn(policy, req)
	if !ok {
		return q
	}
	return q.OrderBy(column, normalizeDirection(req.Order.Dir))
}

// resolveSortColumn maps the requested column index to a whitelisted,
// qualified column name.
func resolveSortColumn(policy domain.ColumnPolicy, req domain.ClientRequest) (string, bool) {
	if req.Order == nil {
		return "", false
	}
	idx := req.Order.Column
	if idx < 0 || idx >= len(req.Columns) {
		return "", false
	}
	key := req.Columns[idx].Data
	if key == "" || !strings.Contains(key, ".") {
		return "", false
	}
	if !policy.IsOrderable(key) {
		return "", false
	}
	return key, true
}

func normalizeDirection(dir string) domain.SortDirection {
	if strings.EqualFold(strings.TrimSpace(dir), "desc") {
		return domain.Desc
	}
	return domain.Asc
}
