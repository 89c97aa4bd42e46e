package datatable

import (
	"github.com/satishbabariya/datatables-go/internal/core/query/builder"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// applySearch adds one OR-group of LIKE predicates over the searchable
// whitelist. Client column metadata is never consulted.
func applySearch(q builder.QueryState, policy domain.ColumnPolicy, term string) builder.QueryState {
	if term == "" || len(policy.Searchable) == 0 {
		return q
	}
	return q.OrLike(policy.Searchable, term, domain.LikeBoth)
}
