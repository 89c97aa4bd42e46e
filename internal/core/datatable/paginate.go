package datatable

import (
	"github.com/satishbabariya/datatables-go/internal/core/query/builder"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// paginate applies the request window. Non-positive lengths leave the
// query unbounded.
func paginate(q builder.QueryState, req domain.ClientRequest) builder.QueryState {
	if req.Length <= 0 {
		return q
	}
	start := req.Start
	if start < 0 {
		start = 0
	}
	return q.Limit(uint64(req.Length), uint64(start))
}
