package datatable

import (
	"strings"

	"github.com/satishbabariya/datatables-go/internal/core/query/builder"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// countQuery returns the statement counting the rows of q.
//
// Grouped and DISTINCT statements collapse base rows, so they are counted as
// a derived table. With a group count field the derived table selects the
// distinct non-null values of that field.
func countQuery(q builder.QueryState, groupCountField string) (domain.SQL, error) {
	stripped := q.StripOrderingAndLimit()

	if groupCountField != "" {
		inner := stripped.WhereNotNull(groupCountField).Select(groupCountField).Distinct()
		return inner.CountOf().Compile()
	}

	if stripped.HasGrouping() || stripped.IsDistinct() {
		return stripped.CountOf().Compile()
	}

	compiled, err := stripped.Compile()
	if err != nil {
		return domain.SQL{}, err
	}
	if strings.Contains(strings.ToUpper(compiled.Query), "GROUP BY") {
		return stripped.CountOf().Compile()
	}
	return stripped.CountAll().Compile()
}
