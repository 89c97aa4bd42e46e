// Package builder implements QueryState, the forkable query-in-progress.
package builder

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// QueryState is a value snapshot of a SELECT under construction.
//
// The select list, source, predicates, joins and grouping live in a squirrel
// builder, which is persistent: every method returns a new builder and never
// mutates shared structure. Ordering and limit are tracked separately so they
// can be stripped before counting. Methods never modify the receiver.
type QueryState struct {
	dialect  domain.SQLDialect
	from     string
	sel      sq.SelectBuilder
	orderBys []string
	limit    uint64
	offset   uint64
	limited  bool
	grouped  bool
	distinct bool
	err      error
}

// New creates a QueryState selecting every column from table.
func New(dialect domain.SQLDialect, table string) QueryState {
	return QueryState{
		dialect: dialect,
		from:    table,
		sel:     sq.Select("*").From(table),
	}
}

// Fork returns an independent copy of the state.
func (q QueryState) Fork() QueryState {
	out := q
	if q.orderBys != nil {
		out.orderBys = append([]string(nil), q.orderBys...)
	}
	return out
}

// StripOrderingAndLimit returns a copy without ORDER BY, LIMIT and OFFSET.
func (q QueryState) StripOrderingAndLimit() QueryState {
	out := q
	out.orderBys = nil
	out.limit, out.offset, out.limited = 0, 0, false
	return out
}

// Dialect returns the dialect the state compiles for.
func (q QueryState) Dialect() domain.SQLDialect {
	return q.dialect
}

// Table returns the source table.
func (q QueryState) Table() string {
	return q.from
}

// HasGrouping reports whether GROUP BY was applied.
func (q QueryState) HasGrouping() bool {
	return q.grouped
}

// IsDistinct reports whether SELECT DISTINCT was applied.
func (q QueryState) IsDistinct() bool {
	return q.distinct
}

// Ordered reports whether any ORDER BY term is present.
func (q QueryState) Ordered() bool {
	return len(q.orderBys) > 0
}

// Err returns the first error recorded while building.
func (q QueryState) Err() error {
	return q.err
}

// Select replaces the select list.
func (q QueryState) Select(columns ...string) QueryState {
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	q.sel = q.sel.RemoveColumns().Columns(columns...)
	return q
}

// Distinct marks the statement as SELECT DISTINCT.
func (q QueryState) Distinct() QueryState {
	if q.distinct {
		return q
	}
	q.sel = q.sel.Distinct()
	q.distinct = true
	return q
}

// Where adds an equality predicate. A nil value renders IS NULL.
func (q QueryState) Where(column string, value interface{}) QueryState {
	q.sel = q.sel.Where(sq.Eq{column: value})
	return q
}

var comparisonOperators = map[string]bool{
	"=": true, "!=": true, "<>": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true, "NOT LIKE": true,
}

// WhereOp adds a comparison predicate with an explicit operator.
func (q QueryState) WhereOp(column, op string, value interface{}) QueryState {
	op = strings.ToUpper(strings.TrimSpace(op))
	if !comparisonOperators[op] {
		return q.fail(fmt.Errorf("unsupported operator %q for column %s", op, column))
	}
	q.sel = q.sel.Where(sq.Expr(column+" "+op+" ?", value))
	return q
}

// WhereNull adds an IS NULL predicate.
func (q QueryState) WhereNull(column string) QueryState {
	q.sel = q.sel.Where(sq.Eq{column: nil})
	return q
}

// WhereNotNull adds an IS NOT NULL predicate.
func (q QueryState) WhereNotNull(column string) QueryState {
	q.sel = q.sel.Where(sq.NotEq{column: nil})
	return q
}

// WhereIn adds an IN predicate. An empty list matches nothing.
func (q QueryState) WhereIn(column string, values []interface{}) QueryState {
	q.sel = q.sel.Where(sq.Eq{column: values})
	return q
}

// WhereNotIn adds a NOT IN predicate. An empty list matches everything.
func (q QueryState) WhereNotIn(column string, values []interface{}) QueryState {
	q.sel = q.sel.Where(sq.NotEq{column: values})
	return q
}

// WhereRaw adds a literal predicate with optional binds.
func (q QueryState) WhereRaw(predicate string, args ...interface{}) QueryState {
	if strings.TrimSpace(predicate) == "" {
		return q
	}
	q.sel = q.sel.Where(sq.Expr(predicate, args...))
	return q
}

// WhereYear restricts a date column to a calendar year.
func (q QueryState) WhereYear(column string, year int) QueryState {
	var expr string
	switch q.dialect {
	case domain.MySQL:
		expr = fmt.Sprintf("YEAR(%s) = ?", column)
	case domain.PostgreSQL:
		expr = fmt.Sprintf("EXTRACT(YEAR FROM %s) = ?", column)
	default:
		expr = fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER) = ?", column)
	}
	q.sel = q.sel.Where(sq.Expr(expr, year))
	return q
}

// Like adds a single LIKE predicate.
func (q QueryState) Like(column, term string, position domain.LikePosition) QueryState {
	q.sel = q.sel.Where(likeExpr(column, term, position))
	return q
}

// OrLike adds one parenthesised group of LIKE predicates joined by OR.
// The group is AND-ed with the existing predicates.
func (q QueryState) OrLike(columns []string, term string, position domain.LikePosition) QueryState {
	if len(columns) == 0 {
		return q
	}
	group := make(sq.Or, 0, len(columns))
	for _, column := range columns {
		group = append(group, likeExpr(column, term, position))
	}
	q.sel = q.sel.Where(group)
	return q
}

// Join adds a join. joinType is INNER, LEFT, RIGHT or empty for a plain JOIN.
func (q QueryState) Join(table, on, joinType string) QueryState {
	joinType = strings.ToUpper(strings.TrimSpace(joinType))
	switch joinType {
	case "", "INNER", "LEFT", "RIGHT", "LEFT OUTER", "RIGHT OUTER", "CROSS":
	default:
		return q.fail(fmt.Errorf("unsupported join type %q for table %s", joinType, table))
	}
	clause := fmt.Sprintf("JOIN %s ON %s", table, on)
	if joinType != "" {
		clause = joinType + " " + clause
	}
	q.sel = q.sel.JoinClause(clause)
	return q
}

// GroupBy adds GROUP BY columns.
func (q QueryState) GroupBy(columns ...string) QueryState {
	if len(columns) == 0 {
		return q
	}
	q.sel = q.sel.GroupBy(columns...)
	q.grouped = true
	return q
}

// OrderBy appends an ORDER BY term.
func (q QueryState) OrderBy(column string, dir domain.SortDirection) QueryState {
	q.orderBys = append(append([]string(nil), q.orderBys...), column+" "+string(dir))
	return q
}

// Limit sets LIMIT and OFFSET.
func (q QueryState) Limit(limit, offset uint64) QueryState {
	q.limit, q.offset, q.limited = limit, offset, true
	return q
}

// CountAll returns a state selecting COUNT(*) over the same rows.
func (q QueryState) CountAll() QueryState {
	return q.Select("COUNT(*)")
}

// CountOf wraps the state as a derived table: SELECT COUNT(*) FROM (<q>) AS t.
func (q QueryState) CountOf() QueryState {
	inner := q.builder()
	return QueryState{
		dialect: q.dialect,
		from:    q.from,
		sel:     sq.Select("COUNT(*)").FromSelect(inner, "t"),
		err:     q.err,
	}
}

// Compile renders the statement with dialect placeholders.
func (q QueryState) Compile() (domain.SQL, error) {
	if q.err != nil {
		return domain.SQL{}, q.err
	}
	query, args, err := q.builder().PlaceholderFormat(placeholderFormat(q.dialect)).ToSql()
	if err != nil {
		return domain.SQL{}, fmt.Errorf("failed to compile query: %w", err)
	}
	return domain.SQL{Query: query, Args: args, Dialect: q.dialect}, nil
}

func (q QueryState) builder() sq.SelectBuilder {
	b := q.sel
	if len(q.orderBys) > 0 {
		b = b.OrderBy(q.orderBys...)
	}
	if q.limited {
		b = b.Limit(q.limit)
		if q.offset > 0 {
			b = b.Offset(q.offset)
		}
	}
	return b
}

func (q QueryState) fail(err error) QueryState {
	if q.err == nil {
		q.err = err
	}
	return q
}

func placeholderFormat(dialect domain.SQLDialect) sq.PlaceholderFormat {
	if dialect == domain.PostgreSQL {
		return sq.Dollar
	}
	return sq.Question
}
