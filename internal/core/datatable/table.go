// Package datatable renders server-side table responses from a base query.
//
// A Table is configured once with the fluent API, then rendered against a
// ClientRequest. Rendering works on forks of the configured query and never
// changes the Table, so Render and Explain may be called repeatedly. A Table
// is not safe for concurrent use; build one per request.
package datatable

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/satishbabariya/datatables-go/internal/adapters/telemetry"
	"github.com/satishbabariya/datatables-go/internal/core/query/builder"
	"github.com/satishbabariya/datatables-go/internal/core/query/compiler"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
	"github.com/satishbabariya/datatables-go/internal/logging"
)

// Table is a configured server-side table.
type Table struct {
	exec      domain.QueryExecutor
	dialect   domain.SQLDialect
	source    string
	name      string
	logger    *slog.Logger
	telemetry telemetry.Telemetry

	initial builder.QueryState
	query   builder.QueryState

	policy    domain.ColumnPolicy
	ordered   bool
	edits     columnSet
	adds      columnSet
	hidden    []string
	relations []domain.Relation
	debug     bool
	logSQL    bool
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for SQL tracing.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithDialect overrides the dialect reported by the executor.
func WithDialect(d domain.SQLDialect) Option {
	return func(t *Table) {
		t.dialect = d
	}
}

// WithName names the table in logs and metrics.
func WithName(name string) Option {
	return func(t *Table) {
		t.name = name
	}
}

// WithTelemetry records renders on tel.
func WithTelemetry(tel telemetry.Telemetry) Option {
	return func(t *Table) {
		if tel != nil {
			t.telemetry = tel
		}
	}
}

// New creates a Table selecting every column of table. exec may be nil when
// the Table is only used for Explain or ToSQL. An empty table name makes
// every compile fail with domain.ErrNoTable.
func New(exec domain.QueryExecutor, table string, opts ...Option) *Table {
	table = strings.TrimSpace(table)
	t := &Table{
		exec:      exec,
		dialect:   domain.SQLite,
		source:    table,
		name:      table,
		telemetry: telemetry.NewNoopTelemetry(),
	}
	if exec != nil {
		t.dialect = exec.Dialect()
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.With("component", "datatable", "table", t.name)
	}
	t.initial = builder.New(t.dialect, table)
	t.query = t.initial
	return t
}

// Name returns the table name used in logs and metrics.
func (t *Table) Name() string {
	return t.name
}

// Select replaces the select list.
func (t *Table) Select(columns ...string) *Table {
	t.query = t.query.Select(columns...)
	return t
}

// Where adds an equality predicate.
func (t *Table) Where(column string, value interface{}) *Table {
	t.query = t.query.Where(column, value)
	return t
}

// WhereOp adds a comparison predicate such as "total >= ?".
func (t *Table) WhereOp(column, op string, value interface{}) *Table {
	t.query = t.query.WhereOp(column, op, value)
	return t
}

// WhereNull adds an IS NULL predicate.
func (t *Table) WhereNull(column string) *Table {
	t.query = t.query.WhereNull(column)
	return t
}

// WhereNotNull adds an IS NOT NULL predicate.
func (t *Table) WhereNotNull(column string) *Table {
	t.query = t.query.WhereNotNull(column)
	return t
}

// WhereIn adds an IN predicate.
func (t *Table) WhereIn(column string, values []interface{}) *Table {
	t.query = t.query.WhereIn(column, values)
	return t
}

// WhereNotIn adds a NOT IN predicate.
func (t *Table) WhereNotIn(column string, values []interface{}) *Table {
	t.query = t.query.WhereNotIn(column, values)
	return t
}

// WhereLike adds a LIKE predicate. Empty values are ignored.
func (t *Table) WhereLike(column, value string, position domain.LikePosition) *Table {
	if value == "" {
		return t
	}
	t.query = t.query.Like(column, value, position)
	return t
}

// WhereYear restricts a date column to a calendar year.
func (t *Table) WhereYear(column string, year int) *Table {
	t.query = t.query.WhereYear(column, year)
	return t
}

// WhereRaw adds a literal predicate.
func (t *Table) WhereRaw(predicate string, args ...interface{}) *Table {
	t.query = t.query.WhereRaw(predicate, args...)
	return t
}

// When calls fn only if value is non-empty.
func (t *Table) When(value interface{}, fn func(*Table)) *Table {
	if !isEmpty(value) {
		fn(t)
	}
	return t
}

// Join adds a join. joinType is INNER, LEFT, RIGHT or empty.
func (t *Table) Join(table, on, joinType string) *Table {
	t.query = t.query.Join(table, on, joinType)
	return t
}

// GroupBy adds GROUP BY columns.
func (t *Table) GroupBy(columns ...string) *Table {
	t.query = t.query.GroupBy(columns...)
	return t
}

// OrderBy orders the query explicitly. Client sort requests are ignored
// from then on.
func (t *Table) OrderBy(column, dir string) *Table {
	t.query = t.query.OrderBy(column, normalizeDirection(dir))
	t.ordered = true
	return t
}

// CountDistinct counts distinct values of field instead of rows.
func (t *Table) CountDistinct(field string) *Table {
	t.policy.GroupCountField = field
	return t
}

// Searchable appends columns to the search whitelist.
func (t *Table) Searchable(columns ...string) *Table {
	t.policy.Searchable = append(t.policy.Searchable, columns...)
	return t
}

// Orderable appends qualified columns to the ordering whitelist.
func (t *Table) Orderable(columns ...string) *Table {
	t.policy.Orderable = append(t.policy.Orderable, columns...)
	return t
}

// Policy returns a copy of the column policy.
func (t *Table) Policy() domain.ColumnPolicy {
	return domain.ColumnPolicy{
		Searchable:      append([]string(nil), t.policy.Searchable...),
		Orderable:       append([]string(nil), t.policy.Orderable...),
		GroupCountField: t.policy.GroupCountField,
	}
}

// AddColumn adds a computed column to every row.
func (t *Table) AddColumn(name string, fn domain.ColumnFunc) *Table {
	t.adds = t.adds.set(name, fn)
	return t
}

// EditColumn replaces the value of a column in every row.
func (t *Table) EditColumn(name string, fn domain.ColumnFunc) *Table {
	t.edits = t.edits.set(name, fn)
	return t
}

// Hidden removes columns from the output after all transforms ran.
func (t *Table) Hidden(columns ...string) *Table {
	t.hidden = append(t.hidden, columns...)
	return t
}

// With declares a relation loaded for every rendered page.
func (t *Table) With(rel domain.Relation) *Table {
	t.relations = append(t.relations, rel)
	return t
}

// Debug makes Make return the rendered SQL instead of executing it.
func (t *Table) Debug(enabled bool) *Table {
	t.debug = enabled
	return t
}

// LogSQL logs the inlined SQL of every executed statement at info level.
func (t *Table) LogSQL() *Table {
	t.logSQL = true
	return t
}

// Reset clears every predicate and registration. The source table and the
// searchable and orderable whitelists are kept.
func (t *Table) Reset() *Table {
	t.query = t.initial
	t.policy.GroupCountField = ""
	t.ordered = false
	t.edits, t.adds = nil, nil
	t.hidden = nil
	t.relations = nil
	t.debug = false
	t.logSQL = false
	return t
}

// ToSQL returns the current statement with binds inlined.
func (t *Table) ToSQL() (string, error) {
	stmt, err := t.compile(t.query)
	if err != nil {
		return "", err
	}
	return compiler.Compiled(stmt), nil
}

// DebugQuery returns the current statement, its binds and the inlined text.
func (t *Table) DebugQuery() (domain.DebugQuery, error) {
	stmt, err := t.compile(t.query)
	if err != nil {
		return domain.DebugQuery{}, err
	}
	binds := stmt.Args
	if binds == nil {
		binds = []interface{}{}
	}
	return domain.DebugQuery{SQLRaw: stmt.Query, Binds: binds, SQL: compiler.Compiled(stmt)}, nil
}

func (t *Table) compile(q builder.QueryState) (domain.SQL, error) {
	if t.source == "" {
		return domain.SQL{}, domain.ErrNoTable
	}
	return q.Compile()
}

// Make renders req, or explains it when debug mode is on. The result is a
// *domain.Response or a *domain.DebugResponse.
func (t *Table) Make(ctx context.Context, req domain.ClientRequest) (interface{}, error) {
	if t.debug {
		return t.Explain(req)
	}
	return t.Render(ctx, req)
}

// phases holds the three forks of one render.
type phases struct {
	baseline builder.QueryState
	working  builder.QueryState
	page     builder.QueryState
}

func (t *Table) fork(req domain.ClientRequest) phases {
	baseline := t.query.Fork()
	working := applySearch(t.query.Fork(), t.policy, req.Search)
	working = applyOrdering(working, t.policy, req, t.ordered)
	page := paginate(working.Fork(), req)
	return phases{baseline: baseline, working: working, page: page}
}

// Explain returns the SQL each render phase would run, without executing
// anything.
func (t *Table) Explain(req domain.ClientRequest) (*domain.DebugResponse, error) {
	start := time.Now()
	resp, err := t.explain(req)
	t.telemetry.RecordRender(context.Background(), telemetry.RenderInfo{
		Table:    t.name,
		Debug:    true,
		Duration: time.Since(start),
		Success:  err == nil,
	})
	return resp, err
}

func (t *Table) explain(req domain.ClientRequest) (*domain.DebugResponse, error) {
	if t.source == "" {
		return nil, domain.ErrNoTable
	}
	p := t.fork(req)

	data, err := p.page.Compile()
	if err != nil {
		return nil, err
	}
	countAll, err := countQuery(p.baseline, t.policy.GroupCountField)
	if err != nil {
		return nil, err
	}
	countFiltered, err := countQuery(p.working, t.policy.GroupCountField)
	if err != nil {
		return nil, err
	}

	return &domain.DebugResponse{
		Debug: true,
		Queries: domain.DebugQueries{
			Data:          compiler.Compiled(data),
			CountAll:      compiler.Compiled(countAll),
			CountFiltered: compiler.Compiled(countFiltered),
		},
	}, nil
}

// Render counts, fetches and shapes one page for req.
func (t *Table) Render(ctx context.Context, req domain.ClientRequest) (*domain.Response, error) {
	start := time.Now()
	resp, err := t.render(ctx, req)
	t.telemetry.RecordRender(ctx, telemetry.RenderInfo{
		Table:    t.name,
		Duration: time.Since(start),
		Success:  err == nil,
	})
	if err != nil {
		t.logger.Error("render failed", "error", err)
	}
	return resp, err
}

func (t *Table) render(ctx context.Context, req domain.ClientRequest) (*domain.Response, error) {
	if t.source == "" {
		return nil, domain.ErrNoTable
	}
	if t.exec == nil {
		return nil, fmt.Errorf("render %s: %w", t.name, domain.ErrNotConnected)
	}

	p := t.fork(req)

	total, err := t.count(ctx, "count_all", p.baseline)
	if err != nil {
		return nil, err
	}
	filtered, err := t.count(ctx, "count_filtered", p.working)
	if err != nil {
		return nil, err
	}

	stmt, err := p.page.Compile()
	if err != nil {
		return nil, err
	}
	t.trace("data", stmt)
	rows, err := t.exec.FetchRows(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}
	if rows == nil {
		rows = []domain.Row{}
	}

	loader := &relationLoader{
		exec:    t.exec,
		dialect: t.dialect,
		active:  t.isRegistered,
		trace:   t.trace,
	}
	if err := loader.load(ctx, rows, t.relations); err != nil {
		return nil, err
	}

	transformRows(rows, t.edits, t.adds, t.hidden)

	return &domain.Response{
		Draw:            req.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Data:            rows,
	}, nil
}

func (t *Table) count(ctx context.Context, phase string, q builder.QueryState) (int64, error) {
	stmt, err := countQuery(q, t.policy.GroupCountField)
	if err != nil {
		return 0, err
	}
	t.trace(phase, stmt)
	n, err := t.exec.Count(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", phase, err)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

func (t *Table) trace(phase string, stmt domain.SQL) {
	if t.logSQL {
		t.logger.Info("datatable query", "phase", phase, "sql", compiler.Compiled(stmt))
		return
	}
	t.logger.Debug("datatable query", "phase", phase, "sql", stmt.Query, "binds", len(stmt.Args))
}

func (t *Table) isRegistered(name string) bool {
	return t.edits.has(name) || t.adds.has(name)
}

func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}
