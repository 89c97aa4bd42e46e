package app

import (
	"fmt"
	"sort"
	"sync"

	"github.com/satishbabariya/datatables-go/internal/config"
	"github.com/satishbabariya/datatables-go/internal/core/datatable"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// Registry builds tables from their configured declarations.
type Registry struct {
	mu     sync.RWMutex
	exec   domain.QueryExecutor
	tables map[string]config.TableConfig
	hooks  map[string][]func(*datatable.Table)
	opts   []datatable.Option
}

// NewRegistry creates a registry over tables. opts are passed to every
// built Table.
func NewRegistry(exec domain.QueryExecutor, tables map[string]config.TableConfig, opts ...datatable.Option) *Registry {
	r := &Registry{
		exec:  exec,
		hooks: make(map[string][]func(*datatable.Table)),
		opts:  opts,
	}
	r.Update(tables)
	return r
}

// Update replaces the table declarations. Customizations are kept.
func (r *Registry) Update(tables map[string]config.TableConfig) {
	copied := make(map[string]config.TableConfig, len(tables))
	for name, tc := range tables {
		copied[name] = tc
	}

	r.mu.Lock()
	r.tables = copied
	r.mu.Unlock()
}

// Customize registers fn to run on every Table built for name, after its
// declaration is applied. It is how computed columns are attached to
// configured tables.
func (r *Registry) Customize(name string, fn func(*datatable.Table)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = append(r.hooks[name], fn)
}

// Names returns the declared table names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table builds a fresh Table for name.
func (r *Registry) Table(name string) (*datatable.Table, error) {
	r.mu.RLock()
	tc, ok := r.tables[name]
	hooks := r.hooks[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTable, name)
	}

	t := BuildTable(r.exec, name, tc, r.opts...)
	for _, fn := range hooks {
		fn(t)
	}
	return t, nil
}

// BuildTable applies a table declaration to a new Table.
func BuildTable(exec domain.QueryExecutor, name string, tc config.TableConfig, opts ...datatable.Option) *datatable.Table {
	opts = append([]datatable.Option{datatable.WithName(name)}, opts...)
	t := datatable.New(exec, tc.From, opts...)

	if len(tc.Select) > 0 {
		t.Select(tc.Select...)
	}
	for _, j := range tc.Joins {
		t.Join(j.Table, j.On, j.Type)
	}
	for _, w := range tc.Where {
		t.WhereRaw(w)
	}
	if len(tc.GroupBy) > 0 {
		t.GroupBy(tc.GroupBy...)
	}
	for _, o := range tc.Order {
		t.OrderBy(o.Field, o.Dir)
	}
	if tc.CountDistinct != "" {
		t.CountDistinct(tc.CountDistinct)
	}

	t.Searchable(tc.Searchable...)
	t.Orderable(tc.Orderable...)
	t.Hidden(tc.Hidden...)

	for _, rc := range tc.Relations {
		t.With(toRelation(rc))
	}
	return t
}

func toRelation(rc config.RelationConfig) domain.Relation {
	rel := domain.Relation{
		Table:      rc.Table,
		As:         rc.As,
		LocalKey:   rc.LocalKey,
		ForeignKey: rc.ForeignKey,
		Columns:    rc.Columns,
		Gate:       rc.Gate,
	}
	for _, n := range rc.Nested {
		rel.Nested = append(rel.Nested, toRelation(n))
	}
	return rel
}
