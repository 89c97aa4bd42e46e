package datatable

import (
	"context"
	"fmt"
	"time"

	"github.com/satishbabariya/datatables-go/internal/core/query/builder"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// relationLoader batch-loads related rows, one statement per relation.
type relationLoader struct {
	exec    domain.QueryExecutor
	dialect domain.SQLDialect
	// active holds the registered add/edit column names used by gates.
	active func(name string) bool
	trace   func(phase string, sql domain.SQL)
}

// load resolves relations against rows in declaration order.
func (l *relationLoader) load(ctx context.Context, rows []domain.Row, relations []domain.Relation) error {
	for _, rel := range relations {
		if !l.gateOpen(rel) {
			continue
		}
		if err := l.loadOne(ctx, rows, rel); err != nil {
			return err
		}
	}
	return nil
}

func (l *relationLoader) gateOpen(rel domain.Relation) bool {
	if len(rel.Gate) == 0 {
		return true
	}
	for _, name := range rel.Gate {
		if l.active(name) {
			return true
		}
	}
	return false
}

func (l *relationLoader) loadOne(ctx context.Context, rows []domain.Row, rel domain.Relation) error {
	key := rel.OutputKey()
	keys := distinctKeys(rows, rel.LocalKey)
	if len(keys) == 0 {
		for _, row := range rows {
			row[key] = []domain.Row{}
		}
		return nil
	}

	stmt, err := l.relationQuery(rel, keys).Compile()
	if err != nil {
		return fmt.Errorf("relation %s: %w", key, err)
	}
	if l.trace != nil {
		l.trace("relation:"+key, stmt)
	}

	related, err := l.exec.FetchRows(ctx, stmt)
	if err != nil {
		return fmt.Errorf("relation %s: %w", key, err)
	}

	if len(rel.Nested) > 0 {
		if err := l.load(ctx, related, rel.Nested); err != nil {
			return err
		}
	}

	groups := make(map[string][]domain.Row, len(keys))
	for _, r := range related {
		k, ok := keyOf(r[rel.ForeignKey])
		if !ok {
			continue
		}
		groups[k] = append(groups[k], r)
	}

	for _, row := range rows {
		matched := []domain.Row{}
		if k, ok := keyOf(row[rel.LocalKey]); ok {
			if g, found := groups[k]; found {
				matched = g
			}
		}
		row[key] = matched
	}
	return nil
}

// relationQuery selects rel.Columns plus every key needed for grouping and
// nested lookups.
func (l *relationLoader) relationQuery(rel domain.Relation, keys []interface{}) builder.QueryState {
	q := builder.New(l.dialect, rel.Table)
	if len(rel.Columns) > 0 {
		columns := append([]string(nil), rel.Columns...)
		columns = appendMissing(columns, rel.ForeignKey)
		for _, nested := range rel.Nested {
			columns = appendMissing(columns, nested.LocalKey)
		}
		q = q.Select(columns...)
	}
	return q.WhereIn(rel.ForeignKey, keys)
}

// distinctKeys returns the distinct non-empty values of column across rows,
// in first-seen order.
func distinctKeys(rows []domain.Row, column string) []interface{} {
	seen := make(map[string]struct{})
	var keys []interface{}
	for _, row := range rows {
		v := row[column]
		k, ok := keyOf(v)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if b, isBytes := v.([]byte); isBytes {
			v = string(b)
		}
		keys = append(keys, v)
	}
	return keys
}

// keyOf normalises a key value so that 5, int64(5), "5" and []byte("5")
// compare equal. Empty values report false.
func keyOf(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case []byte:
		return string(val), len(val) > 0
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano), !val.IsZero()
	default:
		return fmt.Sprint(val), true
	}
}

func appendMissing(columns []string, column string) []string {
	if column == "" {
		return columns
	}
	for _, c := range columns {
		if c == column || c == "*" {
			return columns
		}
	}
	return append(columns, column)
}
