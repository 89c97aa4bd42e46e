package datatable

import (
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

type column struct {
	name string
	fn   domain.ColumnFunc
}

// columnSet is an insertion-ordered set of named column callbacks.
type columnSet []column

func (s columnSet) set(name string, fn domain.ColumnFunc) columnSet {
	for i := range s {
		if s[i].name == name {
			out := append(columnSet(nil), s...)
			out[i].fn = fn
			return out
		}
	}
	return append(s, column{name: name, fn: fn})
}

func (s columnSet) has(name string) bool {
	for _, c := range s {
		if c.name == name {
			return true
		}
	}
	return false
}

// transformRows runs edits, then adds, then removes hidden columns.
// Edit and add callbacks all observe the row as it was before any edit.
func transformRows(rows []domain.Row, edits, adds columnSet, hidden []string) {
	if len(edits) == 0 && len(adds) == 0 && len(hidden) == 0 {
		return
	}
	for _, row := range rows {
		snapshot := row.Clone()
		for _, c := range edits {
			row[c.name] = c.fn(snapshot.Clone())
		}
		for _, c := range adds {
			row[c.name] = c.fn(snapshot.Clone())
		}
		for _, name := range hidden {
			delete(row, name)
		}
	}
}
