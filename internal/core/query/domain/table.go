package domain

// ClientRequest holds the fields a table client sends with every draw.
type ClientRequest struct {
	// Draw is echoed back unchanged.
	Draw int
	// Search is the free-text search term.
	Search string
	// Order is the requested sort, nil when the client did not ask for one.
	Order *OrderRequest
	// Start is the zero-based offset of the first row.
	Start int
	// Length is the page size. Zero or negative means no limit.
	Length int
	// Columns is the client-declared column list, used only to resolve Order.Column.
	Columns []ColumnDescriptor
}

// OrderRequest is a client sort request.
type OrderRequest struct {
	Column int
	Dir    string
}

// ColumnDescriptor describes one client column.
type ColumnDescriptor struct {
	Data       string
	Searchable bool
}

// ColumnPolicy is the caller-declared whitelist for search and ordering.
type ColumnPolicy struct {
	// Searchable columns, in order. Empty disables search.
	Searchable []string
	// Orderable qualified columns.
	Orderable []string
	// GroupCountField switches counting to distinct values of this field.
	GroupCountField string
}

// IsOrderable reports whether column is in the orderable whitelist.
func (p ColumnPolicy) IsOrderable(column string) bool {
	for _, c := range p.Orderable {
		if c == column {
			return true
		}
	}
	return false
}

// Relation describes related rows batch-loaded for every fetched row.
type Relation struct {
	// Table is the related collection.
	Table string
	// As is the output key, Table when empty.
	As string
	// LocalKey is the column of the parent row holding the join value.
	LocalKey string
	// ForeignKey is the column of the related table matched against LocalKey.
	ForeignKey string
	// Columns projected from Table. Empty selects every column.
	Columns []string
	// Nested relations are resolved against the related rows.
	Nested []Relation
	// Gate lists add/edit column names; when set, the relation loads only
	// if at least one of them is registered.
	Gate []string
}

// OutputKey returns the row key the relation is attached under.
func (r Relation) OutputKey() string {
	if r.As != "" {
		return r.As
	}
	return r.Table
}

// Response is the payload returned to the table client.
type Response struct {
	Draw            int   `json:"draw"`
	RecordsTotal    int64 `json:"recordsTotal"`
	RecordsFiltered int64 `json:"recordsFiltered"`
	Data            []Row `json:"data"`
}

// DebugQueries holds the inlined SQL of each render phase.
type DebugQueries struct {
	Data          string `json:"data"`
	CountAll      string `json:"count_all"`
	CountFiltered string `json:"count_filtered"`
}

// DebugResponse is returned instead of Response in debug mode.
type DebugResponse struct {
	Debug   bool         `json:"debug"`
	Queries DebugQueries `json:"queries"`
}

// DebugQuery describes the current statement of a table.
type DebugQuery struct {
	SQLRaw string        `json:"sql_raw"`
	Binds  []interface{} `json:"binds"`
	SQL    string        `json:"sql"`
}
