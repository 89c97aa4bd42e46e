// Package httpapi exposes tables over HTTP.
package httpapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// MaxColumns bounds the number of client column descriptors read.
const MaxColumns = 256

// ParseRequest reads the table protocol fields from query or form values.
// Missing or malformed fields fall back to zero values; parsing never fails.
func ParseRequest(values url.Values) domain.ClientRequest {
	req := domain.ClientRequest{
		Draw:   toInt(values.Get("draw")),
		Start:  toInt(values.Get("start")),
		Length: toInt(values.Get("length")),
		Search: values.Get("search[value]"),
	}

	for i := 0; i < MaxColumns; i++ {
		prefix := "columns[" + strconv.Itoa(i) + "]"
		data, ok := values[prefix+"[data]"]
		if !ok {
			break
		}
		col := domain.ColumnDescriptor{
			Searchable: cast.ToBool(values.Get(prefix + "[searchable]")),
		}
		if len(data) > 0 {
			col.Data = data[0]
		}
		req.Columns = append(req.Columns, col)
	}

	if raw, ok := values["order[0][column]"]; ok && len(raw) > 0 {
		if idx, err := toIntE(raw[0]); err == nil {
			req.Order = &domain.OrderRequest{
				Column: idx,
				Dir:    values.Get("order[0][dir]"),
			}
		}
	}

	return req
}

func toInt(s string) int {
	n, _ := toIntE(s)
	return n
}

// toIntE reads s as a base-10 integer, so "08" is 8 and "010" is 10.
// Float forms such as "10.0" are truncated.
func toIntE(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
