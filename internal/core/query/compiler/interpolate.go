// Package compiler renders compiled statements for humans.
package compiler

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// Interpolate substitutes positional placeholders in query with literal
// renderings of args. Both "?" and "$n" placeholders are recognised;
// placeholders inside quoted literals or double-quoted identifiers are left
// alone, as are placeholders without a matching argument.
//
// The output is for logs and debugging only and must never be executed.
func Interpolate(query string, args []interface{}) string {
	if len(args) == 0 {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 16*len(args))

	next := 0
	var delim byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case delim != 0:
			if c == delim {
				delim = 0
			}
			sb.WriteByte(c)
		case c == '\'' || c == '"':
			delim = c
			sb.WriteByte(c)
		case c == '?':
			if next < len(args) {
				sb.WriteString(Literal(args[next]))
				next++
			} else {
				sb.WriteByte(c)
			}
		case c == '$' && i+1 < len(query) && isDigit(query[i+1]):
			j := i + 1
			for j < len(query) && isDigit(query[j]) {
				j++
			}
			n, err := strconv.Atoi(query[i+1 : j])
			if err != nil || n < 1 || n > len(args) {
				sb.WriteString(query[i:j])
			} else {
				sb.WriteString(Literal(args[n-1]))
			}
			i = j - 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Compiled is Interpolate applied to a compiled statement.
func Compiled(sql domain.SQL) string {
	return Interpolate(sql.Query, sql.Args)
}

// Literal renders a single bind value as SQL text.
func Literal(v interface{}) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return "NULL"
	}

	switch val := v.(type) {
	case nil:
		return "NULL"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []byte:
		return quote(string(val))
	case string:
		return quote(val)
	case time.Time:
		return quote(val.Format(time.RFC3339))
	case error:
		return quote(safeString(errorStringer{val}))
	case fmt.Stringer:
		return quote(safeString(val))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Literal(rv.Index(i).Interface())
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case reflect.Ptr:
		if rv.IsNil() {
			return "NULL"
		}
		return Literal(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return quote(fmt.Sprint(v))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func safeString(s fmt.Stringer) (out string) {
	defer func() {
		if recover() != nil {
			out = fmt.Sprintf("%T", s)
		}
	}()
	return s.String()
}

type errorStringer struct{ err error }

func (e errorStringer) String() string { return e.err.Error() }

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
