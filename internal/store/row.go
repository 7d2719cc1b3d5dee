package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is a single record keyed by column name. Embedded relations are
// stored as nested Rows under their alias.
type Row map[string]any

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// String returns the column as a string, or "" when absent.
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// StringPtr returns nil when the column is absent or null.
func (r Row) StringPtr(key string) *string {
	if r[key] == nil {
		return nil
	}
	s := r.String(key)
	return &s
}

// Int returns the column as an int, or 0 when absent or not numeric.
func (r Row) Int(key string) int {
	return int(r.Float(key))
}

// Float returns the column as a float64, or 0 when absent or not numeric.
func (r Row) Float(key string) float64 {
	switch v := r[key].(type) {
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	default:
		return 0
	}
}

// Bool returns the column as a bool. Numeric columns are true when non-zero.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return r.Float(key) != 0
	}
}

// Time returns the column as a time, or the zero time when absent or
// unparseable.
func (r Row) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case int64:
		return time.Unix(v, 0).UTC()
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}
	}
}

// Strings returns a list-valued column. JSON-encoded arrays are decoded.
func (r Row) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return decodeStrings([]byte(v))
	case []byte:
		return decodeStrings(v)
	default:
		return nil
	}
}

// Embedded returns the nested row stored under alias, or nil.
func (r Row) Embedded(alias string) Row {
	switch v := r[alias].(type) {
	case Row:
		return v
	case map[string]any:
		return Row(v)
	default:
		return nil
	}
}

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DeepClone copies r along with any embedded rows, maps and slices, so the
// copy shares no mutable state with r.
func (r Row) DeepClone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch v := v.(type) {
	case Row:
		return v.DeepClone()
	case map[string]any:
		return map[string]any(Row(v).DeepClone())
	case []Row:
		if v == nil {
			return v
		}
		out := make([]Row, len(v))
		for i, r := range v {
			out[i] = r.DeepClone()
		}
		return out
	case []map[string]any:
		if v == nil {
			return v
		}
		out := make([]map[string]any, len(v))
		for i, m := range v {
			out[i] = map[string]any(Row(m).DeepClone())
		}
		return out
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		if v == nil {
			return v
		}
		return append([]string(nil), v...)
	case []byte:
		if v == nil {
			return v
		}
		return append([]byte(nil), v...)
	default:
		return v
	}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func decodeStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
