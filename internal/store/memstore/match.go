package memstore

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rpggio/nestly/internal/store"
)

func matchAll(row store.Row, preds []store.Predicate) bool {
	for _, p := range preds {
		if !match(row, p) {
			return false
		}
	}
	return true
}

func match(row store.Row, p store.Predicate) bool {
	v := row[p.Field]
	switch p.Op {
	case store.OpOr:
		for _, sub := range p.Any {
			if match(row, sub) {
				return true
			}
		}
		return false
	case store.OpIsNull:
		return v == nil
	case store.OpILike:
		if v == nil {
			return false
		}
		needle, _ := p.Value.(string)
		return strings.Contains(strings.ToLower(row.String(p.Field)), strings.ToLower(needle))
	case store.OpIn:
		values, _ := p.Value.([]any)
		for _, want := range values {
			if c, ok := compare(v, want); ok && c == 0 {
				return true
			}
		}
		return false
	case store.OpContains:
		want, _ := p.Value.([]string)
		have := row.Strings(p.Field)
		for _, w := range want {
			if !slices.Contains(have, w) {
				return false
			}
		}
		return true
	}

	c, ok := compare(v, p.Value)
	if !ok {
		return p.Op == store.OpNeq && v != nil
	}
	switch p.Op {
	case store.OpEq:
		return c == 0
	case store.OpNeq:
		return c != 0
	case store.OpGt:
		return c > 0
	case store.OpGte:
		return c >= 0
	case store.OpLt:
		return c < 0
	case store.OpLte:
		return c <= 0
	default:
		return false
	}
}

// compare orders two column values. ok is false when either is nil or the
// kinds can't be compared.
func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if af, ok := number(a); ok {
		bf, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
