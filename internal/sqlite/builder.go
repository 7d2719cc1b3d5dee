package sqlite

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rpggio/nestly/internal/store"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func ident(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: identifier %q", store.ErrInvalidInput, name)
	}
	return name, nil
}

func column(prefix, name string) (string, error) {
	if _, err := ident(name); err != nil {
		return "", err
	}
	return prefix + name, nil
}

// whereClause renders preds as an AND-ed condition list. prefix qualifies
// every column ("t." for aliased selects, "" for updates and deletes).
func whereClause(prefix string, preds []store.Predicate) (string, []any, error) {
	conditions := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		cond, condArgs, err := condition(prefix, p)
		if err != nil {
			return "", nil, err
		}
		conditions = append(conditions, cond)
		args = append(args, condArgs...)
	}
	return strings.Join(conditions, " AND "), args, nil
}

func condition(prefix string, p store.Predicate) (string, []any, error) {
	if p.Op == store.OpOr {
		if len(p.Any) == 0 {
			return "0", nil, nil
		}
		parts := make([]string, 0, len(p.Any))
		var args []any
		for _, sub := range p.Any {
			cond, subArgs, err := condition(prefix, sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, cond)
			args = append(args, subArgs...)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args, nil
	}

	col, err := column(prefix, p.Field)
	if err != nil {
		return "", nil, err
	}

	switch p.Op {
	case store.OpEq:
		if p.Value == nil {
			return col + " IS NULL", nil, nil
		}
		return col + " = ?", []any{bindValue(p.Value)}, nil
	case store.OpNeq:
		if p.Value == nil {
			return col + " IS NOT NULL", nil, nil
		}
		return col + " <> ?", []any{bindValue(p.Value)}, nil
	case store.OpGt:
		return col + " > ?", []any{bindValue(p.Value)}, nil
	case store.OpGte:
		return col + " >= ?", []any{bindValue(p.Value)}, nil
	case store.OpLt:
		return col + " < ?", []any{bindValue(p.Value)}, nil
	case store.OpLte:
		return col + " <= ?", []any{bindValue(p.Value)}, nil
	case store.OpIsNull:
		return col + " IS NULL", nil, nil
	case store.OpILike:
		needle, _ := p.Value.(string)
		return foldFunc + "(" + col + ") LIKE ? ESCAPE '\\'", []any{"%" + escapeLike(strings.ToLower(needle)) + "%"}, nil
	case store.OpIn:
		values, _ := p.Value.([]any)
		if len(values) == 0 {
			return "0", nil, nil
		}
		placeholders := make([]string, len(values))
		args := make([]any, len(values))
		for i, v := range values {
			placeholders[i] = "?"
			args[i] = bindValue(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ",")), args, nil
	case store.OpContains:
		values, _ := p.Value.([]string)
		if len(values) == 0 {
			return "1", nil, nil
		}
		parts := make([]string, len(values))
		args := make([]any, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value = ?)", col)
			args[i] = v
		}
		return "(" + strings.Join(parts, " AND ") + ")", args, nil
	default:
		return "", nil, fmt.Errorf("%w: operator %q", store.ErrInvalidInput, p.Op)
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// bindValue converts Go values into something the driver stores
// faithfully: bools as 0/1, lists and maps as JSON text, times in UTC.
func bindValue(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return 1
		}
		return 0
	case *bool:
		if val == nil {
			return nil
		}
		return bindValue(*val)
	case time.Time:
		return val.UTC()
	case []string, []any, map[string]any, store.Row:
		data, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		return string(data)
	case json.RawMessage:
		return string(val)
	default:
		return v
	}
}

type selectPlan struct {
	sql       string
	args      []any
	countSQL  string
	countArgs []any
	embeds    []store.Embed
}

func buildSelect(q store.Query) (selectPlan, error) {
	table, err := ident(q.Collection)
	if err != nil {
		return selectPlan{}, err
	}

	var cols []string
	if len(q.Columns) == 0 {
		cols = append(cols, "t.*")
	}
	for _, c := range q.Columns {
		col, err := column("t.", c)
		if err != nil {
			return selectPlan{}, err
		}
		cols = append(cols, col)
	}

	var joins []string
	for i, e := range q.Embeds {
		related, err := ident(e.Collection)
		if err != nil {
			return selectPlan{}, err
		}
		local, err := column("t.", e.LocalKey)
		if err != nil {
			return selectPlan{}, err
		}
		alias := fmt.Sprintf("e%d", i)
		embedCols := e.Columns
		if len(embedCols) == 0 {
			embedCols = []string{"id"}
		}
		for _, c := range embedCols {
			col, err := column(alias+".", c)
			if err != nil {
				return selectPlan{}, err
			}
			cols = append(cols, fmt.Sprintf(`%s AS "%s__%s"`, col, alias, c))
		}
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s AS %s ON %s.id = %s", related, alias, alias, local))
	}

	where, args, err := whereClause("t.", q.Where)
	if err != nil {
		return selectPlan{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s AS t", strings.Join(cols, ", "), table)
	for _, j := range joins {
		b.WriteString(" " + j)
	}
	if where != "" {
		b.WriteString(" WHERE " + where)
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s AS t", table)
	if where != "" {
		countSQL += " WHERE " + where
	}

	if len(q.Order) > 0 {
		orders := make([]string, len(q.Order))
		for i, o := range q.Order {
			col, err := column("t.", o.Field)
			if err != nil {
				return selectPlan{}, err
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			orders[i] = col + " " + dir
		}
		b.WriteString(" ORDER BY " + strings.Join(orders, ", "))
	}

	rowArgs := append([]any{}, args...)
	if q.Limit > 0 || q.Offset > 0 {
		limit := q.Limit
		if limit <= 0 {
			limit = -1
		}
		b.WriteString(" LIMIT ?")
		rowArgs = append(rowArgs, limit)
		if q.Offset > 0 {
			b.WriteString(" OFFSET ?")
			rowArgs = append(rowArgs, q.Offset)
		}
	}

	return selectPlan{sql: b.String(), args: rowArgs, countSQL: countSQL, countArgs: args, embeds: q.Embeds}, nil
}
