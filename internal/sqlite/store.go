package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/nestly/internal/store"
)

// Store implements store.Client for SQLite
type Store struct {
	db *DB
}

// NewStore creates a new Store
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Query runs a filtered read and a matching count
func (s *Store) Query(ctx context.Context, q store.Query) (store.Result, error) {
	plan, err := buildSelect(q)
	if err != nil {
		return store.Result{}, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, plan.countSQL, plan.countArgs...).Scan(&total); err != nil {
		return store.Result{}, classify(err)
	}

	rows, err := s.db.QueryContext(ctx, plan.sql, plan.args...)
	if err != nil {
		return store.Result{}, classify(err)
	}
	defer rows.Close()

	out, err := scanRows(rows, plan.embeds)
	if err != nil {
		return store.Result{}, classify(err)
	}
	return store.Result{Rows: out, Count: total}, nil
}

// Insert adds a row, generating an id when none is given
func (s *Store) Insert(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	table, err := ident(collection)
	if err != nil {
		return nil, err
	}

	rec := row.Clone()
	if rec["id"] == nil {
		rec["id"] = uuid.NewString()
	}

	cols := sortedKeys(rec)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		if _, err := ident(c); err != nil {
			return nil, err
		}
		placeholders[i] = "?"
		args[i] = bindValue(rec[c])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out, err := scanRows(rows, nil)
	if err != nil {
		return nil, classify(err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("failed to insert into %s: no row returned", table)
	}
	return out[0], nil
}

// Update applies patch to every row matching match
func (s *Store) Update(ctx context.Context, collection string, patch store.Row, match []store.Predicate) ([]store.Row, error) {
	table, err := ident(collection)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty patch", store.ErrInvalidInput)
	}
	if len(match) == 0 {
		return nil, fmt.Errorf("%w: update without match predicate", store.ErrInvalidInput)
	}

	cols := sortedKeys(patch)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		if _, err := ident(c); err != nil {
			return nil, err
		}
		sets[i] = c + " = ?"
		args = append(args, bindValue(patch[c]))
	}

	where, whereArgs, err := whereClause("", match)
	if err != nil {
		return nil, err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING *", table, strings.Join(sets, ", "), where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out, err := scanRows(rows, nil)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Delete removes every row matching match
func (s *Store) Delete(ctx context.Context, collection string, match []store.Predicate) error {
	table, err := ident(collection)
	if err != nil {
		return err
	}
	if len(match) == 0 {
		return fmt.Errorf("%w: delete without match predicate", store.ErrInvalidInput)
	}

	where, args, err := whereClause("", match)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", table, where), args...); err != nil {
		return classify(err)
	}
	return nil
}

func scanRows(rows *sql.Rows, embeds []store.Embed) ([]store.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := []store.Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := store.Row{}
		nested := map[int]store.Row{}
		for i, name := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if idx, col, ok := embedColumn(name); ok && idx < len(embeds) {
				if nested[idx] == nil {
					nested[idx] = store.Row{}
				}
				nested[idx][col] = v
				continue
			}
			row[name] = v
		}
		for i, e := range embeds {
			row[e.As] = nonEmpty(nested[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// embedColumn parses the "e<idx>__<column>" aliases produced by buildSelect.
func embedColumn(name string) (int, string, bool) {
	prefix, col, ok := strings.Cut(name, "__")
	if !ok || len(prefix) < 2 || prefix[0] != 'e' {
		return 0, "", false
	}
	var idx int
	if _, err := fmt.Sscanf(prefix[1:], "%d", &idx); err != nil {
		return 0, "", false
	}
	return idx, col, true
}

// nonEmpty returns nil for a LEFT JOIN that matched nothing.
func nonEmpty(r store.Row) store.Row {
	for _, v := range r {
		if v != nil {
			return r
		}
	}
	return nil
}

func sortedKeys(r store.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
