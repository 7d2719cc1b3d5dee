// Package memstore provides an in-memory store.Client. Collections may
// declare a schema; queries that reference undeclared columns of such a
// collection fail with store.CodeUndefinedColumn, the way a hosted
// relational backend would.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/nestly/internal/store"
)

// Store implements store.Client using in-memory slices.
// Intended for demos and testing.
type Store struct {
	mu      sync.RWMutex
	schemas map[string]map[string]bool
	uniques map[string][][]string
	tables  map[string][]store.Row
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSchema declares the columns of a collection.
func WithSchema(collection string, columns ...string) Option {
	return func(s *Store) {
		cols := make(map[string]bool, len(columns)+1)
		cols["id"] = true
		for _, c := range columns {
			cols[c] = true
		}
		s.schemas[collection] = cols
	}
}

// WithUnique declares a uniqueness constraint over columns.
func WithUnique(collection string, columns ...string) Option {
	return func(s *Store) {
		s.uniques[collection] = append(s.uniques[collection], columns)
	}
}

// WithClock sets the time source used to stamp created_at on insert.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		schemas: map[string]map[string]bool{},
		uniques: map[string][][]string{},
		tables:  map[string][]store.Row{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed appends rows to a collection without validation.
func (s *Store) Seed(collection string, rows ...store.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[collection] = append(s.tables[collection], r.Clone())
	}
}

// Len returns the number of rows in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[collection])
}

func (s *Store) Query(ctx context.Context, q store.Query) (store.Result, error) {
	if err := ctx.Err(); err != nil {
		return store.Result{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkColumns(q.Collection, q.Columns...); err != nil {
		return store.Result{}, err
	}
	if err := s.checkPredicates(q.Collection, q.Where); err != nil {
		return store.Result{}, err
	}
	for _, o := range q.Order {
		if err := s.checkColumns(q.Collection, o.Field); err != nil {
			return store.Result{}, err
		}
	}
	for _, e := range q.Embeds {
		if err := s.checkColumns(q.Collection, e.LocalKey); err != nil {
			return store.Result{}, err
		}
		if err := s.checkColumns(e.Collection, e.Columns...); err != nil {
			return store.Result{}, err
		}
	}

	var matched []store.Row
	for _, row := range s.tables[q.Collection] {
		if matchAll(row, q.Where) {
			matched = append(matched, row)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range q.Order {
			c, ok := compare(matched[i][o.Field], matched[j][o.Field])
			if !ok || c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	total := len(matched)
	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	rows := make([]store.Row, 0, len(matched))
	for _, row := range matched {
		out := project(row, q.Columns)
		for _, e := range q.Embeds {
			out[e.As] = s.related(e, row[e.LocalKey])
		}
		rows = append(rows, out)
	}
	return store.Result{Rows: rows, Count: total}, nil
}

func (s *Store) Insert(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	if err := s.checkColumns(collection, cols...); err != nil {
		return nil, err
	}

	rec := row.Clone()
	if rec["id"] == nil {
		rec["id"] = uuid.NewString()
	}
	if _, ok := rec["created_at"]; !ok && s.hasColumn(collection, "created_at") {
		rec["created_at"] = s.now().UTC()
	}
	if err := s.checkUnique(collection, rec, nil); err != nil {
		return nil, err
	}
	s.tables[collection] = append(s.tables[collection], rec)
	return rec.Clone(), nil
}

func (s *Store) Update(ctx context.Context, collection string, patch store.Row, match []store.Predicate) ([]store.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cols := make([]string, 0, len(patch))
	for k := range patch {
		cols = append(cols, k)
	}
	if err := s.checkColumns(collection, cols...); err != nil {
		return nil, err
	}
	if err := s.checkPredicates(collection, match); err != nil {
		return nil, err
	}

	var updated []store.Row
	for i, row := range s.tables[collection] {
		if !matchAll(row, match) {
			continue
		}
		next := row.Clone()
		for k, v := range patch {
			next[k] = v
		}
		if err := s.checkUnique(collection, next, row); err != nil {
			return nil, err
		}
		s.tables[collection][i] = next
		updated = append(updated, next.Clone())
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, collection string, match []store.Predicate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPredicates(collection, match); err != nil {
		return err
	}
	s.tables[collection] = slices.DeleteFunc(s.tables[collection], func(row store.Row) bool {
		return matchAll(row, match)
	})
	return nil
}

func (s *Store) hasColumn(collection, column string) bool {
	cols, ok := s.schemas[collection]
	if !ok {
		return true
	}
	return cols[column]
}

func (s *Store) checkColumns(collection string, columns ...string) error {
	for _, c := range columns {
		if !s.hasColumn(collection, c) {
			return &store.Error{
				Code:    store.CodeUndefinedColumn,
				Message: fmt.Sprintf("column %s.%s does not exist", collection, c),
			}
		}
	}
	return nil
}

func (s *Store) checkPredicates(collection string, preds []store.Predicate) error {
	for _, p := range preds {
		if err := s.checkColumns(collection, p.Fields()...); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) checkUnique(collection string, candidate, self store.Row) error {
	for _, cols := range s.uniques[collection] {
		for _, existing := range s.tables[collection] {
			if self != nil && existing["id"] == self["id"] {
				continue
			}
			same := true
			for _, c := range cols {
				if cmp, ok := compare(existing[c], candidate[c]); !ok || cmp != 0 {
					same = false
					break
				}
			}
			if same {
				return &store.Error{
					Code:    store.CodeUniqueViolation,
					Message: fmt.Sprintf("duplicate key value violates unique constraint on %s(%s)", collection, strings.Join(cols, ", ")),
				}
			}
		}
	}
	return nil
}

func (s *Store) related(e store.Embed, key any) store.Row {
	if key == nil {
		return nil
	}
	for _, row := range s.tables[e.Collection] {
		if c, ok := compare(row["id"], key); ok && c == 0 {
			return project(row, e.Columns)
		}
	}
	return nil
}

func project(row store.Row, columns []string) store.Row {
	if len(columns) == 0 {
		return row.Clone()
	}
	out := make(store.Row, len(columns))
	for _, c := range columns {
		out[c] = row[c]
	}
	return out
}
