package store

import (
	"encoding/json"
	"slices"
)

// Op is a predicate operator understood by every Client implementation.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	// OpILike is a case-insensitive substring match. Value is the raw
	// substring; backends add the wildcards.
	OpILike  Op = "ilike"
	OpIsNull Op = "is_null"
	// OpIn matches when the field equals any element of Value ([]any).
	OpIn Op = "in"
	// OpContains matches when the list-valued field holds every element of
	// Value ([]string).
	OpContains Op = "contains"
	// OpOr matches when any predicate in Any matches.
	OpOr Op = "or"
)

// Predicate is a single filter condition. Predicates in a Query are AND-ed.
type Predicate struct {
	Field string      `json:"field,omitempty"`
	Op    Op          `json:"op"`
	Value any         `json:"value,omitempty"`
	Any   []Predicate `json:"any,omitempty"`
}

// Order sorts a result by Field.
type Order struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

// Embed pulls columns of a related row into each result row under As.
// The related row is the one in Collection whose id equals LocalKey.
type Embed struct {
	Collection string   `json:"collection"`
	LocalKey   string   `json:"local_key"`
	As         string   `json:"as"`
	Columns    []string `json:"columns"`
}

// Query is a read against one collection.
type Query struct {
	Collection string      `json:"collection"`
	Columns    []string    `json:"columns,omitempty"`
	Where      []Predicate `json:"where,omitempty"`
	Order      []Order     `json:"order,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Limit      int         `json:"limit,omitempty"`
	Offset     int         `json:"offset,omitempty"`
}

// From starts a query against collection.
func From(collection string) Query {
	return Query{Collection: collection}
}

// Select restricts the returned columns.
func (q Query) Select(columns ...string) Query {
	q.Columns = append(slices.Clip(q.Columns), columns...)
	return q
}

// Filter adds predicates.
func (q Query) Filter(preds ...Predicate) Query {
	q.Where = append(slices.Clip(q.Where), preds...)
	return q
}

// OrderBy adds a sort key.
func (q Query) OrderBy(field string, desc bool) Query {
	q.Order = append(slices.Clip(q.Order), Order{Field: field, Desc: desc})
	return q
}

// With adds an embedded relation.
func (q Query) With(e Embed) Query {
	q.Embeds = append(slices.Clip(q.Embeds), e)
	return q
}

// Take limits the number of rows returned. Zero means no limit.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

// Skip sets the row offset.
func (q Query) Skip(n int) Query {
	q.Offset = n
	return q
}

// Fingerprint identifies the query by collection and serialized filters.
func (q Query) Fingerprint() string {
	data, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(data)
}

func Eq(field string, value any) Predicate  { return Predicate{Field: field, Op: OpEq, Value: value} }
func Neq(field string, value any) Predicate { return Predicate{Field: field, Op: OpNeq, Value: value} }
func Gt(field string, value any) Predicate  { return Predicate{Field: field, Op: OpGt, Value: value} }
func Gte(field string, value any) Predicate { return Predicate{Field: field, Op: OpGte, Value: value} }
func Lt(field string, value any) Predicate  { return Predicate{Field: field, Op: OpLt, Value: value} }
func Lte(field string, value any) Predicate { return Predicate{Field: field, Op: OpLte, Value: value} }

// ILike matches rows whose field contains substr, ignoring case.
func ILike(field, substr string) Predicate {
	return Predicate{Field: field, Op: OpILike, Value: substr}
}

// IsNull matches rows where field is absent.
func IsNull(field string) Predicate { return Predicate{Field: field, Op: OpIsNull} }

// In matches rows where field equals one of values.
func In(field string, values ...any) Predicate {
	return Predicate{Field: field, Op: OpIn, Value: values}
}

// Contains matches rows whose list-valued field holds all of values.
func Contains(field string, values ...string) Predicate {
	return Predicate{Field: field, Op: OpContains, Value: values}
}

// Or matches rows satisfying any of preds.
func Or(preds ...Predicate) Predicate { return Predicate{Op: OpOr, Any: preds} }

// Fields returns every field name referenced by p, including nested ones.
func (p Predicate) Fields() []string {
	if p.Op != OpOr {
		return []string{p.Field}
	}
	var out []string
	for _, sub := range p.Any {
		out = append(out, sub.Fields()...)
	}
	return out
}
