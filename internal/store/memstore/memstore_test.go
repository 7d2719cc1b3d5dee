package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/nestly/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPropertyStore() *Store {
	return New(
		WithSchema("properties", "title", "city", "price", "verified", "owner_id", "amenities", "created_at"),
		WithSchema("favorites", "user_id", "property_id", "created_at"),
		WithUnique("favorites", "user_id", "property_id"),
	)
}

func TestQuery_FiltersOrdersAndCounts(t *testing.T) {
	s := newPropertyStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Seed("properties",
		store.Row{"id": "a", "city": "San Diego", "price": 100.0, "created_at": base},
		store.Row{"id": "b", "city": "santa fe", "price": 200.0, "created_at": base.Add(2 * time.Hour)},
		store.Row{"id": "c", "city": "Denver", "price": 300.0, "created_at": base.Add(time.Hour)},
		store.Row{"id": "d", "city": "SAN JOSE", "price": 400.0, "created_at": base.Add(3 * time.Hour)},
	)

	q := store.From("properties").
		Filter(store.ILike("city", "san"), store.Lte("price", 300.0)).
		OrderBy("created_at", true)
	res, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "b", res.Rows[0].String("id"))
	assert.Equal(t, "a", res.Rows[1].String("id"))
}

func TestQuery_CountIgnoresLimitAndOffset(t *testing.T) {
	s := newPropertyStore()
	for i := 0; i < 5; i++ {
		s.Seed("properties", store.Row{"price": float64(i)})
	}

	res, err := s.Query(context.Background(), store.From("properties").OrderBy("price", false).Skip(1).Take(2))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Count)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 1.0, res.Rows[0].Float("price"))
	assert.Equal(t, 2.0, res.Rows[1].Float("price"))

	res, err = s.Query(context.Background(), store.From("properties").Skip(10))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Count)
	assert.Empty(t, res.Rows)
}

func TestQuery_UndefinedColumn(t *testing.T) {
	s := New(WithSchema("properties", "title", "created_at"))

	_, err := s.Query(context.Background(), store.From("properties").Filter(store.Or(store.Eq("verified", true), store.IsNull("owner_id"))))
	require.Error(t, err)
	assert.True(t, store.IsUndefinedColumn(err))
	assert.Contains(t, err.Error(), "properties.verified")

	_, err = s.Query(context.Background(), store.From("properties").Select("title", "featured"))
	assert.True(t, store.IsUndefinedColumn(err))
}

func TestQuery_VisibilityOr(t *testing.T) {
	s := newPropertyStore()
	s.Seed("properties",
		store.Row{"id": "verified", "verified": true, "owner_id": "o1"},
		store.Row{"id": "unowned", "verified": false},
		store.Row{"id": "hidden", "verified": false, "owner_id": "o2"},
	)

	res, err := s.Query(context.Background(), store.From("properties").Filter(store.Or(store.Eq("verified", true), store.IsNull("owner_id"))))
	require.NoError(t, err)
	ids := []string{}
	for _, r := range res.Rows {
		ids = append(ids, r.String("id"))
	}
	assert.ElementsMatch(t, []string{"verified", "unowned"}, ids)
}

func TestQuery_InAndContains(t *testing.T) {
	s := newPropertyStore()
	s.Seed("properties",
		store.Row{"id": "a", "amenities": []string{"pool", "gym"}},
		store.Row{"id": "b", "amenities": `["pool"]`},
		store.Row{"id": "c"},
	)

	res, err := s.Query(context.Background(), store.From("properties").Filter(store.Contains("amenities", "pool")))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	res, err = s.Query(context.Background(), store.From("properties").Filter(store.Contains("amenities", "pool", "gym")))
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "a", res.Rows[0].String("id"))

	res, err = s.Query(context.Background(), store.From("properties").Filter(store.In("id", "a", "c")))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
}

func TestQuery_Embed(t *testing.T) {
	s := newPropertyStore()
	s.Seed("properties", store.Row{"id": "p1", "title": "Cabin", "price": 10.0})
	s.Seed("favorites",
		store.Row{"id": "f1", "user_id": "u1", "property_id": "p1"},
		store.Row{"id": "f2", "user_id": "u1", "property_id": "gone"},
	)

	q := store.From("favorites").
		Filter(store.Eq("user_id", "u1")).
		OrderBy("id", false).
		With(store.Embed{Collection: "properties", LocalKey: "property_id", As: "property", Columns: []string{"title"}})
	res, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, store.Row{"title": "Cabin"}, res.Rows[0].Embedded("property"))
	assert.Nil(t, res.Rows[1].Embedded("property"))
}

func TestInsert_StampsIDAndCreatedAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	s := New(WithSchema("favorites", "user_id", "property_id", "created_at"), WithClock(func() time.Time { return now }))

	row, err := s.Insert(context.Background(), "favorites", store.Row{"user_id": "u1", "property_id": "p1"})
	require.NoError(t, err)
	assert.NotEmpty(t, row.String("id"))
	assert.Equal(t, now.UTC(), row["created_at"])
	assert.Equal(t, 1, s.Len("favorites"))

	_, err = s.Insert(context.Background(), "favorites", store.Row{"user_id": "u1", "note": "x"})
	assert.True(t, store.IsUndefinedColumn(err))
}

func TestInsert_UniqueViolation(t *testing.T) {
	s := newPropertyStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, "favorites", store.Row{"user_id": "u1", "property_id": "p1"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "favorites", store.Row{"user_id": "u1", "property_id": "p1"})
	require.Error(t, err)
	assert.True(t, store.IsUniqueViolation(err))
	assert.Equal(t, "already exists", store.Message(err))

	_, err = s.Insert(ctx, "favorites", store.Row{"user_id": "u2", "property_id": "p1"})
	assert.NoError(t, err)
}

func TestUpdateAndDelete(t *testing.T) {
	s := newPropertyStore()
	ctx := context.Background()
	s.Seed("properties",
		store.Row{"id": "a", "title": "one", "price": 1.0},
		store.Row{"id": "b", "title": "two", "price": 2.0},
	)

	rows, err := s.Update(ctx, "properties", store.Row{"title": "uno"}, []store.Predicate{store.Eq("id", "a")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "uno", rows[0].String("title"))

	require.NoError(t, s.Delete(ctx, "properties", []store.Predicate{store.Gt("price", 1.5)}))
	assert.Equal(t, 1, s.Len("properties"))
}

func TestCancelledContext(t *testing.T) {
	s := newPropertyStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Query(ctx, store.From("properties"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "request cancelled", store.Message(err))
}
