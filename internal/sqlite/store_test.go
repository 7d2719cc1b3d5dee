package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/nestly/internal/store"
	"github.com/rpggio/nestly/internal/store/memstore"
	"github.com/stretchr/testify/require"
)

func seedProperty(t *testing.T, s *Store, row store.Row) store.Row {
	t.Helper()
	out, err := s.Insert(context.Background(), "properties", row)
	require.NoError(t, err)
	return out
}

func TestStore_InsertAndQuery(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedProperty(t, s, store.Row{"title": "Old loft", "city": "Austin", "price": 300000.0, "verified": true, "created_at": base})
	seedProperty(t, s, store.Row{"title": "New condo", "city": "Boston", "price": 450000.0, "verified": true, "created_at": base.Add(time.Hour)})

	res, err := s.Query(ctx, store.From("properties").OrderBy("created_at", true))
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	require.Len(t, res.Rows, 2)
	require.Equal(t, "New condo", res.Rows[0].String("title"))
	require.Equal(t, "Old loft", res.Rows[1].String("title"))
	require.NotEmpty(t, res.Rows[0].String("id"))
	require.True(t, res.Rows[0].Bool("verified"))
}

func TestStore_CitySubstringIgnoresCase(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	seedProperty(t, s, store.Row{"title": "A", "city": "San Francisco", "price": 1.0})
	seedProperty(t, s, store.Row{"title": "B", "city": "south san jose", "price": 1.0})
	seedProperty(t, s, store.Row{"title": "C", "city": "Denver", "price": 1.0})

	res, err := s.Query(ctx, store.From("properties").Filter(store.ILike("city", "SAN")))
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	for _, row := range res.Rows {
		require.Contains(t, []string{"San Francisco", "south san jose"}, row.String("city"))
	}
}

func TestStore_CitySubstringIgnoresCaseBeyondASCII(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	seedProperty(t, s, store.Row{"title": "A", "city": "ÅLESUND", "price": 1.0})
	seedProperty(t, s, store.Row{"title": "B", "city": "SÃO PAULO", "price": 1.0})
	seedProperty(t, s, store.Row{"title": "C", "city": "Denver", "price": 1.0})

	for needle, want := range map[string]string{
		"ålesund": "ÅLESUND",
		"são":     "SÃO PAULO",
		"SÃo":     "SÃO PAULO",
	} {
		res, err := s.Query(ctx, store.From("properties").Filter(store.ILike("city", needle)))
		require.NoError(t, err)
		require.Equal(t, 1, res.Count, needle)
		require.Equal(t, want, res.Rows[0].String("city"), needle)
	}
}

func TestStore_ILikeMatchesMemstore(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	mem := memstore.New()
	ctx := context.Background()

	for _, city := range []string{"ÅLESUND", "SÃO PAULO", "Zürich", "austin"} {
		row := store.Row{"title": city, "city": city, "price": 1.0}
		seedProperty(t, s, row)
		mem.Seed("properties", row)
	}

	for _, needle := range []string{"å", "SÃO", "zÜr", "AUS", "x"} {
		q := store.From("properties").Filter(store.ILike("city", needle))
		got, err := s.Query(ctx, q)
		require.NoError(t, err)
		want, err := mem.Query(ctx, q)
		require.NoError(t, err)
		require.Equal(t, want.Count, got.Count, needle)
	}
}

func TestStore_ILikeEscapesWildcards(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	seedProperty(t, s, store.Row{"title": "100% financed", "price": 1.0})
	seedProperty(t, s, store.Row{"title": "100 acres", "price": 1.0})

	res, err := s.Query(ctx, store.From("properties").Filter(store.ILike("title", "100%")))
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	require.Equal(t, "100% financed", res.Rows[0].String("title"))
}

func TestStore_PriceBoundsInclusive(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	for _, price := range []float64{99, 100, 150, 200, 201} {
		seedProperty(t, s, store.Row{"title": "p", "price": price})
	}

	res, err := s.Query(ctx, store.From("properties").Filter(store.Gte("price", 100.0), store.Lte("price", 200.0)))
	require.NoError(t, err)
	require.Equal(t, 3, res.Count)
	for _, row := range res.Rows {
		require.GreaterOrEqual(t, row.Float("price"), 100.0)
		require.LessOrEqual(t, row.Float("price"), 200.0)
	}
}

func TestStore_OrGroupAndLimit(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	seedProperty(t, s, store.Row{"title": "Lake house", "price": 1.0, "verified": false})
	seedProperty(t, s, store.Row{"title": "City flat", "description": "near the lake", "price": 1.0, "verified": true})
	seedProperty(t, s, store.Row{"title": "Barn", "price": 1.0, "verified": true})

	q := store.From("properties").
		Filter(store.Or(store.ILike("title", "lake"), store.ILike("description", "lake"))).
		Take(1)
	res, err := s.Query(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	require.Len(t, res.Rows, 1)

	q = store.From("properties").Filter(store.Or(store.Eq("verified", true), store.IsNull("owner_id")), store.Eq("verified", false))
	res, err = s.Query(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	require.Equal(t, "Lake house", res.Rows[0].String("title"))
}

func TestStore_ContainsAmenities(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	seedProperty(t, s, store.Row{"title": "Pool house", "price": 1.0, "amenities": []string{"pool", "garage"}})
	seedProperty(t, s, store.Row{"title": "Garage only", "price": 1.0, "amenities": []string{"garage"}})

	res, err := s.Query(ctx, store.From("properties").Filter(store.Contains("amenities", "pool", "garage")))
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	require.Equal(t, []string{"pool", "garage"}, res.Rows[0].Strings("amenities"))
}

func TestStore_Embed(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	p := seedProperty(t, s, store.Row{"title": "Cottage", "price": 1.0})
	_, err := s.Insert(ctx, "favorites", store.Row{"user_id": "u1", "property_id": p.String("id")})
	require.NoError(t, err)

	q := store.From("favorites").
		Filter(store.Eq("user_id", "u1")).
		With(store.Embed{Collection: "properties", LocalKey: "property_id", As: "property", Columns: []string{"id", "title"}})
	res, err := s.Query(ctx, q)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "Cottage", res.Rows[0].Embedded("property").String("title"))
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	p := seedProperty(t, s, store.Row{"title": "Before", "price": 1.0})
	id := p.String("id")

	rows, err := s.Update(ctx, "properties", store.Row{"title": "After"}, []store.Predicate{store.Eq("id", id)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "After", rows[0].String("title"))

	require.NoError(t, s.Delete(ctx, "properties", []store.Predicate{store.Eq("id", id)}))
	res, err := s.Query(ctx, store.From("properties"))
	require.NoError(t, err)
	require.Equal(t, 0, res.Count)

	err = s.Delete(ctx, "properties", nil)
	require.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestStore_UniqueViolationCode(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	p := seedProperty(t, s, store.Row{"title": "x", "price": 1.0})
	fav := store.Row{"user_id": "u1", "property_id": p.String("id")}
	_, err := s.Insert(ctx, "favorites", fav)
	require.NoError(t, err)

	_, err = s.Insert(ctx, "favorites", fav)
	require.Error(t, err)
	require.True(t, store.IsUniqueViolation(err))
}

func TestStore_UndefinedColumnOnLegacySchema(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE properties (id TEXT PRIMARY KEY, title TEXT, created_at TIMESTAMP)`)
	require.NoError(t, err)

	s := NewStore(db)
	_, err = s.Query(context.Background(), store.From("properties").Filter(store.Eq("verified", true)))
	require.Error(t, err)
	require.True(t, store.IsUndefinedColumn(err))
	require.Equal(t, store.CodeUndefinedColumn, store.Code(err))
}

func TestStore_RejectsBadIdentifiers(t *testing.T) {
	db := NewTestDB(t)
	s := NewStore(db)

	_, err := s.Query(context.Background(), store.From("properties").Filter(store.Eq("price; DROP TABLE properties", 1)))
	require.ErrorIs(t, err, store.ErrInvalidInput)
}
