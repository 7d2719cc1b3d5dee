package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuildersDoNotAlias(t *testing.T) {
	base := From("properties").Filter(Eq("status", "active"))
	a := base.Filter(Eq("city", "Austin"))
	b := base.Filter(Eq("city", "Boston"))

	require.Len(t, base.Where, 1)
	require.Len(t, a.Where, 2)
	require.Len(t, b.Where, 2)
	assert.Equal(t, "Austin", a.Where[1].Value)
	assert.Equal(t, "Boston", b.Where[1].Value)
}

func TestFingerprint(t *testing.T) {
	q1 := From("properties").Filter(Gte("price", 100.0)).OrderBy("created_at", true).Take(10)
	q2 := From("properties").Filter(Gte("price", 100.0)).OrderBy("created_at", true).Take(10)
	q3 := q1.Skip(10)

	assert.Equal(t, q1.Fingerprint(), q2.Fingerprint())
	assert.NotEqual(t, q1.Fingerprint(), q3.Fingerprint())
}

func TestPredicateFields(t *testing.T) {
	p := Or(Eq("verified", true), IsNull("owner_id"))
	assert.Equal(t, []string{"verified", "owner_id"}, p.Fields())
	assert.Equal(t, []string{"price"}, Lte("price", 5).Fields())
}

func TestRowAccessors(t *testing.T) {
	r := Row{
		"title":      "Loft",
		"price":      int64(250000),
		"beds":       3.0,
		"verified":   int64(1),
		"created_at": "2025-02-03 04:05:06",
		"amenities":  `["pool","garage"]`,
		"property":   map[string]any{"title": "nested"},
	}

	assert.Equal(t, "Loft", r.String("title"))
	assert.Equal(t, 250000.0, r.Float("price"))
	assert.Equal(t, 3, r.Int("beds"))
	assert.True(t, r.Bool("verified"))
	assert.Equal(t, 2025, r.Time("created_at").Year())
	assert.Equal(t, []string{"pool", "garage"}, r.Strings("amenities"))
	assert.Equal(t, "nested", r.Embedded("property").String("title"))
	assert.Nil(t, r.StringPtr("missing"))
	assert.Empty(t, r.String("missing"))
}
