package property

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rpggio/nestly/internal/store"
)

// Collection is the store collection holding listings.
const Collection = "properties"

// Visibility restricts results to verified listings and listings without
// an owner.
func Visibility() store.Predicate {
	return store.Or(store.Eq("verified", true), store.IsNull("owner_id"))
}

// BuildQuery translates criteria into a query over all visible listings,
// newest first.
func BuildQuery(c FilterCriteria) store.Query {
	q := store.From(Collection).Filter(Visibility())

	if c.City != nil {
		q = q.Filter(store.ILike("city", *c.City))
	}
	if c.State != nil {
		q = q.Filter(store.ILike("state", *c.State))
	}
	if c.PropertyType != nil {
		q = q.Filter(store.Eq("property_type", string(*c.PropertyType)))
	}
	if c.ListingType != nil {
		q = q.Filter(store.Eq("listing_type", string(*c.ListingType)))
	}
	if c.Status != nil {
		q = q.Filter(store.Eq("status", string(*c.Status)))
	}
	if c.MinPrice != nil {
		q = q.Filter(store.Gte("price", *c.MinPrice))
	}
	if c.MaxPrice != nil {
		q = q.Filter(store.Lte("price", *c.MaxPrice))
	}
	if c.Bedrooms != nil {
		q = q.Filter(store.Eq("bedrooms", *c.Bedrooms))
	}
	if c.Bathrooms != nil {
		q = q.Filter(store.Eq("bathrooms", *c.Bathrooms))
	}
	if c.Featured != nil {
		q = q.Filter(store.Eq("featured", *c.Featured))
	}
	if len(c.Amenities) > 0 {
		q = q.Filter(store.Contains("amenities", c.Amenities...))
	}
	if c.Search != nil {
		q = q.Filter(store.Or(
			store.ILike("title", *c.Search),
			store.ILike("description", *c.Search),
			store.ILike("address", *c.Search),
		))
	}

	return q.OrderBy("created_at", true)
}

// WithoutVisibility returns q with the visibility predicate removed.
func WithoutVisibility(q store.Query) store.Query {
	vis := Visibility()
	where := make([]store.Predicate, 0, len(q.Where))
	for _, p := range q.Where {
		if reflect.DeepEqual(p, vis) {
			continue
		}
		where = append(where, p)
	}
	q.Where = where
	return q
}

// Summary renders criteria as a short human-readable line.
func (c FilterCriteria) Summary() string {
	var parts []string
	if c.PropertyType != nil {
		parts = append(parts, string(*c.PropertyType))
	}
	if c.ListingType != nil {
		parts = append(parts, "for "+string(*c.ListingType))
	}
	switch {
	case c.City != nil && c.State != nil:
		parts = append(parts, fmt.Sprintf("in %s, %s", *c.City, *c.State))
	case c.City != nil:
		parts = append(parts, "in "+*c.City)
	case c.State != nil:
		parts = append(parts, "in "+*c.State)
	}
	switch {
	case c.MinPrice != nil && c.MaxPrice != nil:
		parts = append(parts, fmt.Sprintf("$%.0f-$%.0f", *c.MinPrice, *c.MaxPrice))
	case c.MinPrice != nil:
		parts = append(parts, fmt.Sprintf("from $%.0f", *c.MinPrice))
	case c.MaxPrice != nil:
		parts = append(parts, fmt.Sprintf("up to $%.0f", *c.MaxPrice))
	}
	if c.Bedrooms != nil {
		parts = append(parts, fmt.Sprintf("%d bd", *c.Bedrooms))
	}
	if c.Bathrooms != nil {
		parts = append(parts, fmt.Sprintf("%g ba", *c.Bathrooms))
	}
	if len(c.Amenities) > 0 {
		parts = append(parts, "with "+strings.Join(c.Amenities, ", "))
	}
	if c.Search != nil {
		parts = append(parts, fmt.Sprintf("matching %q", *c.Search))
	}
	if len(parts) == 0 {
		return "All properties"
	}
	return strings.Join(parts, " ")
}

// FromRow maps a store row to a Property.
func FromRow(r store.Row) Property {
	return Property{
		ID:           r.String("id"),
		Title:        r.String("title"),
		Description:  r.String("description"),
		Address:      r.String("address"),
		City:         r.String("city"),
		State:        r.String("state"),
		ZipCode:      r.String("zip_code"),
		Price:        r.Float("price"),
		PropertyType: PropertyType(r.String("property_type")),
		ListingType:  ListingType(r.String("listing_type")),
		Status:       Status(r.String("status")),
		Bedrooms:     r.Int("bedrooms"),
		Bathrooms:    r.Float("bathrooms"),
		SquareFeet:   r.Int("square_feet"),
		Amenities:    r.Strings("amenities"),
		Images:       r.Strings("images"),
		Featured:     r.Bool("featured"),
		Verified:     r.Bool("verified"),
		OwnerID:      r.StringPtr("owner_id"),
		AgentID:      r.StringPtr("agent_id"),
		CreatedAt:    r.Time("created_at"),
		UpdatedAt:    r.Time("updated_at"),
	}
}
