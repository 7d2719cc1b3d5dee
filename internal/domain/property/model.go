package property

import "time"

// PropertyType classifies the building.
type PropertyType string

const (
	TypeHouse      PropertyType = "house"
	TypeApartment  PropertyType = "apartment"
	TypeCondo      PropertyType = "condo"
	TypeTownhouse  PropertyType = "townhouse"
	TypeLand       PropertyType = "land"
	TypeCommercial PropertyType = "commercial"
)

// ListingType says whether a property is offered for sale or rent.
type ListingType string

const (
	ListingSale ListingType = "sale"
	ListingRent ListingType = "rent"
)

// Status is the lifecycle state of a listing.
type Status string

const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusSold    Status = "sold"
	StatusRented  Status = "rented"
)

// Property is a listing.
type Property struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Address      string       `json:"address,omitempty"`
	City         string       `json:"city,omitempty"`
	State        string       `json:"state,omitempty"`
	ZipCode      string       `json:"zip_code,omitempty"`
	Price        float64      `json:"price"`
	PropertyType PropertyType `json:"property_type,omitempty"`
	ListingType  ListingType  `json:"listing_type,omitempty"`
	Status       Status       `json:"status,omitempty"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    float64      `json:"bathrooms"`
	SquareFeet   int          `json:"square_feet,omitempty"`
	Amenities    []string     `json:"amenities,omitempty"`
	Images       []string     `json:"images,omitempty"`
	Featured     bool         `json:"featured"`
	Verified     bool         `json:"verified"`
	OwnerID      *string      `json:"owner_id,omitempty"`
	AgentID      *string      `json:"agent_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// FilterCriteria describes a property search. A nil field places no
// constraint on its dimension.
type FilterCriteria struct {
	City         *string       `json:"city,omitempty"`
	State        *string       `json:"state,omitempty"`
	PropertyType *PropertyType `json:"property_type,omitempty"`
	ListingType  *ListingType  `json:"listing_type,omitempty"`
	Status       *Status       `json:"status,omitempty"`
	MinPrice     *float64      `json:"min_price,omitempty"`
	MaxPrice     *float64      `json:"max_price,omitempty"`
	Bedrooms     *int          `json:"bedrooms,omitempty"`
	Bathrooms    *float64      `json:"bathrooms,omitempty"`
	Featured     *bool         `json:"featured,omitempty"`
	Search       *string       `json:"search,omitempty"`
	Amenities    []string      `json:"amenities,omitempty"`
}

// QueryResult is a page of rows with the exact number of matches. When
// Error is set, Rows is empty and TotalCount is zero.
type QueryResult[T any] struct {
	Rows       []T    `json:"rows"`
	TotalCount int    `json:"total_count"`
	Error      string `json:"error,omitempty"`
}
