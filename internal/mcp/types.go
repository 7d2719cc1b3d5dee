package mcp

import (
	"github.com/rpggio/nestly/internal/domain/activity"
	"github.com/rpggio/nestly/internal/domain/favorite"
	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/domain/search"
)

type SearchPropertiesParams struct {
	Criteria property.FilterCriteria `json:"criteria,omitempty" jsonschema:"listing filters; all are optional and combine with AND"`
}

type FeaturedPropertiesParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of listings, default 6"`
}

type GetPropertyParams struct {
	ID string `json:"id" jsonschema:"property ID"`
}

type ListFavoritesParams struct{}

type FavoriteParams struct {
	PropertyID string `json:"property_id" jsonschema:"property ID"`
}

type ListSavedSearchesParams struct{}

type SaveSearchParams struct {
	Name          string                  `json:"name" jsonschema:"display name for the search"`
	Criteria      property.FilterCriteria `json:"criteria,omitempty" jsonschema:"filters to save"`
	AlertsEnabled bool                    `json:"alerts_enabled,omitempty" jsonschema:"notify when new listings match"`
}

type GetActivityFeedParams struct{}

type PropertiesResponse struct {
	Properties []property.Property `json:"properties"`
	TotalCount int                 `json:"total_count"`
}

type FavoritesResponse struct {
	Favorites []favorite.Favorite `json:"favorites"`
}

type SavedSearchesResponse struct {
	Searches []search.SavedSearch `json:"searches"`
}

type ActivityFeedResponse struct {
	Activity []ActivityEntryResponse `json:"activity"`
}

type ActivityEntryResponse struct {
	activity.Activity
	Icon string `json:"icon"`
}

type RemoveFavoriteResponse struct {
	PropertyID string `json:"property_id"`
	Removed    bool   `json:"removed"`
}
