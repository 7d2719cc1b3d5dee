package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `nestly exposes a real-estate marketplace: listings, saved properties, saved searches and a personal activity feed.

Core concepts:
- Property: a listing. Only verified listings and listings without an owner are ever returned.
- Filters: optional criteria combined with AND. City, state and search match case-insensitive substrings. Price bounds are inclusive.
- Favorite: a property the current user saved. Saving twice fails with ALREADY_EXISTS.
- Saved search: a named set of filters, optionally with alerts.
- Activity: the user's recent actions merged from several sources, newest first, at most 20.

Workflow:
1) Browse: search_properties or featured_properties, then get_property for details.
2) Save: add_favorite / remove_favorite, save_search.
3) Review: list_favorites, list_saved_searches, get_activity_feed.

Docs:
- nestly://docs/index
- nestly://docs/filters
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "nestly://docs/index",
		Name:        "docs_index",
		Title:       "nestly docs index",
		Description: "Entry point for agent-facing docs.",
		Content: `# nestly: Agent Docs Index

## Tools

| Tool | Purpose |
| --- | --- |
| search_properties | Filtered listing search, newest first |
| featured_properties | Featured listings |
| get_property | One listing by ID |
| list_favorites / add_favorite / remove_favorite | Saved properties |
| list_saved_searches / save_search | Saved filter sets |
| get_activity_feed | Recent activity |

## Errors

Tool errors carry a code: PROPERTY_NOT_FOUND, SEARCH_NOT_FOUND, INVALID_INPUT,
ALREADY_EXISTS, UNKNOWN_REFERENCE. Anything else is a store failure and is safe
to retry later.

## Read next

- nestly://docs/filters for the exact filter semantics.
`,
	},
	{
		URI:         "nestly://docs/filters",
		Name:        "docs_filters",
		Title:       "Listing filters",
		Description: "How search_properties and save_search criteria are applied.",
		Content: `# Listing filters

All fields are optional. Present fields combine with AND.

| Field | Match |
| --- | --- |
| city, state | case-insensitive substring |
| property_type | exact: house, apartment, condo, townhouse, land, commercial |
| listing_type | exact: sale, rent |
| status | exact: active, pending, sold, rented |
| min_price, max_price | inclusive bounds |
| bedrooms, bathrooms | exact |
| featured | exact |
| amenities | listing has every named amenity |
| search | case-insensitive substring of title, description or address |

An inverted range (min_price above max_price) is not an error; it matches nothing.

Results are always restricted to verified listings and listings without an
owner. Against older databases without those columns the restriction is
dropped and the query retried once.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
