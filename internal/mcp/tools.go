package mcp

import (
	"context"
	"errors"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/nestly/internal/domain/favorite"
	"github.com/rpggio/nestly/internal/domain/search"
	"github.com/rpggio/nestly/internal/mutation"
)

const defaultFeaturedLimit = 6

var errNoUser = errors.New("unauthorized: no user in context")

type tools struct {
	svc    Services
	logger *slog.Logger
}

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	t := &tools{svc: svc, logger: logger}

	// Listings
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search_properties",
		Description: "Search visible listings by city, state, type, price range, rooms, amenities or free text. Newest first.",
	}, t.searchProperties)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "featured_properties",
		Description: "List featured listings, newest first",
	}, t.featuredProperties)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_property",
		Description: "Get a single listing by ID",
	}, t.getProperty)

	// Favorites
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_favorites",
		Description: "List the current user's saved properties",
	}, t.listFavorites)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_favorite",
		Description: "Save a property for the current user",
	}, t.addFavorite)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_favorite",
		Description: "Remove a saved property for the current user",
	}, t.removeFavorite)

	// Saved searches
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_saved_searches",
		Description: "List the current user's saved searches",
	}, t.listSavedSearches)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_search",
		Description: "Save a set of listing filters under a name, optionally with alerts",
	}, t.saveSearch)

	// Activity
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_activity_feed",
		Description: "Get the current user's recent activity, newest first",
	}, t.activityFeed)
}

func (t *tools) searchProperties(ctx context.Context, _ *sdkmcp.CallToolRequest, in SearchPropertiesParams) (*sdkmcp.CallToolResult, any, error) {
	res, err := t.svc.Properties.List(ctx, in.Criteria)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, PropertiesResponse{Properties: res.Rows, TotalCount: res.TotalCount}, nil
}

func (t *tools) featuredProperties(ctx context.Context, _ *sdkmcp.CallToolRequest, in FeaturedPropertiesParams) (*sdkmcp.CallToolResult, any, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	res, err := t.svc.Properties.Featured(ctx, limit)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, PropertiesResponse{Properties: res.Rows, TotalCount: res.TotalCount}, nil
}

func (t *tools) getProperty(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetPropertyParams) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.svc.Properties.Get(ctx, in.ID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, p, nil
}

func (t *tools) listFavorites(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListFavoritesParams) (*sdkmcp.CallToolResult, any, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, nil, errNoUser
	}
	favs, err := t.svc.Favorites.List(ctx, userID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, FavoritesResponse{Favorites: favs}, nil
}

func (t *tools) addFavorite(ctx context.Context, _ *sdkmcp.CallToolRequest, in FavoriteParams) (*sdkmcp.CallToolResult, any, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, nil, errNoUser
	}
	return write(ctx, t.logger, "add_favorite", func(ctx context.Context) (favorite.Favorite, error) {
		fav, err := t.svc.Favorites.Add(ctx, userID, in.PropertyID)
		if err != nil {
			return favorite.Favorite{}, err
		}
		return *fav, nil
	})
}

func (t *tools) removeFavorite(ctx context.Context, _ *sdkmcp.CallToolRequest, in FavoriteParams) (*sdkmcp.CallToolResult, any, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, nil, errNoUser
	}
	return write(ctx, t.logger, "remove_favorite", func(ctx context.Context) (RemoveFavoriteResponse, error) {
		if err := t.svc.Favorites.Remove(ctx, userID, in.PropertyID); err != nil {
			return RemoveFavoriteResponse{}, err
		}
		return RemoveFavoriteResponse{PropertyID: in.PropertyID, Removed: true}, nil
	})
}

func (t *tools) listSavedSearches(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListSavedSearchesParams) (*sdkmcp.CallToolResult, any, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, nil, errNoUser
	}
	searches, err := t.svc.Searches.List(ctx, userID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, SavedSearchesResponse{Searches: searches}, nil
}

func (t *tools) saveSearch(ctx context.Context, _ *sdkmcp.CallToolRequest, in SaveSearchParams) (*sdkmcp.CallToolResult, any, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, nil, errNoUser
	}
	return write(ctx, t.logger, "save_search", func(ctx context.Context) (search.SavedSearch, error) {
		saved, err := t.svc.Searches.Create(ctx, userID, search.CreateRequest{
			Name:          in.Name,
			Criteria:      in.Criteria,
			AlertsEnabled: in.AlertsEnabled,
		})
		if err != nil {
			return search.SavedSearch{}, err
		}
		return *saved, nil
	})
}

func (t *tools) activityFeed(ctx context.Context, _ *sdkmcp.CallToolRequest, _ GetActivityFeedParams) (*sdkmcp.CallToolResult, any, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, nil, errNoUser
	}
	items, err := t.svc.Activity.Feed(ctx, userID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	out := make([]ActivityEntryResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ActivityEntryResponse{Activity: a, Icon: a.Type.Icon()})
	}
	return nil, ActivityFeedResponse{Activity: out}, nil
}

// write runs a tool's store write through mutation.Run so tool writes are
// counted and logged like every other write.
func write[T any](ctx context.Context, logger *slog.Logger, operation string, f func(context.Context) (T, error)) (*sdkmcp.CallToolResult, any, error) {
	var cause error
	res := mutation.Run(ctx, operation, func(ctx context.Context) (T, error) {
		v, err := f(ctx)
		cause = err
		return v, err
	}, mutation.WithLogger(logger))
	if !res.Success {
		if cause != nil {
			return nil, nil, toolError(cause)
		}
		return nil, nil, errors.New(res.Error)
	}
	return nil, res.Data, nil
}
