package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/nestly/internal/domain/activity"
	"github.com/rpggio/nestly/internal/domain/favorite"
	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/domain/search"
)

// PropertyService defines listing operations needed by MCP.
type PropertyService interface {
	List(ctx context.Context, c property.FilterCriteria) (property.QueryResult[property.Property], error)
	Featured(ctx context.Context, limit int) (property.QueryResult[property.Property], error)
	Get(ctx context.Context, id string) (*property.Property, error)
}

// FavoriteService defines saved-property operations needed by MCP.
type FavoriteService interface {
	List(ctx context.Context, userID string) ([]favorite.Favorite, error)
	Add(ctx context.Context, userID, propertyID string) (*favorite.Favorite, error)
	Remove(ctx context.Context, userID, propertyID string) error
}

// SearchService defines saved-search operations needed by MCP.
type SearchService interface {
	List(ctx context.Context, userID string) ([]search.SavedSearch, error)
	Create(ctx context.Context, userID string, req search.CreateRequest) (*search.SavedSearch, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Feed(ctx context.Context, userID string) ([]activity.Activity, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Properties PropertyService
	Favorites  FavoriteService
	Searches   SearchService
	Activity   ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      UserResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultUser   string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	defaultUser := cfg.DefaultUser
	if defaultUser == "" {
		defaultUser = "default"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "nestly",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio is local only and never authenticates.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(defaultUser))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(callLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(callLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services, logger)

	return server
}

// NewHTTPHandler serves server over streamable HTTP.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)
}
