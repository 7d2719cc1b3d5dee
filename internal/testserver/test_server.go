// Package testserver runs the full HTTP stack against an in-memory SQLite
// database for end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/nestly/internal/domain/activity"
	"github.com/rpggio/nestly/internal/domain/favorite"
	"github.com/rpggio/nestly/internal/domain/finance"
	"github.com/rpggio/nestly/internal/domain/profile"
	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/domain/search"
	"github.com/rpggio/nestly/internal/domain/support"
	"github.com/rpggio/nestly/internal/mcp"
	"github.com/rpggio/nestly/internal/sqlite"
	"github.com/rpggio/nestly/internal/store"
	"github.com/rpggio/nestly/internal/transport"
)

type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Store  store.Client
	Token  string
	UserID string
}

// New starts a server whose token authenticates as userID. A buyer
// profile is created for userID.
func New(t *testing.T, token, userID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	client := store.Instrument(sqlite.NewStore(db))
	resolver := transport.NewAPIKeyResolver(client)

	propertySvc := property.NewService(client, nil)
	favoriteSvc := favorite.NewService(client, nil)
	searchSvc := search.NewService(client, nil)
	activitySvc := activity.NewService(client, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Properties: propertySvc,
			Favorites:  favoriteSvc,
			Searches:   searchSvc,
			Activity:   activitySvc,
		},
		Resolver:      resolver,
		AuthEnabled:   true,
		TransportMode: "http",
	})

	router := transport.NewServer(transport.Config{
		Services: transport.Services{
			Properties: propertySvc,
			Favorites:  favoriteSvc,
			Searches:   searchSvc,
			Profiles:   profile.NewService(client, nil),
			Tickets:    support.NewService(client, nil),
			Activity:   activitySvc,
			Finance:    finance.NewService(client, nil),
		},
		Auth:           transport.AuthMiddleware(resolver),
		MCP:            mcp.NewHTTPHandler(mcpServer),
		RequestTimeout: 10 * time.Second,
	})
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server: server,
		DB:     db,
		Store:  client,
		Token:  token,
		UserID: userID,
	}

	require.NoError(t, ts.AddAPIKey(token, userID))
	_, err = client.Insert(context.Background(), profile.Collection, store.Row{
		"id":        userID,
		"full_name": "Test User",
		"role":      string(profile.RoleBuyer),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// AddAPIKey registers token for userID.
func (ts *TestServer) AddAPIKey(token, userID string) error {
	_, err := ts.DB.Exec(
		`INSERT INTO api_keys (key_hash, user_id, created_at) VALUES (?, ?, ?)`,
		transport.HashToken(token), userID, time.Now().UTC(),
	)
	return err
}

// AddProperty inserts a listing row.
func (ts *TestServer) AddProperty(t *testing.T, row store.Row) {
	t.Helper()
	_, err := ts.Store.Insert(context.Background(), property.Collection, row)
	require.NoError(t, err)
}
