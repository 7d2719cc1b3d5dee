package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/nestly/internal/config"
	"github.com/rpggio/nestly/internal/domain/activity"
	"github.com/rpggio/nestly/internal/domain/favorite"
	"github.com/rpggio/nestly/internal/domain/finance"
	"github.com/rpggio/nestly/internal/domain/profile"
	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/domain/search"
	"github.com/rpggio/nestly/internal/domain/support"
	"github.com/rpggio/nestly/internal/mcp"
	"github.com/rpggio/nestly/internal/retry"
	"github.com/rpggio/nestly/internal/sqlite"
	"github.com/rpggio/nestly/internal/store"
	"github.com/rpggio/nestly/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		logFile, err := openLogFile(cfg.Log.Path, cfg.Log.MaxBytes, cfg.Log.KeepBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer logFile.Close()
			logWriter = logFile
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrate(db, cfg.Retry.Policy(), logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var client store.Client = store.Instrument(sqlite.NewStore(db))
	if cfg.Store.Dedup {
		client = store.Dedup(client)
	}

	propertySvc := property.NewService(client, logger)
	favoriteSvc := favorite.NewService(client, logger)
	searchSvc := search.NewService(client, logger)
	activitySvc := activity.NewService(client, logger)

	resolver := transport.NewAPIKeyResolver(client)
	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Properties: propertySvc,
			Favorites:  favoriteSvc,
			Searches:   searchSvc,
			Activity:   activitySvc,
		},
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		DefaultUser:   cfg.Auth.DefaultUser,
		Logger:        logger,
	})

	// Branch based on transport mode
	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
		return
	}

	auth := transport.StaticUserMiddleware(cfg.Auth.DefaultUser)
	if cfg.Auth.Enabled {
		auth = transport.AuthMiddleware(resolver)
	}
	router := transport.NewServer(transport.Config{
		Services: transport.Services{
			Properties: propertySvc,
			Favorites:  favoriteSvc,
			Searches:   searchSvc,
			Profiles:   profile.NewService(client, logger),
			Tickets:    support.NewService(client, logger),
			Activity:   activitySvc,
			Finance:    finance.NewService(client, logger),
		},
		Auth:           auth,
		MCP:            mcp.NewHTTPHandler(mcpServer),
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	})
	runHTTPMode(logger, router, cfg.Server.Host, cfg.Server.Port)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	stdio := &sdkmcp.StdioTransport{}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, stdio); err != nil && ctx.Err() == nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// migrate applies migrations, backing off while the database file is busy.
func migrate(db *sqlite.DB, policy retry.Policy, logger *slog.Logger) error {
	for attempt := 0; ; attempt++ {
		err := db.RunMigrations()
		if err == nil || !policy.ShouldRetry(attempt) {
			return err
		}
		delay := policy.NextDelay(attempt)
		logger.Warn("migrations failed, retrying", "error", err, "attempt", attempt+1, "delay", delay)
		time.Sleep(delay)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
