package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpggio/nestly/internal/domain/activity"
	"github.com/rpggio/nestly/internal/domain/favorite"
	"github.com/rpggio/nestly/internal/domain/finance"
	"github.com/rpggio/nestly/internal/domain/profile"
	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/domain/search"
	"github.com/rpggio/nestly/internal/domain/support"
	"github.com/rpggio/nestly/internal/mutation"
)

const (
	defaultPageLimit   = 6
	defaultFinanceDays = 30
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Properties *property.Service
	Favorites  *favorite.Service
	Searches   *search.Service
	Profiles   *profile.Service
	Tickets    *support.Service
	Activity   *activity.Service
	Finance    *finance.Service
}

// Config configures the HTTP router.
type Config struct {
	Services Services
	// Auth attributes requests to a user. Routes under /v1 require it.
	Auth func(http.Handler) http.Handler
	// MCP is mounted at /mcp. It authenticates its own requests.
	MCP            http.Handler
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewServer creates an HTTP router with middleware.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{svc: cfg.Services, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}

		r.Route("/v1", func(r chi.Router) {
			if cfg.RequestTimeout > 0 {
				r.Use(middleware.Timeout(cfg.RequestTimeout))
			}
			r.Use(requireUser)

			r.Get("/properties", srv.handleListProperties)
			r.Get("/properties/featured", srv.handleFeatured)
			r.Get("/properties/{id}", srv.handleGetProperty)
			r.Get("/agents/{id}/properties", srv.handleAgentProperties)

			r.Route("/me", func(r chi.Router) {
				r.Get("/profile", srv.handleGetProfile)
				r.Patch("/profile", srv.handleUpdateProfile)

				r.Get("/favorites", srv.handleListFavorites)
				r.Put("/favorites/{propertyID}", srv.handleAddFavorite)
				r.Delete("/favorites/{propertyID}", srv.handleRemoveFavorite)

				r.Get("/searches", srv.handleListSearches)
				r.Post("/searches", srv.handleCreateSearch)
				r.Delete("/searches/{id}", srv.handleDeleteSearch)
				r.Put("/searches/{id}/alerts", srv.handleSetAlerts)

				r.Get("/tickets", srv.handleListTickets)
				r.Post("/tickets", srv.handleCreateTicket)

				r.Get("/activity", srv.handleActivity)
			})

			r.Get("/admin/finance", srv.handleFinance)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := UserFromContext(r.Context()); !ok || userID == "" {
			WriteError(w, http.StatusUnauthorized, "missing user")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func userID(r *http.Request) string {
	id, _ := UserFromContext(r.Context())
	return id
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Properties.List(r.Context(), criteria)
	if err != nil {
		WriteJSON(w, StatusFor(err), res)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultPageLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Properties.Featured(r.Context(), limit)
	if err != nil {
		WriteJSON(w, StatusFor(err), res)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleAgentProperties(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultPageLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Properties.ByAgent(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		WriteJSON(w, StatusFor(err), res)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Properties.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Get(r.Context(), userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profile.UpdateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	runMutation(w, r, s.logger, http.StatusOK, "update_profile", func(ctx context.Context) (profile.Profile, error) {
		p, err := s.svc.Profiles.Update(ctx, userID(r), req)
		if err != nil {
			return profile.Profile{}, err
		}
		return *p, nil
	})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.svc.Favorites.List(r.Context(), userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, favs)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	runMutation(w, r, s.logger, http.StatusCreated, "add_favorite", func(ctx context.Context) (favorite.Favorite, error) {
		fav, err := s.svc.Favorites.Add(ctx, userID(r), chi.URLParam(r, "propertyID"))
		if err != nil {
			return favorite.Favorite{}, err
		}
		return *fav, nil
	})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")
	runMutation(w, r, s.logger, http.StatusOK, "remove_favorite", func(ctx context.Context) (string, error) {
		return propertyID, s.svc.Favorites.Remove(ctx, userID(r), propertyID)
	})
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := s.svc.Searches.List(r.Context(), userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, searches)
}

func (s *Server) handleCreateSearch(w http.ResponseWriter, r *http.Request) {
	var req search.CreateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	runMutation(w, r, s.logger, http.StatusCreated, "create_search", func(ctx context.Context) (search.SavedSearch, error) {
		saved, err := s.svc.Searches.Create(ctx, userID(r), req)
		if err != nil {
			return search.SavedSearch{}, err
		}
		return *saved, nil
	})
}

func (s *Server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	runMutation(w, r, s.logger, http.StatusOK, "delete_search", func(ctx context.Context) (string, error) {
		return id, s.svc.Searches.Delete(ctx, userID(r), id)
	})
}

type setAlertsRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleSetAlerts(w http.ResponseWriter, r *http.Request) {
	var req setAlertsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	runMutation(w, r, s.logger, http.StatusOK, "set_search_alerts", func(ctx context.Context) (search.SavedSearch, error) {
		saved, err := s.svc.Searches.SetAlerts(ctx, userID(r), chi.URLParam(r, "id"), req.Enabled)
		if err != nil {
			return search.SavedSearch{}, err
		}
		return *saved, nil
	})
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := s.svc.Tickets.List(r.Context(), userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req support.CreateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	runMutation(w, r, s.logger, http.StatusCreated, "create_ticket", func(ctx context.Context) (support.Ticket, error) {
		t, err := s.svc.Tickets.Create(ctx, userID(r), req)
		if err != nil {
			return support.Ticket{}, err
		}
		return *t, nil
	})
}

// ActivityResponse is an activity with its display icon.
type ActivityResponse struct {
	activity.Activity
	Icon string `json:"icon"`
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Activity.Feed(r.Context(), userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ActivityResponse{Activity: a, Icon: a.Type.Icon()})
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleFinance(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Get(r.Context(), userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	if p.Role != profile.RoleAdmin {
		WriteError(w, http.StatusForbidden, "admin role required")
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -defaultFinanceDays)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid since: "+raw)
			return
		}
		since = t
	}

	summary, err := s.svc.Finance.Summary(r.Context(), since)
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// runMutation executes write through mutation.Run and maps a failure to
// the status of its underlying error.
func runMutation[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, okStatus int, operation string, write func(context.Context) (T, error)) {
	var cause error
	res := mutation.Run(r.Context(), operation, func(ctx context.Context) (T, error) {
		v, err := write(ctx)
		cause = err
		return v, err
	}, mutation.WithLogger(logger))

	if !res.Success {
		status := http.StatusInternalServerError
		if cause != nil {
			status = StatusFor(cause)
		}
		WriteJSON(w, status, res)
		return
	}
	WriteJSON(w, okStatus, res)
}

// ParseCriteria reads property filters from query parameters. Amenities
// may be repeated or comma-separated.
func ParseCriteria(r *http.Request) (property.FilterCriteria, error) {
	q := r.URL.Query()
	var c property.FilterCriteria

	str := func(key string) *string {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return &v
		}
		return nil
	}
	c.City = str("city")
	c.State = str("state")
	c.Search = str("search")
	if v := str("property_type"); v != nil {
		t := property.PropertyType(*v)
		c.PropertyType = &t
	}
	if v := str("listing_type"); v != nil {
		t := property.ListingType(*v)
		c.ListingType = &t
	}
	if v := str("status"); v != nil {
		st := property.Status(*v)
		c.Status = &st
	}

	var err error
	if c.MinPrice, err = floatParam(q.Get("min_price"), "min_price"); err != nil {
		return c, err
	}
	if c.MaxPrice, err = floatParam(q.Get("max_price"), "max_price"); err != nil {
		return c, err
	}
	if c.Bathrooms, err = floatParam(q.Get("bathrooms"), "bathrooms"); err != nil {
		return c, err
	}
	if v := q.Get("bedrooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("invalid bedrooms: %s", v)
		}
		c.Bedrooms = &n
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("invalid featured: %s", v)
		}
		c.Featured = &b
	}
	for _, raw := range q["amenities"] {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				c.Amenities = append(c.Amenities, a)
			}
		}
	}
	return c, nil
}

func floatParam(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return &f, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return n, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
