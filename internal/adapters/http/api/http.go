// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/courtview/internal/app"
	"github.com/okian/courtview/internal/domain/rankings"
	"github.com/okian/courtview/internal/domain/types"
	"github.com/okian/courtview/internal/domain/venues"
	"github.com/okian/courtview/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Dashboard(ctx context.Context, q service.DashboardQuery) (types.Dashboard, error)
	Rankings(ctx context.Context, r *rankings.Range) (types.Section[rankings.Table], error)
	Countries(ctx context.Context, r *rankings.Range) (types.Section[[]rankings.CountrySummary], error)
	Charts(ctx context.Context, r *rankings.Range) (types.Charts, error)
	Search(ctx context.Context, name string, r *rankings.Range) (types.SearchResult, error)
	Venues(ctx context.Context) types.Section[[]venues.Record]
	Filters() types.Filters
	Invalidate(ctx context.Context, name string) error
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	rankingsHandler  *RankingsHandler
	venuesHandler    *VenuesHandler
	dashboardHandler *DashboardHandler
	cacheHandler     *CacheHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		rankingsHandler:  NewRankingsHandler(deps),
		venuesHandler:    NewVenuesHandler(deps),
		dashboardHandler: NewDashboardHandler(deps),
		cacheHandler:     NewCacheHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/api/filters", MetricsMiddleware(s.dashboardHandler.HandleFilters, "filters"))
	mux.HandleFunc("/api/dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("/api/rankings", MetricsMiddleware(s.rankingsHandler.HandleRankings, "rankings"))
	mux.HandleFunc("/api/countries", MetricsMiddleware(s.rankingsHandler.HandleCountries, "countries"))
	mux.HandleFunc("/api/charts", MetricsMiddleware(s.rankingsHandler.HandleCharts, "charts"))
	mux.HandleFunc("/api/search", MetricsMiddleware(s.rankingsHandler.HandleSearch, "search"))
	mux.HandleFunc("/api/venues", MetricsMiddleware(s.venuesHandler.HandleVenues, "venues"))
	mux.HandleFunc("/api/cache/invalidate", MetricsMiddleware(s.cacheHandler.HandleInvalidate, "cache_invalidate"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps input errors to 400 and anything else to 500.
func writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, rankings.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrUnknownQuery):
		writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
	default:
		logger.Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("requestID", r.Header.Get(RequestIDHeader)),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
