package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/courtview/internal/domain/rankings"
	"github.com/okian/courtview/internal/domain/types"
)

// RankingsDependencies defines the ranking read operations.
type RankingsDependencies interface {
	Rankings(ctx context.Context, r *rankings.Range) (types.Section[rankings.Table], error)
	Countries(ctx context.Context, r *rankings.Range) (types.Section[[]rankings.CountrySummary], error)
	Charts(ctx context.Context, r *rankings.Range) (types.Charts, error)
	Search(ctx context.Context, name string, r *rankings.Range) (types.SearchResult, error)
	Filters() types.Filters
}

// RankingsHandler serves the ranking table and everything derived from it.
type RankingsHandler struct {
	deps RankingsDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleRankings handles GET /api/rankings?low=&high= requests.
func (h *RankingsHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	rng, ok := h.rankRange(w, r, op)
	if !ok {
		return
	}
	sec, err := h.deps.Rankings(r.Context(), rng)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

// HandleCountries handles GET /api/countries?low=&high= requests.
func (h *RankingsHandler) HandleCountries(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_countries"
	rng, ok := h.rankRange(w, r, op)
	if !ok {
		return
	}
	sec, err := h.deps.Countries(r.Context(), rng)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

// HandleCharts handles GET /api/charts?low=&high= requests.
func (h *RankingsHandler) HandleCharts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_charts"
	rng, ok := h.rankRange(w, r, op)
	if !ok {
		return
	}
	c, err := h.deps.Charts(r.Context(), rng)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleSearch handles GET /api/search?name=&low=&high= requests.
func (h *RankingsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	rng, ok := h.rankRange(w, r, op)
	if !ok {
		return
	}
	res, err := h.deps.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("name")), rng)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// rankRange enforces GET and parses the range, writing the response on failure.
func (h *RankingsHandler) rankRange(w http.ResponseWriter, r *http.Request, op string) (*rankings.Range, bool) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return nil, false
	}
	rng, err := rangeParam(r.URL.Query(), h.deps.Filters().DefaultRange)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
		return nil, false
	}
	return rng, true
}
