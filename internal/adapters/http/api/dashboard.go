package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/courtview/internal/app"
	"github.com/okian/courtview/internal/domain/types"
)

// DashboardDependencies defines the whole-page operations.
type DashboardDependencies interface {
	Dashboard(ctx context.Context, q service.DashboardQuery) (types.Dashboard, error)
	Filters() types.Filters
}

// DashboardHandler serves the full dashboard state and its filter options.
type DashboardHandler struct {
	deps DashboardDependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps DashboardDependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// HandleDashboard handles GET /api/dashboard?year=&week=&low=&high=&name= requests.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dashboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	rng, err := rangeParam(q, h.deps.Filters().DefaultRange)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
		return
	}
	year, _, err := intParam(q, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
		return
	}
	week, _, err := intParam(q, "week")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
		return
	}

	d, err := h.deps.Dashboard(r.Context(), service.DashboardQuery{
		Year:  year,
		Week:  week,
		Range: rng,
		Name:  strings.TrimSpace(q.Get("name")),
	})
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleFilters handles GET /api/filters requests.
func (h *DashboardHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Filters())
}
