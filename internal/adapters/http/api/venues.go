package api

import (
	"context"
	"net/http"

	"github.com/okian/courtview/internal/domain/types"
	"github.com/okian/courtview/internal/domain/venues"
)

// VenuesDependencies defines the venue read operation.
type VenuesDependencies interface {
	Venues(ctx context.Context) types.Section[[]venues.Record]
}

// VenuesHandler handles venue requests.
type VenuesHandler struct {
	deps VenuesDependencies
}

// NewVenuesHandler creates a new venues handler.
func NewVenuesHandler(deps VenuesDependencies) *VenuesHandler {
	return &VenuesHandler{deps: deps}
}

// HandleVenues handles GET /api/venues requests.
func (h *VenuesHandler) HandleVenues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Venues(r.Context()))
}
