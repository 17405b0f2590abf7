package api

import (
	"context"
	"net/http"
	"strings"
)

// CacheDependencies defines cache maintenance.
type CacheDependencies interface {
	Invalidate(ctx context.Context, name string) error
}

// CacheHandler handles cache maintenance requests.
type CacheHandler struct {
	deps CacheDependencies
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(deps CacheDependencies) *CacheHandler {
	return &CacheHandler{deps: deps}
}

type invalidateResponse struct {
	Status string `json:"status"`
	Query  string `json:"query,omitempty"`
}

// HandleInvalidate handles POST /api/cache/invalidate[?query=rankings|venues].
func (h *CacheHandler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.invalidate_cache"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("query"))
	if err := h.deps.Invalidate(r.Context(), name); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, invalidateResponse{Status: "invalidated", Query: name})
}
