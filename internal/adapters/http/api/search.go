package api

import (
	"context"
	"net/http"

	service "github.com/okian/hangout/internal/app"
)

// SearchDependencies defines the natural-language search operation.
type SearchDependencies interface {
	Search(ctx context.Context, query string) (service.SearchResult, error)
}

// SearchHandler handles search requests.
type SearchHandler struct {
	deps SearchDependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps SearchDependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

type searchRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

// HandleSearch handles POST /search.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	var req searchRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.deps.Search(r.Context(), req.Query)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
