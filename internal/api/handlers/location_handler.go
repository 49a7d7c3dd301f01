package handlers

import (
	"context"
	"net/http"

	"github.com/cityexplorer/backend/internal/domain/entities"
)

// LocationResolver resolves search text to a stored location
type LocationResolver interface {
	Resolve(ctx context.Context, text string) (*entities.Location, error)
}

// LocationHandler handles location endpoints
type LocationHandler struct {
	resolver LocationResolver
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(resolver LocationResolver) *LocationHandler {
	return &LocationHandler{resolver: resolver}
}

// GetLocation handles GET /location?data=...
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	location, err := h.resolver.Resolve(r.Context(), r.URL.Query().Get("data"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, location)
}
