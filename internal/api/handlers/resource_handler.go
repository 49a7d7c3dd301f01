package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cityexplorer/backend/internal/application/services"
	"github.com/cityexplorer/backend/internal/domain/entities"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

// CacheHeader reports whether a response was served from the store
const CacheHeader = "X-Cache"

// ResourceService serves one resource kind for a stored location
type ResourceService[R entities.Record] interface {
	GetForLocation(ctx context.Context, locationID int64) (*services.Batch[R], error)
}

// ResourceHandler serves the records of one kind as a JSON array
type ResourceHandler[R entities.Record] struct {
	service ResourceService[R]
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler[R entities.Record](service ResourceService[R]) *ResourceHandler[R] {
	return &ResourceHandler[R]{service: service}
}

// List handles GET /<kind>?location_id=...
func (h *ResourceHandler[R]) List(w http.ResponseWriter, r *http.Request) {
	locationID, err := parseLocationID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	batch, err := h.service.GetForLocation(r.Context(), locationID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set(CacheHeader, strings.ToUpper(string(batch.Outcome)))
	respondWithJSON(w, http.StatusOK, batch.Records)
}

func parseLocationID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("location_id"))
	if raw == "" {
		return 0, apperrors.NewValidationError("location_id parameter is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("location_id must be a positive integer")
	}
	return id, nil
}
