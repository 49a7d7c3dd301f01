package providers

import (
	"context"

	"github.com/cityexplorer/backend/internal/domain/entities"
)

// GeocodingProvider resolves free text to coordinates
type GeocodingProvider interface {
	// Geocode returns the single best match for text. The returned location
	// has no ID; SearchQuery is set to text.
	Geocode(ctx context.Context, text string) (*entities.Location, error)
}
