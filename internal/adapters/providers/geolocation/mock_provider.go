package geolocation

import (
	"context"
	"strings"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

// MockGeolocationProvider geocodes a fixed set of cities for development
// without a Google API key.
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeocodingProvider {
	return &MockGeolocationProvider{}
}

type mockCity struct {
	name      string
	formatted string
	lat, lon  float64
}

var mockCities = []mockCity{
	{"seattle", "Seattle, WA, USA", 47.6062095, -122.3320708},
	{"new york", "New York, NY, USA", 40.7128, -74.0060},
	{"los angeles", "Los Angeles, CA, USA", 34.0522, -118.2437},
	{"chicago", "Chicago, IL, USA", 41.8781, -87.6298},
	{"portland", "Portland, OR, USA", 45.5152, -122.6784},
	{"lynnwood", "Lynnwood, WA, USA", 47.8209, -122.3151},
}

// Geocode matches text against known city names (mock implementation)
func (m *MockGeolocationProvider) Geocode(ctx context.Context, text string) (*entities.Location, error) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil, apperrors.NewValidationError("search text is required")
	}

	for _, city := range mockCities {
		if strings.Contains(lower, city.name) {
			return &entities.Location{
				SearchQuery:    text,
				FormattedQuery: city.formatted,
				Latitude:       city.lat,
				Longitude:      city.lon,
			}, nil
		}
	}

	return nil, apperrors.NewNotFoundError("no location matches " + text)
}
