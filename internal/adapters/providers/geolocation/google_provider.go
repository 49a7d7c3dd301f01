package geolocation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
	"github.com/cityexplorer/backend/internal/infrastructure/clients/providerapi"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

const (
	googleGeocodeURL   = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultHTTPTimeout = 8 * time.Second
)

// GoogleGeolocationProvider implements the GeocodingProvider using the Google Geocoding API.
type GoogleGeolocationProvider struct {
	apiKey string
	client *providerapi.HTTPClient
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider.
func NewGoogleGeolocationProvider(apiKey string) providers.GeocodingProvider {
	return NewGoogleGeolocationProviderWithOptions(apiKey, googleGeocodeURL, defaultHTTPTimeout)
}

// NewGoogleGeolocationProviderWithOptions allows overriding base URL and timeout (used for tests).
func NewGoogleGeolocationProviderWithOptions(apiKey, baseURL string, timeout time.Duration) providers.GeocodingProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	return &GoogleGeolocationProvider{
		apiKey: apiKey,
		client: providerapi.NewClient(providerapi.Options{
			Name:    "google geocode",
			BaseURL: baseURL,
			Timeout: timeout,
		}),
	}
}

// Geocode converts free text to the best matching location.
func (g *GoogleGeolocationProvider) Geocode(ctx context.Context, text string) (*entities.Location, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("search text is required")
	}
	if g.apiKey == "" {
		return nil, apperrors.NewUpstreamError("google maps api key is required", nil)
	}

	var payload googleGeocodeResponse
	endpoint := g.client.URL(url.Values{"address": {trimmed}, "key": {g.apiKey}})
	if err := g.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no location matches %q", trimmed))
	default:
		msg := "geocode request failed: " + payload.Status
		if payload.ErrorMessage != "" {
			msg += " - " + payload.ErrorMessage
		}
		return nil, apperrors.NewUpstreamError(msg, nil)
	}
	if len(payload.Results) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no location matches %q", trimmed))
	}

	result := payload.Results[0]
	return &entities.Location{
		SearchQuery:    text,
		FormattedQuery: result.FormattedAddress,
		Latitude:       result.Geometry.Location.Lat,
		Longitude:      result.Geometry.Location.Lng,
	}, nil
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
