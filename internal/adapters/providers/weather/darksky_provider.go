package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
	"github.com/cityexplorer/backend/internal/infrastructure/clients/providerapi"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

const (
	darkSkyForecastURL = "https://api.darksky.net/forecast"

	// forecastDayLayout renders a day like "Fri Mar 01 2024"
	forecastDayLayout = "Mon Jan 02 2006"
)

// DarkSkyProvider fetches the daily forecast for a location's coordinates
type DarkSkyProvider struct {
	apiKey string
	client *providerapi.HTTPClient
}

// NewDarkSkyProvider creates a new Dark Sky forecast provider
func NewDarkSkyProvider(apiKey, baseURL string, timeout time.Duration) providers.ResourceProvider[*entities.Weather] {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = darkSkyForecastURL
	}
	return &DarkSkyProvider{
		apiKey: apiKey,
		client: providerapi.NewClient(providerapi.Options{
			Name:    "darksky",
			BaseURL: baseURL,
			Timeout: timeout,
		}),
	}
}

// Fetch returns one record per forecast day
func (p *DarkSkyProvider) Fetch(ctx context.Context, query providers.Query) ([]*entities.Weather, error) {
	if p.apiKey == "" {
		return nil, apperrors.NewUpstreamError("darksky api key is required", nil)
	}

	var payload darkSkyResponse
	endpoint := p.client.URL(nil, p.apiKey, fmt.Sprintf("%v,%v", query.Latitude, query.Longitude))
	if err := p.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	records := make([]*entities.Weather, 0, len(payload.Daily.Data))
	for _, day := range payload.Daily.Data {
		records = append(records, &entities.Weather{
			Forecast: day.Summary,
			Time:     time.Unix(day.Time, 0).UTC().Format(forecastDayLayout),
		})
	}
	return records, nil
}

type darkSkyResponse struct {
	Daily struct {
		Data []darkSkyDay `json:"data"`
	} `json:"daily"`
}

type darkSkyDay struct {
	Time    int64  `json:"time"`
	Summary string `json:"summary"`
}
