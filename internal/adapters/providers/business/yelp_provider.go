package business

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
	"github.com/cityexplorer/backend/internal/infrastructure/clients/providerapi"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

const yelpSearchURL = "https://api.yelp.com/v3/businesses/search"

// YelpProvider searches businesses by a location's search text
type YelpProvider struct {
	client *providerapi.HTTPClient
	hasKey bool
}

// NewYelpProvider creates a new Yelp business search provider
func NewYelpProvider(apiKey, baseURL string, timeout time.Duration) providers.ResourceProvider[*entities.Restaurant] {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = yelpSearchURL
	}
	return &YelpProvider{
		hasKey: apiKey != "",
		client: providerapi.NewClient(providerapi.Options{
			Name:        "yelp",
			BaseURL:     baseURL,
			Timeout:     timeout,
			BearerToken: apiKey,
		}),
	}
}

// Fetch returns the businesses Yelp lists for the search text
func (p *YelpProvider) Fetch(ctx context.Context, query providers.Query) ([]*entities.Restaurant, error) {
	if !p.hasKey {
		return nil, apperrors.NewUpstreamError("yelp api key is required", nil)
	}

	var payload yelpResponse
	if err := p.client.GetJSON(ctx, p.client.URL(url.Values{"location": {query.SearchQuery}}), &payload); err != nil {
		return nil, err
	}

	records := make([]*entities.Restaurant, 0, len(payload.Businesses))
	for _, b := range payload.Businesses {
		records = append(records, &entities.Restaurant{
			Name:     b.Name,
			ImageURL: b.ImageURL,
			Price:    b.Price,
			Rating:   b.Rating,
			URL:      b.URL,
		})
	}
	return records, nil
}

type yelpResponse struct {
	Businesses []yelpBusiness `json:"businesses"`
}

type yelpBusiness struct {
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url"`
	Price    string  `json:"price"`
	Rating   float64 `json:"rating"`
	URL      string  `json:"url"`
}
