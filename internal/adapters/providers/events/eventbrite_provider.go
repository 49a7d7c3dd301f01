package events

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

const eventbriteSearchURL = "https://www.eventbriteapi.com/v3/events/search"

// EventbriteProvider lists events near a location's coordinates
type EventbriteProvider struct {
	client *providerapi.HTTPClient
	hasKey bool
}

// NewEventbriteProvider creates a new Eventbrite event search provider
func NewEventbriteProvider(apiKey, baseURL string, timeout time.Duration) providers.ResourceProvider[*entities.Event] {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = eventbriteSearchURL
	}
	return &EventbriteProvider{
		hasKey: apiKey != "",
		client: providerapi.NewClient(providerapi.Options{
			Name:        "eventbrite",
			BaseURL:     baseURL,
			Timeout:     timeout,
			BearerToken: apiKey,
		}),
	}
}

// Fetch returns the events Eventbrite lists around the coordinates
func (p *EventbriteProvider) Fetch(ctx context.Context, query providers.Query) ([]*entities.Event, error) {
	if !p.hasKey {
		return nil, apperrors.NewUpstreamError("eventbrite api key is required", nil)
	}

	params := url.Values{
		"location.latitude":  {fmt.Sprintf("%v", query.Latitude)},
		"location.longitude": {fmt.Sprintf("%v", query.Longitude)},
		"expand":             {"venue"},
	}

	var payload eventbriteResponse
	if err := p.client.GetJSON(ctx, p.client.URL(params), &payload); err != nil {
		return nil, err
	}

	records := make([]*entities.Event, 0, len(payload.Events))
	for _, e := range payload.Events {
		records = append(records, &entities.Event{
			Name:      e.Name.Text,
			Link:      e.URL,
			Host:      e.Venue.Name,
			EventDate: e.Created,
		})
	}
	return records, nil
}

type eventbriteResponse struct {
	Events []eventbriteEvent `json:"events"`
}

type eventbriteEvent struct {
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	URL   string `json:"url"`
	Venue struct {
		Name string `json:"name"`
	} `json:"venue"`
	Created string `json:"created"`
}
