package trails

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

const hikingProjectURL = "https://www.hikingproject.com/data/get-trails"

// HikingProjectProvider lists trails near a location's coordinates
type HikingProjectProvider struct {
	apiKey string
	client *providerapi.HTTPClient
}

// NewHikingProjectProvider creates a new Hiking Project trail provider
func NewHikingProjectProvider(apiKey, baseURL string, timeout time.Duration) providers.ResourceProvider[*entities.Trail] {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = hikingProjectURL
	}
	return &HikingProjectProvider{
		apiKey: apiKey,
		client: providerapi.NewClient(providerapi.Options{
			Name:    "hikingproject",
			BaseURL: baseURL,
			Timeout: timeout,
		}),
	}
}

// Fetch returns the trails around the coordinates with their latest conditions
func (p *HikingProjectProvider) Fetch(ctx context.Context, query providers.Query) ([]*entities.Trail, error) {
	if p.apiKey == "" {
		return nil, apperrors.NewUpstreamError("hiking project api key is required", nil)
	}

	params := url.Values{
		"lat": {fmt.Sprintf("%v", query.Latitude)},
		"lon": {fmt.Sprintf("%v", query.Longitude)},
		"key": {p.apiKey},
	}

	var payload hikingProjectResponse
	if err := p.client.GetJSON(ctx, p.client.URL(params), &payload); err != nil {
		return nil, err
	}

	records := make([]*entities.Trail, 0, len(payload.Trails))
	for _, t := range payload.Trails {
		date, clock := splitConditionDate(t.ConditionDate)
		records = append(records, &entities.Trail{
			Name:          t.Name,
			URL:           t.URL,
			Location:      t.Location,
			Length:        t.Length,
			ConditionDate: date,
			ConditionTime: clock,
			Conditions:    t.ConditionStatus,
			Stars:         t.Stars,
			StarVotes:     t.StarVotes,
			Summary:       t.Summary,
		})
	}
	return records, nil
}

// splitConditionDate splits "2006-01-02 15:04:05" into its date and time halves
func splitConditionDate(value string) (string, string) {
	date, clock, _ := strings.Cut(strings.TrimSpace(value), " ")
	return date, clock
}

type hikingProjectResponse struct {
	Trails []hikingProjectTrail `json:"trails"`
}

type hikingProjectTrail struct {
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	Location        string  `json:"location"`
	Length          float64 `json:"length"`
	Stars           float64 `json:"stars"`
	StarVotes       int     `json:"starVotes"`
	Summary         string  `json:"summary"`
	ConditionStatus string  `json:"conditionStatus"`
	ConditionDate   string  `json:"conditionDate"`
}
