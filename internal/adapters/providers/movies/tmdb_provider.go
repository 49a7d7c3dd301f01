package movies

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

const (
	tmdbSearchURL = "https://api.themoviedb.org/3/search/movie"
	posterBaseURL = "https://image.tmdb.org/t/p/w500"
)

// TMDBProvider searches movies whose metadata matches a location's search text
type TMDBProvider struct {
	apiKey string
	client *providerapi.HTTPClient
}

// NewTMDBProvider creates a new TMDB movie search provider
func NewTMDBProvider(apiKey, baseURL string, timeout time.Duration) providers.ResourceProvider[*entities.Movie] {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = tmdbSearchURL
	}
	return &TMDBProvider{
		apiKey: apiKey,
		client: providerapi.NewClient(providerapi.Options{
			Name:    "tmdb",
			BaseURL: baseURL,
			Timeout: timeout,
		}),
	}
}

// Fetch returns TMDB search results for the search text
func (p *TMDBProvider) Fetch(ctx context.Context, query providers.Query) ([]*entities.Movie, error) {
	if p.apiKey == "" {
		return nil, apperrors.NewUpstreamError("tmdb api key is required", nil)
	}

	var payload tmdbResponse
	endpoint := p.client.URL(url.Values{"api_key": {p.apiKey}, "query": {query.SearchQuery}})
	if err := p.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	records := make([]*entities.Movie, 0, len(payload.Results))
	for _, m := range payload.Results {
		records = append(records, &entities.Movie{
			Title:        m.Title,
			Overview:     m.Overview,
			AverageVotes: m.VoteAverage,
			TotalVotes:   m.VoteCount,
			ImageURL:     posterURL(m.PosterPath),
			Popularity:   m.Popularity,
			ReleasedOn:   m.ReleaseDate,
		})
	}
	return records, nil
}

func posterURL(path string) string {
	if path == "" {
		return ""
	}
	return posterBaseURL + path
}

type tmdbResponse struct {
	Results []tmdbMovie `json:"results"`
}

type tmdbMovie struct {
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	PosterPath  string  `json:"poster_path"`
	Popularity  float64 `json:"popularity"`
	ReleaseDate string  `json:"release_date"`
}
