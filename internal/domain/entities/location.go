package entities

import (
	"strings"
	"time"
)

// Location is a geocoded search. It is the root key of every other resource
// kind and is immutable once the store has assigned its ID.
type Location struct {
	ID             int64     `json:"id" db:"id"`
	SearchQuery    string    `json:"search_query" db:"search_query"`
	FormattedQuery string    `json:"formatted_query" db:"formatted_query"`
	Latitude       float64   `json:"latitude" db:"latitude"`
	Longitude      float64   `json:"longitude" db:"longitude"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NormalizeSearchQuery returns the lookup key for free-text search input.
// Surrounding whitespace is dropped and inner runs collapse to one space so
// "Seattle,  WA " and "Seattle, WA" resolve to the same row.
func NormalizeSearchQuery(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
