package events_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityexplorer/backend/internal/adapters/providers/events"
	"github.com/cityexplorer/backend/internal/domain/providers"
)

func TestEventbriteProvider_Fetch(t *testing.T) {
	var gotAuth, gotLat, gotLon, gotExpand string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotLat = r.URL.Query().Get("location.latitude")
		gotLon = r.URL.Query().Get("location.longitude")
		gotExpand = r.URL.Query().Get("expand")
		_, _ = w.Write([]byte(`{"events": [
			{"name": {"text": "Jazz Night"}, "url": "https://eb/jazz", "venue": {"name": "Triple Door"}, "created": "2024-02-20T18:04:11Z"}
		]}`))
	}))
	defer server.Close()

	provider := events.NewEventbriteProvider("eb-token", server.URL, time.Second)

	records, err := provider.Fetch(context.Background(), providers.Query{Latitude: 47.6062095, Longitude: -122.3320708})
	require.NoError(t, err)

	assert.Equal(t, "Bearer eb-token", gotAuth)
	assert.Equal(t, "47.6062095", gotLat)
	assert.Equal(t, "-122.3320708", gotLon)
	assert.Equal(t, "venue", gotExpand)
	require.Len(t, records, 1)
	assert.Equal(t, "Jazz Night", records[0].Name)
	assert.Equal(t, "https://eb/jazz", records[0].Link)
	assert.Equal(t, "Triple Door", records[0].Host)
	assert.Equal(t, "2024-02-20T18:04:11Z", records[0].EventDate)
}
