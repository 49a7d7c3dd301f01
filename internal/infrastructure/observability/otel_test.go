package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityexplorer/backend/internal/infrastructure/observability"
)

func TestInitMetrics_NoopProvider(t *testing.T) {
	metrics, err := observability.InitMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		metrics.RecordRequestMetric(ctx, "GET", "/weather", 200, 12*time.Millisecond)
		metrics.RecordCacheOutcome(ctx, "weather", "hit")
		metrics.RecordProviderFetch(ctx, "weather", time.Second, errors.New("timeout"))
	})
}

func TestMetrics_NilReceiver(t *testing.T) {
	var metrics *observability.Metrics

	assert.NotPanics(t, func() {
		metrics.RecordCacheOutcome(context.Background(), "trail", "miss")
		metrics.RecordProviderFetch(context.Background(), "trail", time.Second, nil)
		metrics.RecordRequestMetric(context.Background(), "GET", "/trails", 500, time.Second)
	})
}

func TestLoggerFromContext_FallsBackToGlobal(t *testing.T) {
	observability.InitLogger("city-explorer-test", "test", "debug")

	logger := observability.LoggerFromContext(context.Background())

	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Debug().Msg("logger ready") })
}
