package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cityexplorer/backend/internal/adapters/cache"
	"github.com/cityexplorer/backend/internal/adapters/database"
	"github.com/cityexplorer/backend/internal/adapters/providers/business"
	"github.com/cityexplorer/backend/internal/adapters/providers/events"
	"github.com/cityexplorer/backend/internal/adapters/providers/geolocation"
	"github.com/cityexplorer/backend/internal/adapters/providers/movies"
	"github.com/cityexplorer/backend/internal/adapters/providers/trails"
	"github.com/cityexplorer/backend/internal/adapters/providers/weather"
	"github.com/cityexplorer/backend/internal/api/handlers"
	"github.com/cityexplorer/backend/internal/api/routes"
	"github.com/cityexplorer/backend/internal/application/services"
	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
	"github.com/cityexplorer/backend/internal/domain/repositories"
	"github.com/cityexplorer/backend/internal/infrastructure/clients/postgres"
	"github.com/cityexplorer/backend/internal/infrastructure/clients/redis"
	"github.com/cityexplorer/backend/internal/infrastructure/observability"
	"github.com/cityexplorer/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize the store
	dbClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize database client")
	}
	defer dbClient.Close()

	if err := dbClient.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}
	log.Info().Str("driver", dbClient.Driver()).Msg("Database client initialized")

	// Refresh leases span processes only when Redis is configured
	var lease providers.LeaseProvider
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, falling back to in-process leases")
			lease = cache.NewLocalLease()
		} else {
			defer redisClient.Close()
			lease = cache.NewRedisLease(redisClient, cfg.Redis.LeaseTTL)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis lease initialized")
		}
	} else {
		lease = cache.NewLocalLease()
	}

	var geocoder providers.GeocodingProvider
	if cfg.Providers.GeocodeAPIKey != "" {
		geocoder = geolocation.NewGoogleGeolocationProviderWithOptions(
			cfg.Providers.GeocodeAPIKey, cfg.Providers.GeocodeBaseURL, cfg.Providers.Timeout)
	} else {
		log.Warn().Msg("GEOCODE_API_KEY not set, using mock geocoder")
		geocoder = geolocation.NewMockGeolocationProvider()
	}

	resolver := services.NewLocationResolver(database.NewLocationAdapter(dbClient), geocoder, lease)

	freshness := services.FreshnessPolicy{
		Default:   cfg.Cache.FreshnessThreshold,
		Overrides: make(map[entities.ResourceKind]time.Duration),
	}
	for _, kind := range entities.ResourceKinds {
		threshold, err := cfg.Cache.ThresholdFor(kind.String())
		if err != nil {
			log.Fatal().Err(err).Str("kind", kind.String()).Msg("Invalid freshness threshold")
		}
		freshness.Overrides[kind] = threshold
	}

	w := wiring{cfg: cfg, resolver: resolver, lease: lease, metrics: metrics, freshness: freshness}
	p := cfg.Providers

	weatherService := resourceService(w, entities.KindWeather,
		database.NewWeatherAdapter(dbClient),
		weather.NewDarkSkyProvider(p.WeatherAPIKey, p.WeatherBaseURL, p.Timeout))
	restaurantService := resourceService(w, entities.KindRestaurant,
		database.NewRestaurantAdapter(dbClient),
		business.NewYelpProvider(p.YelpAPIKey, p.YelpBaseURL, p.Timeout))
	movieService := resourceService(w, entities.KindMovie,
		database.NewMovieAdapter(dbClient),
		movies.NewTMDBProvider(p.MovieAPIKey, p.MovieBaseURL, p.Timeout))
	eventService := resourceService(w, entities.KindEvent,
		database.NewEventAdapter(dbClient),
		events.NewEventbriteProvider(p.EventbriteAPIKey, p.EventbriteBaseURL, p.Timeout))
	trailService := resourceService(w, entities.KindTrail,
		database.NewTrailAdapter(dbClient),
		trails.NewHikingProjectProvider(p.TrailAPIKey, p.TrailBaseURL, p.Timeout))

	if len(cfg.Cache.WarmLocations) > 0 {
		warming := services.NewWarmingService(resolver, cfg.Cache.WarmWorkers,
			weatherService, restaurantService, movieService, eventService, trailService)
		go warming.StartPeriodicWarming(ctx, cfg.Cache.WarmLocations, cfg.Cache.WarmInterval)
		log.Info().Int("locations", len(cfg.Cache.WarmLocations)).Msg("Cache warming started")
	}

	router := routes.NewRouter(routes.Handlers{
		Location:    handlers.NewLocationHandler(resolver),
		Weather:     handlers.NewResourceHandler[*entities.Weather](weatherService),
		Restaurants: handlers.NewResourceHandler[*entities.Restaurant](restaurantService),
		Movies:      handlers.NewResourceHandler[*entities.Movie](movieService),
		Events:      handlers.NewResourceHandler[*entities.Event](eventService),
		Trails:      handlers.NewResourceHandler[*entities.Trail](trailService),
	}, routes.Options{
		Logger:         log.Logger,
		Metrics:        metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.Providers.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("Server stopped")
}

type wiring struct {
	cfg      *config.Config
	resolver *services.LocationResolver
	lease    providers.LeaseProvider
	metrics  *observability.Metrics

	freshness services.FreshnessPolicy
}

func resourceService[R entities.Record](
	w wiring,
	kind entities.ResourceKind,
	store repositories.RecordRepository[R],
	provider providers.ResourceProvider[R],
) *services.ResourceService[R] {
	orchestrator := services.NewCacheOrchestrator(services.ResourceDescriptor[R]{
		Kind:      kind,
		Store:     store,
		Provider:  provider,
		Threshold: w.freshness.ThresholdFor(kind),
	},
		services.WithLease(w.lease),
		services.WithFetchTimeout(w.cfg.Providers.Timeout),
		services.WithMetrics(w.metrics),
	)

	return services.NewResourceService(w.resolver, orchestrator)
}
