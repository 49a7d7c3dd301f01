package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cityexplorer/backend/internal/api/handlers"
	"github.com/cityexplorer/backend/internal/api/middleware"
	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/infrastructure/observability"
)

// Handlers groups every endpoint handler
type Handlers struct {
	Location    *handlers.LocationHandler
	Weather     *handlers.ResourceHandler[*entities.Weather]
	Restaurants *handlers.ResourceHandler[*entities.Restaurant]
	Movies      *handlers.ResourceHandler[*entities.Movie]
	Events      *handlers.ResourceHandler[*entities.Event]
	Trails      *handlers.ResourceHandler[*entities.Trail]
}

// Options configures the router
type Options struct {
	Logger         zerolog.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
}

// Router holds all route handlers
type Router struct {
	mux      *chi.Mux
	handlers Handlers
	opts     Options
}

// NewRouter creates a new router
func NewRouter(h Handlers, opts Options) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		handlers: h,
		opts:     opts,
	}
}

// SetupRoutes registers every endpoint and returns the wrapped handler
func (r *Router) SetupRoutes() http.Handler {
	// CORS wraps everything so preflights and errors carry the headers
	r.mux.Use(middleware.CORSMiddleware(r.opts.AllowedOrigins))
	r.mux.Use(chimw.RealIP)
	r.mux.Use(middleware.LoggingMiddleware(r.opts.Logger))
	r.mux.Use(chimw.Recoverer)
	r.mux.Use(middleware.ObservabilityMiddleware(r.opts.Metrics))
	r.mux.Use(chimw.Compress(5, "application/json"))

	r.mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	r.mux.Get("/location", r.handlers.Location.GetLocation)

	r.mux.Get("/weather", r.handlers.Weather.List)
	r.mux.Get("/restaurants", r.handlers.Restaurants.List)
	r.mux.Get("/yelp", r.handlers.Restaurants.List)
	r.mux.Get("/movies", r.handlers.Movies.List)
	r.mux.Get("/events", r.handlers.Events.List)
	r.mux.Get("/trails", r.handlers.Trails.List)

	return r.mux
}
