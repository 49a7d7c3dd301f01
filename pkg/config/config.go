package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ResourceKinds are the keys accepted in CACHE_THRESHOLD_OVERRIDES
var ResourceKinds = []string{"weather", "restaurant", "movie", "event", "trail"}

// Config holds all application configuration
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Providers ProvidersConfig
	Cache     CacheConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// DatabaseConfig holds database configuration. URL wins over the individual parts.
type DatabaseConfig struct {
	Driver       string `env:"DB_DRIVER" envDefault:"postgres"`
	URL          string `env:"DATABASE_URL"`
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         int    `env:"DB_PORT" envDefault:"5432"`
	User         string `env:"DB_USER" envDefault:"postgres"`
	Password     string `env:"DB_PASSWORD"`
	Name         string `env:"DB_NAME" envDefault:"city_explorer"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	Path         string `env:"DB_PATH" envDefault:"data/city_explorer.db"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
}

// RedisConfig holds Redis configuration. Redis is only used for refresh leases.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED" envDefault:"false"`
	Host     string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int           `env:"REDIS_PORT" envDefault:"6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	LeaseTTL time.Duration `env:"REDIS_LEASE_TTL" envDefault:"30s"`
}

// ProvidersConfig holds credentials and endpoints of the external data providers
type ProvidersConfig struct {
	Timeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	GeocodeAPIKey  string `env:"GEOCODE_API_KEY"`
	GeocodeBaseURL string `env:"GEOCODE_BASE_URL" envDefault:"https://maps.googleapis.com/maps/api/geocode/json"`

	WeatherAPIKey  string `env:"WEATHER_API_KEY"`
	WeatherBaseURL string `env:"WEATHER_BASE_URL" envDefault:"https://api.darksky.net/forecast"`

	YelpAPIKey  string `env:"YELP_API_KEY"`
	YelpBaseURL string `env:"YELP_BASE_URL" envDefault:"https://api.yelp.com/v3/businesses/search"`

	MovieAPIKey  string `env:"MOVIE_API_KEY"`
	MovieBaseURL string `env:"MOVIE_BASE_URL" envDefault:"https://api.themoviedb.org/3/search/movie"`

	EventbriteAPIKey  string `env:"EVENTBRITE_API_KEY"`
	EventbriteBaseURL string `env:"EVENTBRITE_BASE_URL" envDefault:"https://www.eventbriteapi.com/v3/events/search"`

	TrailAPIKey  string `env:"TRAIL_API_KEY"`
	TrailBaseURL string `env:"TRAIL_BASE_URL" envDefault:"https://www.hikingproject.com/data/get-trails"`
}

// CacheConfig holds the freshness policy. Overrides are keyed by resource kind,
// e.g. CACHE_THRESHOLD_OVERRIDES=weather=10m,trail=2h
type CacheConfig struct {
	FreshnessThreshold time.Duration     `env:"CACHE_FRESHNESS_THRESHOLD" envDefault:"30m"`
	Overrides          map[string]string `env:"CACHE_THRESHOLD_OVERRIDES" envSeparator:"," envKeyValSeparator:"="`

	// Search texts kept warm in the background. Empty disables warming.
	WarmLocations []string      `env:"CACHE_WARM_LOCATIONS" envSeparator:";"`
	WarmInterval  time.Duration `env:"CACHE_WARM_INTERVAL" envDefault:"25m"`
	WarmWorkers   int           `env:"CACHE_WARM_WORKERS" envDefault:"2"`
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"city-explorer"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION" envDefault:"1.0.0"`
	Endpoint       string `env:"OTEL_ENDPOINT"`
	Enabled        bool   `env:"OTEL_ENABLED" envDefault:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return parse(env.Options{})
}

// LoadFromMap builds the configuration from the given variables only.
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env parsing cannot
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Cache.FreshnessThreshold <= 0 {
		return fmt.Errorf("CACHE_FRESHNESS_THRESHOLD must be positive, got %s", c.Cache.FreshnessThreshold)
	}
	for kind := range c.Cache.Overrides {
		if !isResourceKind(kind) {
			return fmt.Errorf("CACHE_THRESHOLD_OVERRIDES has unknown kind %q, want one of %s",
				kind, strings.Join(ResourceKinds, ", "))
		}
		if _, err := c.Cache.ThresholdFor(kind); err != nil {
			return err
		}
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.Providers.Timeout)
	}
	// The lease must outlive a full fetch or another replica refreshes the same key.
	if c.Redis.Enabled && c.Redis.LeaseTTL <= c.Providers.Timeout {
		return fmt.Errorf("REDIS_LEASE_TTL (%s) must be longer than PROVIDER_TIMEOUT (%s)",
			c.Redis.LeaseTTL, c.Providers.Timeout)
	}
	return nil
}

func isResourceKind(kind string) bool {
	for _, k := range ResourceKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// ThresholdFor returns the freshness threshold of a resource kind
func (c CacheConfig) ThresholdFor(kind string) (time.Duration, error) {
	raw, ok := c.Overrides[kind]
	if !ok {
		return c.FreshnessThreshold, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid freshness override for %s: %w", kind, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("freshness override for %s must be positive, got %s", kind, d)
	}
	return d, nil
}

// DatabaseDSN returns the connection string for the configured driver
func (c *DatabaseConfig) DatabaseDSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_time_format=sqlite", c.Path)
	}
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
