// README: Config loader with env defaults for HTTP, maps providers, model, pricing, and cache settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOSM    = "osm"
	ProviderGoogle = "google"
)

type MapsConfig struct {
	Provider        string
	NominatimURL    string
	OSRMURL         string
	UserAgent       string
	GoogleAPIKey    string
	UpstreamTimeout time.Duration
}

type PricingConfig struct {
	BaseFare      float64
	PerKmRate     float64
	PerMinuteRate float64
}

type Config struct {
	Env      string
	LogLevel string
	HTTP     struct {
		Addr        string
		CORSOrigins []string
	}
	Maps  MapsConfig
	Model struct {
		Path string
	}
	Pricing  PricingConfig
	Timezone string
	Cache    struct {
		Enabled bool
		TTL     time.Duration
	}
	Redis struct {
		Addr string
	}
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var (
		cfg Config
		l   loader
	)
	cfg.Env = envOrDefault("TAXIPRED_ENV", "development")
	cfg.LogLevel = envOrDefault("TAXIPRED_LOG_LEVEL", "info")
	cfg.HTTP.Addr = envOrDefault("TAXIPRED_HTTP_ADDR", ":8000")
	cfg.HTTP.CORSOrigins = envOrDefaultList("TAXIPRED_CORS_ORIGINS", []string{"*"})

	cfg.Maps.Provider = strings.ToLower(envOrDefault("TAXIPRED_MAPS_PROVIDER", ProviderOSM))
	cfg.Maps.NominatimURL = envOrDefault("TAXIPRED_NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	cfg.Maps.OSRMURL = envOrDefault("TAXIPRED_OSRM_URL", "https://router.project-osrm.org")
	cfg.Maps.UserAgent = envOrDefault("TAXIPRED_USER_AGENT", "taxipred-student-project")
	cfg.Maps.GoogleAPIKey = os.Getenv("TAXIPRED_GOOGLE_MAPS_API_KEY")
	cfg.Maps.UpstreamTimeout = l.duration("TAXIPRED_UPSTREAM_TIMEOUT", 10*time.Second)

	cfg.Model.Path = envOrDefault("TAXIPRED_MODEL_PATH", "models/fare_model.json")
	cfg.Pricing.BaseFare = l.float("TAXIPRED_BASE_FARE", 3.0)
	cfg.Pricing.PerKmRate = l.float("TAXIPRED_PER_KM_RATE", 1.2)
	cfg.Pricing.PerMinuteRate = l.float("TAXIPRED_PER_MINUTE_RATE", 0.3)
	cfg.Timezone = envOrDefault("TAXIPRED_TIMEZONE", "Europe/Stockholm")

	cfg.Cache.Enabled = l.bool("TAXIPRED_GEOCODE_CACHE", false)
	cfg.Cache.TTL = l.duration("TAXIPRED_GEOCODE_CACHE_TTL", 24*time.Hour)
	cfg.Redis.Addr = envOrDefault("TAXIPRED_REDIS_ADDR", "localhost:6379")

	if err := errors.Join(l.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Maps.Provider {
	case ProviderOSM:
	case ProviderGoogle:
		if c.Maps.GoogleAPIKey == "" {
			return errors.New("environment variable TAXIPRED_GOOGLE_MAPS_API_KEY is required for the google provider")
		}
	default:
		return fmt.Errorf("unknown maps provider %q", c.Maps.Provider)
	}
	if c.Maps.UpstreamTimeout <= 0 {
		return errors.New("TAXIPRED_UPSTREAM_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TAXIPRED_TIMEZONE: %w", err)
	}
	return nil
}

// Location resolves the configured reference time zone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// loader collects parse failures so a bad value is reported instead of silently defaulted.
type loader struct {
	errs []error
}

func (l *loader) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return n
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (l *loader) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}
