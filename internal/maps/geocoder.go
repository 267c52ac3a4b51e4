// README: Forward geocoding against a Nominatim-compatible service.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"taxipred/internal/types"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent    = "taxipred-student-project"
)

// Geocoder resolves a free-text address to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Coordinate, error)
}

type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// NominatimGeocoder makes exactly one request per call; it neither retries nor caches.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	httpc     *http.Client
	log       *zap.Logger
}

func NewNominatimGeocoder(cfg NominatimConfig, log *zap.Logger) *NominatimGeocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNominatimURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		httpc:     NewHTTPClient(cfg.Timeout),
		log:       log,
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (types.Coordinate, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	start := time.Now()
	status, body, err := fetch(ctx, g.httpc, g.timeout, g.baseURL+"/search?"+q.Encode(), http.Header{
		"User-Agent": []string{g.userAgent},
	})
	g.log.Debug("nominatim search",
		zap.String("address", address),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		return types.Coordinate{}, upstreamError("nominatim", err)
	}
	if !isSuccess(status) {
		return types.Coordinate{}, upstreamError("nominatim", fmt.Errorf("unexpected status %d", status))
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return types.Coordinate{}, upstreamError("nominatim", fmt.Errorf("decode response: %w", err))
	}
	if len(places) == 0 {
		return types.Coordinate{}, &AddressNotFoundError{Address: address}
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return types.Coordinate{}, upstreamError("nominatim", fmt.Errorf("parse lat %q: %w", places[0].Lat, err))
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return types.Coordinate{}, upstreamError("nominatim", fmt.Errorf("parse lon %q: %w", places[0].Lon, err))
	}
	return types.Coordinate{Lat: lat, Lon: lon}, nil
}
