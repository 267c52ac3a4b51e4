// README: Google Maps backed geocoder and router, selected with TAXIPRED_MAPS_PROVIDER=google.
package maps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gmaps "googlemaps.github.io/maps"

	"taxipred/internal/types"
)

// NewGoogleClient creates a maps client with the shared outbound timeout.
// baseURL is only set by tests.
func NewGoogleClient(apiKey string, timeout time.Duration, baseURL string) (*gmaps.Client, error) {
	opts := []gmaps.ClientOption{
		gmaps.WithAPIKey(apiKey),
		gmaps.WithHTTPClient(NewHTTPClient(timeout)),
	}
	if baseURL != "" {
		opts = append(opts, gmaps.WithBaseURL(baseURL))
	}
	client, err := gmaps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// GoogleGeocoder resolves addresses with the Geocoding API.
type GoogleGeocoder struct {
	client  *gmaps.Client
	timeout time.Duration
	log     *zap.Logger
}

func NewGoogleGeocoder(client *gmaps.Client, timeout time.Duration, log *zap.Logger) *GoogleGeocoder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GoogleGeocoder{client: client, timeout: timeout, log: log}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (types.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	g.log.Debug("google geocode", zap.String("address", address), zap.Duration("latency", time.Since(start)))
	if err != nil {
		if googleStatus(err) == "ZERO_RESULTS" {
			return types.Coordinate{}, &AddressNotFoundError{Address: address}
		}
		return types.Coordinate{}, upstreamError("google geocode", err)
	}
	if len(results) == 0 {
		return types.Coordinate{}, &AddressNotFoundError{Address: address}
	}

	loc := results[0].Geometry.Location
	return types.Coordinate{Lat: loc.Lat, Lon: loc.Lng}, nil
}

// GoogleRouter computes driving routes with the Directions API.
type GoogleRouter struct {
	client  *gmaps.Client
	timeout time.Duration
	log     *zap.Logger
}

func NewGoogleRouter(client *gmaps.Client, timeout time.Duration, log *zap.Logger) *GoogleRouter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GoogleRouter{client: client, timeout: timeout, log: log}
}

func (r *GoogleRouter) Route(ctx context.Context, start, end types.Coordinate) (types.RouteMetrics, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req := &gmaps.DirectionsRequest{
		Origin:      latLngString(start),
		Destination: latLngString(end),
		Mode:        gmaps.TravelModeDriving,
	}

	begin := time.Now()
	routes, _, err := r.client.Directions(ctx, req)
	r.log.Debug("google directions", zap.Duration("latency", time.Since(begin)))
	if err != nil {
		switch googleStatus(err) {
		case "ZERO_RESULTS", "NOT_FOUND", "MAX_ROUTE_LENGTH_EXCEEDED":
			return types.RouteMetrics{}, fmt.Errorf("%w: %v", ErrRoutingFailed, err)
		}
		return types.RouteMetrics{}, upstreamError("google directions", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return types.RouteMetrics{}, fmt.Errorf("%w: no route found", ErrRoutingFailed)
	}

	route := routes[0]
	var meters int
	var seconds float64
	for _, leg := range route.Legs {
		meters += leg.Distance.Meters
		seconds += leg.Duration.Seconds()
	}

	points, err := route.OverviewPolyline.Decode()
	if err != nil {
		return types.RouteMetrics{}, upstreamError("google directions", fmt.Errorf("decode polyline: %w", err))
	}
	path := make([]types.Coordinate, 0, len(points))
	for _, p := range points {
		path = append(path, types.Coordinate{Lat: p.Lat, Lon: p.Lng})
	}

	return types.RouteMetrics{
		DistanceKm:  float64(meters) / 1000.0,
		DurationMin: seconds / 60.0,
		Path:        path,
	}, nil
}

// googleStatus extracts the API status from errors shaped "maps: STATUS - message".
func googleStatus(err error) string {
	msg, ok := strings.CutPrefix(err.Error(), "maps: ")
	if !ok {
		return ""
	}
	status, _, _ := strings.Cut(msg, " ")
	return status
}

func latLngString(c types.Coordinate) string {
	return formatDegrees(c.Lat) + "," + formatDegrees(c.Lon)
}
