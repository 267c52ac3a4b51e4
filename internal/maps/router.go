// README: Driving routes from an OSRM-compatible service.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"taxipred/internal/types"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

// Router computes the driving route from start to end.
type Router interface {
	Route(ctx context.Context, start, end types.Coordinate) (types.RouteMetrics, error)
}

type OSRMConfig struct {
	BaseURL string
	Timeout time.Duration
}

type OSRMRouter struct {
	baseURL string
	timeout time.Duration
	httpc   *http.Client
	log     *zap.Logger
}

func NewOSRMRouter(cfg OSRMConfig, log *zap.Logger) *OSRMRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOSRMURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &OSRMRouter{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		httpc:   NewHTTPClient(cfg.Timeout),
		log:     log,
	}
}

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
}

func (r *OSRMRouter) Route(ctx context.Context, start, end types.Coordinate) (types.RouteMetrics, error) {
	endpoint := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=full&geometries=geojson",
		r.baseURL,
		formatDegrees(start.Lon), formatDegrees(start.Lat),
		formatDegrees(end.Lon), formatDegrees(end.Lat),
	)

	begin := time.Now()
	status, body, err := fetch(ctx, r.httpc, r.timeout, endpoint, nil)
	r.log.Debug("osrm route",
		zap.Int("status", status),
		zap.Duration("latency", time.Since(begin)),
	)
	if err != nil {
		return types.RouteMetrics{}, upstreamError("osrm", err)
	}

	var resp osrmResponse
	decodeErr := json.Unmarshal(body, &resp)
	if !isSuccess(status) {
		// OSRM reports unroutable input as 4xx with a code in the body.
		if decodeErr == nil && resp.Code != "" && resp.Code != "Ok" {
			return types.RouteMetrics{}, fmt.Errorf("%w: osrm code %s: %s", ErrRoutingFailed, resp.Code, resp.Message)
		}
		return types.RouteMetrics{}, upstreamError("osrm", fmt.Errorf("unexpected status %d", status))
	}
	if decodeErr != nil {
		return types.RouteMetrics{}, upstreamError("osrm", fmt.Errorf("decode response: %w", decodeErr))
	}
	if resp.Code != "Ok" || len(resp.Routes) == 0 {
		return types.RouteMetrics{}, fmt.Errorf("%w: osrm code %q with %d routes", ErrRoutingFailed, resp.Code, len(resp.Routes))
	}

	route := resp.Routes[0]
	path := make([]types.Coordinate, 0, len(route.Geometry.Coordinates))
	for i, p := range route.Geometry.Coordinates {
		if len(p) < 2 {
			return types.RouteMetrics{}, upstreamError("osrm", fmt.Errorf("geometry point %d has %d values", i, len(p)))
		}
		path = append(path, types.Coordinate{Lat: p[1], Lon: p[0]})
	}

	return types.RouteMetrics{
		DistanceKm:  route.Distance / 1000.0,
		DurationMin: route.Duration / 60.0,
		Path:        path,
	}, nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
