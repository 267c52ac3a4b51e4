package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipred/internal/service"
	"taxipred/internal/types"
)

func TestClientPredict(t *testing.T) {
	var got QuoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"predicted_price":41.2,"distance_km":38.7,"duration_min":31.5,
			"pickup_lat":59.33,"pickup_lon":18.06,"dropoff_lat":59.65,"dropoff_lon":17.92,
			"route":[[59.33,18.06],[59.65,17.92]]}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL+"/", time.Second).Predict(context.Background(), QuoteRequest{
		PickupAddress: "Stockholm Central", DropoffAddress: "Arlanda", Weather: "Snow", PassengerCount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Snow", got.Weather)
	assert.Equal(t, 2, got.PassengerCount)
	assert.Equal(t, 41.2, res.PredictedPrice)
	assert.Equal(t, types.Coordinate{Lat: 59.65, Lon: 17.92}, res.Dropoff)
	assert.Equal(t, []types.Coordinate{{Lat: 59.33, Lon: 18.06}, {Lat: 59.65, Lon: 17.92}}, res.Route)
}

func TestClientPredict_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Address not found: Atlantis"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Predict(context.Background(), QuoteRequest{PickupAddress: "Atlantis", DropoffAddress: "Arlanda"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Address not found: Atlantis", apiErr.Detail)
}

func TestProjection_FitsBoxNorthUp(t *testing.T) {
	pts := []types.Coordinate{{Lat: 59.30, Lon: 18.00}, {Lat: 59.65, Lon: 17.90}, {Lat: 59.50, Lon: 18.10}}
	p := newProjection(pts, mapX, mapY, mapW, mapH, 8)

	for _, c := range pts {
		x, y := p.point(c)
		assert.GreaterOrEqual(t, x, mapX)
		assert.LessOrEqual(t, x, mapX+mapW)
		assert.GreaterOrEqual(t, y, mapY)
		assert.LessOrEqual(t, y, mapY+mapH)
	}

	_, ySouth := p.point(pts[0])
	_, yNorth := p.point(pts[1])
	assert.Less(t, yNorth, ySouth)

	xWest, _ := p.point(pts[1])
	xEast, _ := p.point(pts[2])
	assert.Less(t, xWest, xEast)
}

func TestProjection_SinglePointIsCentered(t *testing.T) {
	c := types.Coordinate{Lat: 59.3, Lon: 18.0}
	p := newProjection([]types.Coordinate{c, c}, 0, 0, 100, 50, 5)
	x, y := p.point(c)
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 25, y, 1e-9)
}

func TestRenderQuotePDF(t *testing.T) {
	res := service.PredictionResult{
		PredictedPrice: 41.2,
		DistanceKm:     38.7,
		DurationMin:    31.5,
		Pickup:         types.Coordinate{Lat: 59.33, Lon: 18.06},
		Dropoff:        types.Coordinate{Lat: 59.65, Lon: 17.92},
		Route:          []types.Coordinate{{Lat: 59.33, Lon: 18.06}, {Lat: 59.5, Lon: 18.0}, {Lat: 59.65, Lon: 17.92}},
	}
	req := QuoteRequest{PickupAddress: "Centralplan 15, Stockholm", DropoffAddress: "Flygvägen, Arlanda, Sigtuna", Weather: "Snow", PassengerCount: 2}

	var buf bytes.Buffer
	require.NoError(t, RenderQuotePDF(&buf, req, res, time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestRenderQuotePDF_EmptyRoute(t *testing.T) {
	var buf bytes.Buffer
	err := RenderQuotePDF(&buf, QuoteRequest{PickupAddress: "Götgatan 1", DropoffAddress: "Götgatan 1"}, service.PredictionResult{Route: []types.Coordinate{}}, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
