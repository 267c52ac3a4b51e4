package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNominatimGeocode_Found(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"59.3293","lon":"18.0686","display_name":"Stockholm"}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL + "/"}, zap.NewNop())
	c, err := g.Geocode(context.Background(), "Drottninggatan 1, Stockholm")
	require.NoError(t, err)
	assert.InDelta(t, 59.3293, c.Lat, 1e-9)
	assert.InDelta(t, 18.0686, c.Lon, 1e-9)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Contains(t, gotQuery, "format=json")
	assert.Contains(t, gotQuery, "limit=1")
	assert.Contains(t, gotQuery, "q=Drottninggatan+1%2C+Stockholm")
}

func TestNominatimGeocode_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL}, zap.NewNop())
	_, err := g.Geocode(context.Background(), "Nowhere Street 999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAddressNotFound))
	assert.Equal(t, "Address not found: Nowhere Street 999", err.Error())

	var nf *AddressNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Nowhere Street 999", nf.Address)
}

func TestNominatimGeocode_UpstreamFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"oops"`))
		},
		"bad lat": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"lat":"north","lon":"18.0"}]`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			g := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL}, zap.NewNop())
			_, err := g.Geocode(context.Background(), "Kungsgatan 5")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
			assert.False(t, errors.Is(err, ErrAddressNotFound))
		})
	}
}

func TestNominatimGeocode_TimeoutIsSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zap.NewNop())
	_, err := g.Geocode(context.Background(), "Slow Road 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestNominatimGeocode_CustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[{"lat":"1","lon":"2"}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL, UserAgent: "fleet-ops/2"}, zap.NewNop())
	_, err := g.Geocode(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "fleet-ops/2", gotUA)
}
