package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipred/internal/maps"
	"taxipred/internal/modules/features"
	"taxipred/internal/modules/pricing"
	"taxipred/internal/types"
)

type fakeGeocoder struct {
	mu     sync.Mutex
	coords map[string]types.Coordinate
	errs   map[string]error
	calls  atomic.Int32
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (types.Coordinate, error) {
	g.calls.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.errs[address]; ok {
		return types.Coordinate{}, err
	}
	if c, ok := g.coords[address]; ok {
		return c, nil
	}
	return types.Coordinate{}, &maps.AddressNotFoundError{Address: address}
}

type fakeRouter struct {
	mu         sync.Mutex
	metrics    types.RouteMetrics
	err        error
	calls      atomic.Int32
	start, end types.Coordinate
}

func (r *fakeRouter) Route(_ context.Context, start, end types.Coordinate) (types.RouteMetrics, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start, r.end = start, end
	return r.metrics, r.err
}

type fakePredictor struct {
	mu    sync.Mutex
	price float64
	err   error
	calls atomic.Int32
	got   features.Vector
}

func (p *fakePredictor) Predict(v features.Vector) (float64, error) {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = v
	return p.price, p.err
}

var (
	stockholmC = types.Coordinate{Lat: 59.3303, Lon: 18.0586}
	arlanda    = types.Coordinate{Lat: 59.6498, Lon: 17.9238}
)

type fixture struct {
	geo       *fakeGeocoder
	router    *fakeRouter
	predictor *fakePredictor
	est       *Estimator
}

// now is 08:00 Stockholm time on Wednesday 2026-03-04.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	f := &fixture{
		geo: &fakeGeocoder{coords: map[string]types.Coordinate{
			"Stockholm Central": stockholmC,
			"Arlanda Airport":   arlanda,
		}},
		router: &fakeRouter{metrics: types.RouteMetrics{
			DistanceKm:  12.3456,
			DurationMin: 678.0 / 60.0,
			Path:        []types.Coordinate{stockholmC, {Lat: 59.5, Lon: 18.0}, arlanda},
		}},
		predictor: &fakePredictor{price: 23.456},
	}
	f.est, err = NewEstimator(EstimatorDeps{
		Geocoder:  f.geo,
		Router:    f.router,
		Predictor: f.predictor,
		Rate:      pricing.DefaultRate,
		Location:  loc,
		Now:       func() time.Time { return time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return f
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestEstimate_WeekdayMorningSnow(t *testing.T) {
	f := newFixture(t)
	req, err := NewTripRequest("Stockholm Central", "Arlanda Airport", strPtr("Snow"), intPtr(2))
	require.NoError(t, err)

	res, err := f.est.Estimate(context.Background(), req)
	require.NoError(t, err)

	want := features.Vector{
		TripDistanceKm:      12.3456,
		PassengerCount:      2,
		BaseFare:            3.0,
		PerKmRate:           1.2,
		PerMinuteRate:       0.3,
		TripDurationMinutes: 678.0 / 60.0,
		TimeOfDayMorning:    1,
		WeatherSnow:         1,
	}
	assert.Equal(t, want, f.predictor.got)

	assert.Equal(t, 23.46, res.PredictedPrice)
	assert.Equal(t, 12.35, res.DistanceKm)
	assert.Equal(t, 11.3, res.DurationMin)
	assert.Equal(t, stockholmC, res.Pickup)
	assert.Equal(t, arlanda, res.Dropoff)
	assert.Len(t, res.Route, 3)

	assert.Equal(t, int32(2), f.geo.calls.Load())
	assert.Equal(t, stockholmC, f.router.start)
	assert.Equal(t, arlanda, f.router.end)
}

func TestEstimate_WeekendEveningDefaults(t *testing.T) {
	f := newFixture(t)
	// Saturday 2026-03-07 18:30 Stockholm.
	f.est.now = func() time.Time { return time.Date(2026, 3, 7, 17, 30, 0, 0, time.UTC) }

	req, err := NewTripRequest("Stockholm Central", "Arlanda Airport", nil, nil)
	require.NoError(t, err)
	_, err = f.est.Estimate(context.Background(), req)
	require.NoError(t, err)

	got := f.predictor.got
	assert.Equal(t, 1.0, got.PassengerCount)
	assert.Equal(t, 1.0, got.TimeOfDayEvening)
	assert.Equal(t, 1.0, got.DayOfWeekWeekend)
	assert.Equal(t, 1.0, got.TrafficConditionsMedium)
	assert.Equal(t, 0.0, got.TrafficConditionsLow)
	assert.Equal(t, 0.0, got.WeatherRain+got.WeatherSnow)
}

func TestEstimate_ZeroValueRequestMakesNoCalls(t *testing.T) {
	f := newFixture(t)

	_, err := f.est.Estimate(context.Background(), TripRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Zero(t, f.geo.calls.Load())
	assert.Zero(t, f.router.calls.Load())
	assert.Zero(t, f.predictor.calls.Load())
}

func TestEstimate_AddressNotFoundStopsPipeline(t *testing.T) {
	f := newFixture(t)
	req, err := NewTripRequest("Stockholm Central", "Nowhere 404", strPtr("Clear"), nil)
	require.NoError(t, err)

	_, err = f.est.Estimate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, maps.ErrAddressNotFound))

	var nf *maps.AddressNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Nowhere 404", nf.Address)

	assert.Zero(t, f.router.calls.Load())
	assert.Zero(t, f.predictor.calls.Load())
}

func TestEstimate_PropagatesCollaboratorErrors(t *testing.T) {
	t.Run("geocoder upstream", func(t *testing.T) {
		f := newFixture(t)
		f.geo.errs = map[string]error{"Arlanda Airport": maps.ErrUpstreamUnavailable}
		req, _ := NewTripRequest("Stockholm Central", "Arlanda Airport", nil, nil)
		_, err := f.est.Estimate(context.Background(), req)
		assert.True(t, errors.Is(err, maps.ErrUpstreamUnavailable))
		assert.Zero(t, f.router.calls.Load())
	})
	t.Run("routing failed", func(t *testing.T) {
		f := newFixture(t)
		f.router.err = maps.ErrRoutingFailed
		req, _ := NewTripRequest("Stockholm Central", "Arlanda Airport", nil, nil)
		_, err := f.est.Estimate(context.Background(), req)
		assert.True(t, errors.Is(err, maps.ErrRoutingFailed))
		assert.Zero(t, f.predictor.calls.Load())
	})
	t.Run("predictor", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("tree walk exceeded")
		f.predictor.err = boom
		req, _ := NewTripRequest("Stockholm Central", "Arlanda Airport", nil, nil)
		res, err := f.est.Estimate(context.Background(), req)
		assert.True(t, errors.Is(err, boom))
		assert.Equal(t, PredictionResult{}, res)
	})
}

func TestEstimate_EmptyRouteIsNotNull(t *testing.T) {
	f := newFixture(t)
	f.router.metrics.Path = nil
	req, _ := NewTripRequest("Stockholm Central", "Arlanda Airport", nil, nil)

	res, err := f.est.Estimate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Route)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"route":[]`)
}

func TestEstimate_ConcurrentRequests(t *testing.T) {
	f := newFixture(t)
	req, _ := NewTripRequest("Stockholm Central", "Arlanda Airport", strPtr("Rain"), intPtr(3))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.est.Estimate(context.Background(), req)
			assert.NoError(t, err)
			assert.False(t, math.IsNaN(res.PredictedPrice))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(32), f.geo.calls.Load())
}

func TestNewEstimator_RequiresCollaborators(t *testing.T) {
	_, err := NewEstimator(EstimatorDeps{})
	assert.Error(t, err)
}

func TestEstimate_WithShippedModel(t *testing.T) {
	p, err := pricing.Load("../../models/fare_model.json")
	require.NoError(t, err)

	f := newFixture(t)
	f.est.predictor = p
	req, _ := NewTripRequest("Stockholm Central", "Arlanda Airport", strPtr("Rain"), intPtr(4))

	res, err := f.est.Estimate(context.Background(), req)
	require.NoError(t, err)
	assert.Greater(t, res.PredictedPrice, 0.0)
	assert.Equal(t, res.PredictedPrice, roundTo(res.PredictedPrice, 2))
}
