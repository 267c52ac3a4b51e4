// README: Estimator runs the fare pipeline: geocode, route, derive features, predict.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taxipred/internal/maps"
	"taxipred/internal/modules/features"
	"taxipred/internal/modules/pricing"
	"taxipred/internal/types"
)

// Predictor is satisfied by *pricing.Predictor.
type Predictor interface {
	Predict(v features.Vector) (float64, error)
}

type EstimatorDeps struct {
	Geocoder  maps.Geocoder
	Router    maps.Router
	Predictor Predictor
	Rate      pricing.Rate

	// Location is the zone the time features are derived in.
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

type Estimator struct {
	geocoder  maps.Geocoder
	router    maps.Router
	predictor Predictor
	rate      pricing.Rate
	loc       *time.Location
	now       func() time.Time
	log       *zap.Logger
}

func NewEstimator(deps EstimatorDeps) (*Estimator, error) {
	if deps.Geocoder == nil || deps.Router == nil || deps.Predictor == nil {
		return nil, errors.New("estimator: geocoder, router and predictor are required")
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Estimator{
		geocoder:  deps.Geocoder,
		router:    deps.Router,
		predictor: deps.Predictor,
		rate:      deps.Rate,
		loc:       deps.Location,
		now:       deps.Now,
		log:       deps.Logger,
	}, nil
}

func (e *Estimator) Estimate(ctx context.Context, req TripRequest) (PredictionResult, error) {
	if err := req.Validate(); err != nil {
		return PredictionResult{}, err
	}

	var pickup, dropoff types.Coordinate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := e.geocoder.Geocode(gctx, req.Pickup())
		if err != nil {
			return fmt.Errorf("geocode pickup: %w", err)
		}
		pickup = c
		return nil
	})
	g.Go(func() error {
		c, err := e.geocoder.Geocode(gctx, req.Dropoff())
		if err != nil {
			return fmt.Errorf("geocode dropoff: %w", err)
		}
		dropoff = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return PredictionResult{}, err
	}

	route, err := e.router.Route(ctx, pickup, dropoff)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("route: %w", err)
	}

	localNow := e.now().In(e.loc)
	vec := features.Vector{
		TripDistanceKm:      route.DistanceKm,
		PassengerCount:      float64(req.Passengers()),
		BaseFare:            e.rate.BaseFare,
		PerKmRate:           e.rate.PerKm,
		PerMinuteRate:       e.rate.PerMinute,
		TripDurationMinutes: route.DurationMin,
	}
	vec.ApplyTime(features.DeriveTimeFeatures(localNow))
	vec.ApplyWeather(features.DeriveWeatherFeatures(req.Weather()))

	price, err := e.predictor.Predict(vec)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("predict: %w", err)
	}

	e.log.Info("fare estimated",
		zap.Float64("price", price),
		zap.Float64("distance_km", route.DistanceKm),
		zap.Float64("straight_line_km", types.HaversineKm(pickup, dropoff)),
		zap.Float64("duration_min", route.DurationMin),
		zap.Int("route_points", len(route.Path)),
		zap.String("weather", string(req.Weather())),
		zap.Time("local_time", localNow),
	)
	if ce := e.log.Check(zap.DebugLevel, "feature vector"); ce != nil {
		ce.Write(zap.Any("features", vec.Named()))
	}

	path := route.Path
	if path == nil {
		path = []types.Coordinate{}
	}
	return PredictionResult{
		PredictedPrice: roundTo(price, 2),
		DistanceKm:     roundTo(route.DistanceKm, 2),
		DurationMin:    roundTo(route.DurationMin, 1),
		Pickup:         pickup,
		Dropoff:        dropoff,
		Route:          path,
	}, nil
}
