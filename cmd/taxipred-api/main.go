// README: Entry point; loads config and the fare model, wires map clients and the estimator, serves HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taxipred/internal/config"
	httptransport "taxipred/internal/http"
	"taxipred/internal/infra"
	"taxipred/internal/maps"
	"taxipred/internal/modules/pricing"
	"taxipred/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("taxipred-api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	predictor, err := pricing.Load(cfg.Model.Path)
	if err != nil {
		return err
	}
	logger.Info("fare model loaded",
		zap.String("path", cfg.Model.Path),
		zap.String("kind", string(predictor.Kind())),
		zap.String("version", predictor.Version()),
	)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	geocoder, router, rdb, err := newMapClients(ctx, cfg, logger.Named("maps"))
	if err != nil {
		return err
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	estimator, err := service.NewEstimator(service.EstimatorDeps{
		Geocoder:  geocoder,
		Router:    router,
		Predictor: predictor,
		Rate: pricing.Rate{
			BaseFare:  cfg.Pricing.BaseFare,
			PerKm:     cfg.Pricing.PerKmRate,
			PerMinute: cfg.Pricing.PerMinuteRate,
		},
		Location: loc,
		Logger:   logger.Named("estimator"),
	})
	if err != nil {
		return err
	}

	server := httptransport.NewServer(httptransport.ServerDeps{
		Addr: cfg.HTTP.Addr,
		Router: httptransport.RouterDeps{
			Estimator:   estimator,
			Logger:      logger,
			CORSOrigins: cfg.HTTP.CORSOrigins,
		},
	})
	return server.Run(ctx)
}

// newMapClients returns the Redis client backing the geocode cache, or nil
// when the cache is off. The caller owns it.
func newMapClients(ctx context.Context, cfg config.Config, logger *zap.Logger) (maps.Geocoder, maps.Router, *redis.Client, error) {
	var (
		geocoder maps.Geocoder
		router   maps.Router
	)
	switch cfg.Maps.Provider {
	case config.ProviderGoogle:
		client, err := maps.NewGoogleClient(cfg.Maps.GoogleAPIKey, cfg.Maps.UpstreamTimeout, "")
		if err != nil {
			return nil, nil, nil, err
		}
		geocoder = maps.NewGoogleGeocoder(client, cfg.Maps.UpstreamTimeout, logger)
		router = maps.NewGoogleRouter(client, cfg.Maps.UpstreamTimeout, logger)
	case config.ProviderOSM:
		geocoder = maps.NewNominatimGeocoder(maps.NominatimConfig{
			BaseURL:   cfg.Maps.NominatimURL,
			UserAgent: cfg.Maps.UserAgent,
			Timeout:   cfg.Maps.UpstreamTimeout,
		}, logger)
		router = maps.NewOSRMRouter(maps.OSRMConfig{
			BaseURL: cfg.Maps.OSRMURL,
			Timeout: cfg.Maps.UpstreamTimeout,
		}, logger)
	default:
		return nil, nil, nil, fmt.Errorf("unknown maps provider %q", cfg.Maps.Provider)
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled {
		var err error
		rdb, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("geocode cache enabled", zap.String("redis", cfg.Redis.Addr), zap.Duration("ttl", cfg.Cache.TTL))
		geocoder = maps.NewCachedGeocoder(geocoder, rdb, cfg.Cache.TTL, logger.Named("cache"))
	}

	logger.Info("map provider ready", zap.String("provider", cfg.Maps.Provider))
	return geocoder, router, rdb, nil
}
