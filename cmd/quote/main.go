// README: Command-line fare quote: posts a trip to /predict, prints the estimate, optionally writes a PDF sheet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"taxipred/internal/infra"
)

type options struct {
	baseURL    string
	pickup     string
	dropoff    string
	weather    string
	passengers int
	pdfPath    string
	timeout    time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.baseURL, "base-url", envOrDefault("TAXIPRED_API_URL", "http://localhost:8000"), "taxipred API base URL")
	flag.StringVar(&opts.pickup, "pickup", "", "pickup address")
	flag.StringVar(&opts.dropoff, "dropoff", "", "drop-off address")
	flag.StringVar(&opts.weather, "weather", "Clear", "weather: Clear, Rain or Snow")
	flag.IntVar(&opts.passengers, "passengers", 1, "passenger count (1-8)")
	flag.StringVar(&opts.pdfPath, "pdf", "", "write a one-page quote sheet to this path")
	flag.DurationVar(&opts.timeout, "timeout", 45*time.Second, "request timeout")
	flag.Parse()

	logger, err := infra.NewLogger(envOrDefault("TAXIPRED_ENV", "development"), "warn")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(opts, logger); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "quote rejected (%d): %s\n", apiErr.Status, apiErr.Detail)
			os.Exit(2)
		}
		logger.Error("quote failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(opts options, logger *zap.Logger) error {
	if opts.pickup == "" || opts.dropoff == "" {
		return errors.New("both -pickup and -dropoff are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client := NewClient(opts.baseURL, opts.timeout)
	req := QuoteRequest{
		PickupAddress:  opts.pickup,
		DropoffAddress: opts.dropoff,
		Weather:        opts.weather,
		PassengerCount: opts.passengers,
	}
	res, err := client.Predict(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Estimated price:  %.2f\n", res.PredictedPrice)
	fmt.Printf("Distance:         %.2f km\n", res.DistanceKm)
	fmt.Printf("Duration:         %.1f min\n", res.DurationMin)
	fmt.Printf("Route points:     %d\n", len(res.Route))

	if opts.pdfPath == "" {
		return nil
	}
	f, err := os.Create(opts.pdfPath)
	if err != nil {
		return err
	}
	if err := RenderQuotePDF(f, req, res, time.Now()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("quote sheet written", zap.String("path", opts.pdfPath))
	fmt.Printf("Quote sheet:      %s\n", opts.pdfPath)
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
