// README: Smoke and load runner against a live taxipred API; prints one line per case and a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	s := summarize(results)
	fmt.Printf("PASS=%d FAIL=%d PENDING=%d SKIP=%d\n", s.pass, s.fail, s.pending, s.skipped)

	if s.fail > 0 || (cfg.Strict && s.pending > 0) {
		os.Exit(1)
	}
}

type summary struct {
	pass, fail, pending, skipped int
}

func summarize(results []Result) summary {
	var s summary
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			s.pass++
		case StatusFail:
			s.fail++
		case StatusPending:
			s.pending++
		case StatusSkip:
			s.skipped++
		}
	}
	return s
}

type Config struct {
	BaseURL     string
	RedisAddr   string
	Pickup      string
	Dropoff     string
	Strict      bool
	Perf        bool
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("TAXIPRED_BENCH_BASE_URL", "http://localhost:8000"), "API base URL")
	flag.StringVar(&cfg.RedisAddr, "redis", envOrDefault("TAXIPRED_REDIS_ADDR", ""), "Redis address of the geocode cache (empty skips)")
	flag.StringVar(&cfg.Pickup, "pickup", envOrDefault("TAXIPRED_BENCH_PICKUP", "Stockholm Central Station"), "Pickup address for prediction cases")
	flag.StringVar(&cfg.Dropoff, "dropoff", envOrDefault("TAXIPRED_BENCH_DROPOFF", "Stockholm Arlanda Airport"), "Drop-off address for prediction cases")
	flag.BoolVar(&cfg.Strict, "strict", envOrDefaultBool("TAXIPRED_BENCH_STRICT", false), "Fail on pending cases")
	flag.BoolVar(&cfg.Perf, "perf", envOrDefaultBool("TAXIPRED_BENCH_PERF", false), "Run throughput cases")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("TAXIPRED_BENCH_TIMEOUT", 2*time.Minute), "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", envOrDefaultInt("TAXIPRED_BENCH_CONCURRENCY", 8), "Concurrency for perf cases")
	flag.DurationVar(&cfg.Duration, "duration", envOrDefaultDuration("TAXIPRED_BENCH_DURATION", 10*time.Second), "Duration of each perf case")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "1" || v == "true" || v == "yes"
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
