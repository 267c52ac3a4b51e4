// README: Bench cases: liveness, request validation, a real prediction, cache connectivity, throughput.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
	StatusPending = "PENDING"
	StatusSkip    = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	valid := map[string]any{
		"pickup_address":  r.cfg.Pickup,
		"dropoff_address": r.cfg.Dropoff,
		"weather":         "Clear",
		"passenger_count": 2,
	}

	return []TestCase{
		{
			Name:  "Env: geocode cache Redis",
			Focus: "Redis reachable when the cache is in use",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				keys, err := r.redis.Keys(ctx, "taxipred:geocode:*").Result()
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass, Note: fmt.Sprintf("cached_addresses=%d", len(keys))}
			},
		},

		httpCaseMethod("API: check", http.MethodGet, base+"/check", nil, []int{200}, nil),
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, []int{404}),

		// Validation
		httpCase("Validate: empty body -> 422", base+"/predict", map[string]any{}, []int{422}, nil),
		httpCase("Validate: short pickup -> 422", base+"/predict", map[string]any{
			"pickup_address":  "ab",
			"dropoff_address": r.cfg.Dropoff,
		}, []int{422}, nil),
		httpCase("Validate: unknown weather -> 422", base+"/predict", map[string]any{
			"pickup_address":  r.cfg.Pickup,
			"dropoff_address": r.cfg.Dropoff,
			"weather":         "Hail",
		}, []int{422}, nil),
		httpCase("Validate: 9 passengers -> 422", base+"/predict", map[string]any{
			"pickup_address":  r.cfg.Pickup,
			"dropoff_address": r.cfg.Dropoff,
			"passenger_count": 9,
		}, []int{422}, nil),
		rawCase("Validate: malformed json -> 422", base+"/predict", `{"pickup_address":`, []int{422}),

		// Pipeline
		{
			Name:  "Predict: round trip",
			Focus: "finite price, distance, duration and a route",
			Run: func(ctx context.Context, r *Runner) Result {
				return predictRoundTrip(ctx, r, base+"/predict", valid)
			},
		},
		httpCase("Predict: unknown address -> 400", base+"/predict", map[string]any{
			"pickup_address":  "zzqx unknown place 000000",
			"dropoff_address": r.cfg.Dropoff,
		}, []int{400}, []int{502}),

		// Performance
		{
			Name:  "Perf: check throughput",
			Focus: "liveness under load",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.Perf {
					return Result{Status: StatusSkip, Note: "perf=false"}
				}
				return perfLoad(ctx, r, http.MethodGet, base+"/check", nil)
			},
		},
		{
			Name:  "Perf: predict throughput",
			Focus: "end-to-end predictions; bounded by the public map services",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.Perf {
					return Result{Status: StatusSkip, Note: "perf=false"}
				}
				return perfLoad(ctx, r, http.MethodPost, base+"/predict", valid)
			},
		},
	}
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	var raw string
	if body != nil {
		b, _ := json.Marshal(body)
		raw = string(b)
	}
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			return doCase(ctx, r, method, url, raw, okStatuses, pendingStatuses)
		},
	}
}

func rawCase(name, url, body string, okStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			return doCase(ctx, r, http.MethodPost, url, body, okStatuses, nil)
		},
	}
}

func doCase(ctx context.Context, r *Runner, method, url, body string, okStatuses, pendingStatuses []int) Result {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	latency := time.Since(start)

	note := fmt.Sprintf("status=%d", resp.StatusCode)
	switch {
	case contains(okStatuses, resp.StatusCode):
		return Result{Status: StatusPass, Latency: latency, Note: note}
	case contains(pendingStatuses, resp.StatusCode):
		return Result{Status: StatusPending, Latency: latency, Note: note}
	default:
		return Result{Status: StatusFail, Latency: latency, Note: note}
	}
}

type predictResponse struct {
	PredictedPrice float64      `json:"predicted_price"`
	DistanceKm     float64      `json:"distance_km"`
	DurationMin    float64      `json:"duration_min"`
	Route          [][2]float64 `json:"route"`
}

func predictRoundTrip(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusGatewayTimeout {
		return Result{Status: StatusPending, Latency: latency, Note: fmt.Sprintf("map service unavailable, status=%d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{Status: StatusFail, Latency: latency, Note: err.Error()}
	}
	for _, v := range []float64{out.PredictedPrice, out.DistanceKm, out.DurationMin} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("bad value %v", v)}
		}
	}
	if out.Route == nil {
		return Result{Status: StatusFail, Latency: latency, Note: "route missing"}
	}
	return Result{
		Status:  StatusPass,
		Latency: latency,
		Note:    fmt.Sprintf("price=%.2f km=%.2f min=%.1f points=%d", out.PredictedPrice, out.DistanceKm, out.DurationMin, len(out.Route)),
	}
}

func perfLoad(ctx context.Context, r *Runner, method, url string, payload any) Result {
	var body string
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = string(b)
	}
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount, non2xx atomic.Int64
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				var reader io.Reader
				if body != "" {
					reader = strings.NewReader(body)
				}
				req, _ := http.NewRequestWithContext(ctx, method, url, reader)
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					errCount.Add(1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode >= 300 {
					non2xx.Add(1)
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d non2xx=%d", rps, errCount.Load(), non2xx.Load())}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
