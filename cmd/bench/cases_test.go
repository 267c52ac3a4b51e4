package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fakeAPI() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /check", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /predict", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predicted_price":12.5,"distance_km":4.2,"duration_min":9.1,"route":[[59.3,18.0]]}`))
	})
	return httptest.NewServer(mux)
}

func TestPredictRoundTrip(t *testing.T) {
	srv := fakeAPI()
	defer srv.Close()

	r := NewRunner(Config{BaseURL: srv.URL})
	res := predictRoundTrip(context.Background(), r, srv.URL+"/predict", map[string]any{"pickup_address": "abc"})
	assert.Equal(t, StatusPass, res.Status, res.Note)
	assert.Contains(t, res.Note, "points=1")
}

func TestDoCase_Statuses(t *testing.T) {
	srv := fakeAPI()
	defer srv.Close()
	r := NewRunner(Config{BaseURL: srv.URL})
	ctx := context.Background()

	assert.Equal(t, StatusPass, doCase(ctx, r, http.MethodGet, srv.URL+"/check", "", []int{200}, nil).Status)
	assert.Equal(t, StatusPending, doCase(ctx, r, http.MethodGet, srv.URL+"/missing", "", []int{200}, []int{404}).Status)
	assert.Equal(t, StatusFail, doCase(ctx, r, http.MethodGet, srv.URL+"/missing", "", []int{200}, nil).Status)
}

func TestPerfLoad(t *testing.T) {
	srv := fakeAPI()
	defer srv.Close()

	r := NewRunner(Config{BaseURL: srv.URL, Concurrency: 2, Duration: 100 * time.Millisecond})
	res := perfLoad(context.Background(), r, http.MethodGet, srv.URL+"/check", nil)
	assert.Equal(t, StatusPass, res.Status)
	assert.Contains(t, res.Note, "non2xx=0")
}

func TestSummarize(t *testing.T) {
	s := summarize([]Result{{Status: StatusPass}, {Status: StatusPass}, {Status: StatusFail}, {Status: StatusSkip}, {Status: StatusPending}})
	assert.Equal(t, summary{pass: 2, fail: 1, pending: 1, skipped: 1}, s)
}
