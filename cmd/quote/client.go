// README: Minimal client for the /predict endpoint.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taxipred/internal/service"
)

type QuoteRequest struct {
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
	Weather        string `json:"weather,omitempty"`
	PassengerCount int    `json:"passenger_count"`
}

// APIError is a non-200 answer from the service.
type APIError struct {
	Status int
	Detail string
	Field  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("taxipred api: status %d: %s", e.Status, e.Detail)
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Predict(ctx context.Context, in QuoteRequest) (service.PredictionResult, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return service.PredictionResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return service.PredictionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return service.PredictionResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return service.PredictionResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
			Field  string `json:"field"`
		}
		if json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
			apiErr.Detail, apiErr.Field = detail.Detail, detail.Field
		} else {
			apiErr.Detail = http.StatusText(resp.StatusCode)
		}
		return service.PredictionResult{}, apiErr
	}

	var res service.PredictionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return service.PredictionResult{}, fmt.Errorf("decode prediction: %w", err)
	}
	return res, nil
}
