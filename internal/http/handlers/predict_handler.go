// README: POST /predict handler.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taxipred/internal/service"
)

const maxRequestBytes = 64 << 10

// Estimator is satisfied by *service.Estimator.
type Estimator interface {
	Estimate(ctx context.Context, req service.TripRequest) (service.PredictionResult, error)
}

type PredictHandler struct {
	estimator Estimator
	log       *zap.Logger
}

func NewPredictHandler(est Estimator, log *zap.Logger) *PredictHandler {
	return &PredictHandler{estimator: est, log: log}
}

type predictReq struct {
	PickupAddress  string  `json:"pickup_address"`
	DropoffAddress string  `json:"dropoff_address"`
	Weather        *string `json:"weather"`
	PassengerCount *int    `json:"passenger_count"`
}

// optionalFields default only when absent; an explicit null is rejected.
var optionalFields = []string{"weather", "passenger_count"}

func (h *PredictHandler) Predict(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes))
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, "invalid json body")
		return
	}

	var req predictReq
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeJSON(c, http.StatusUnprocessableEntity, errorResponse{
				Detail: typeErr.Field + " has the wrong type",
				Field:  typeErr.Field,
			})
			return
		}
		writeError(c, http.StatusUnprocessableEntity, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(c, http.StatusUnprocessableEntity, "invalid json body")
		return
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err == nil {
		for _, key := range optionalFields {
			if v, ok := present[key]; ok && string(bytes.TrimSpace(v)) == "null" {
				writeJSON(c, http.StatusUnprocessableEntity, errorResponse{
					Detail: key + " must not be null",
					Field:  key,
				})
				return
			}
		}
	}

	trip, err := service.NewTripRequest(req.PickupAddress, req.DropoffAddress, req.Weather, req.PassengerCount)
	if err != nil {
		writeEstimateError(c, h.log, err)
		return
	}

	res, err := h.estimator.Estimate(c.Request.Context(), trip)
	if err != nil {
		writeEstimateError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
