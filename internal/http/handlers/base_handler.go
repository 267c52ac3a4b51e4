// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taxipred/internal/maps"
	"taxipred/internal/service"
)

type errorResponse struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Detail: msg})
}

// writeEstimateError maps each pipeline error kind to its HTTP status.
func writeEstimateError(c *gin.Context, log *zap.Logger, err error) {
	_ = c.Error(err)

	var (
		ve *service.ValidationError
		nf *maps.AddressNotFoundError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(c, http.StatusUnprocessableEntity, errorResponse{Detail: ve.Message, Field: ve.Field})
	case errors.As(err, &nf):
		writeError(c, http.StatusBadRequest, nf.Error())
	case errors.Is(err, maps.ErrAddressNotFound):
		writeError(c, http.StatusBadRequest, "Address not found")
	case errors.Is(err, maps.ErrRoutingFailed):
		writeError(c, http.StatusBadRequest, "Routing failed")
	case errors.Is(c.Request.Context().Err(), context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, maps.ErrUpstreamUnavailable):
		writeError(c, http.StatusBadGateway, "map service unavailable")
	default:
		log.Error("estimate failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
