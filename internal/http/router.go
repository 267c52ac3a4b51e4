// README: HTTP router registration.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taxipred/internal/http/handlers"
	"taxipred/internal/http/middleware"
)

type RouterDeps struct {
	Estimator      handlers.Estimator
	Logger         *zap.Logger
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestID(),
		middleware.Logging(log.Named("http")),
		middleware.Recovery(log.Named("http")),
		middleware.CORS(deps.CORSOrigins),
		middleware.Deadline(deps.RequestTimeout),
	)

	predictHandler := handlers.NewPredictHandler(deps.Estimator, log.Named("predict"))
	r.POST("/predict", predictHandler.Predict)
	r.GET("/check", handlers.Check)
	r.GET("/health", handlers.Health)

	return r
}
