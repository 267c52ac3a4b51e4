// README: HTTP server lifecycle around the gin router.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultRequestTimeout = 30 * time.Second

type ServerDeps struct {
	Addr           string
	Router         RouterDeps
	ShutdownWindow time.Duration
}

type Server struct {
	srv            *http.Server
	log            *zap.Logger
	shutdownWindow time.Duration
}

func NewServer(deps ServerDeps) *Server {
	if deps.Router.RequestTimeout == 0 {
		deps.Router.RequestTimeout = DefaultRequestTimeout
	}
	if deps.ShutdownWindow == 0 {
		deps.ShutdownWindow = 10 * time.Second
	}
	log := deps.Router.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              deps.Addr,
			Handler:           NewRouter(deps.Router),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log:            log,
		shutdownWindow: deps.ShutdownWindow,
	}
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownWindow)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
