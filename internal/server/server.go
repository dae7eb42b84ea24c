// Package server exposes the operator-facing status API: health, the
// in-flight job list and Prometheus metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/jobs"
	"github.com/transcodehub/transcodebot/pkg/logger"
)

const (
	maxHeaderBytes  = 1 << 20
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Snapshotter exposes the pool's in-flight job list.
type Snapshotter interface {
	Snapshot() []jobs.JobView
}

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	pool   Snapshotter
	repo   jobs.StatusRepository
	logger logger.Logger
}

func NewServer(cfg *config.Config, pool Snapshotter, repo jobs.StatusRepository, logger logger.Logger) *Server {
	return &Server{
		echo:   echo.New(),
		cfg:    cfg,
		pool:   pool,
		repo:   repo,
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.MapHandlers(s.echo)

	server := &http.Server{
		Addr:           s.cfg.Server.Port,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("status server listening on %s", s.cfg.Server.Port)
		errCh <- s.echo.StartServer(server)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Infof("shutting down status server")
	return s.echo.Server.Shutdown(shutdownCtx)
}
