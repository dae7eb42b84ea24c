package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) MapHandlers(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"version": s.cfg.Server.AppVersion,
		})
	})

	v1.GET("/jobs", func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.pool.Snapshot())
	})

	v1.GET("/jobs/:id", func(c echo.Context) error {
		view, err := s.repo.GetStatus(c.Request().Context(), c.Param("id"))
		if err != nil {
			s.logger.Errorf("job status lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		}
		if view == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown job"})
		}
		return c.JSON(http.StatusOK, view)
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
