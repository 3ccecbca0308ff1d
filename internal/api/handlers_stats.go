package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"quayside/internal/runtime"
	"quayside/internal/stats"
)

// getContainerStats handles GET /api/v1/containers/:id/stats
func (s *Server) getContainerStats(c echo.Context) error {
	id := c.Param("id")

	snapshot, err := s.ops.ContainerStats(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, runtime.ErrNotFound) {
			return NotFoundError("Container", id)
		}
		return UpstreamError("Failed to read container stats", err.Error())
	}

	return c.JSON(http.StatusOK, snapshot)
}

// getHostMetrics handles GET /api/v1/host/metrics. The CPU reading
// blocks the request for the sampling window.
func (s *Server) getHostMetrics(c echo.Context) error {
	metrics, err := stats.HostMetrics()
	if err != nil {
		return InternalError("Failed to read host metrics", err.Error())
	}

	return c.JSON(http.StatusOK, metrics)
}
