package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"quayside/internal/ops"
	"quayside/internal/runtime"
	"quayside/models"
)

// listContainers handles GET /api/v1/containers
func (s *Server) listContainers(c echo.Context) error {
	containers, err := s.ops.List(c.Request().Context())
	if err != nil {
		return UpstreamError("Failed to list containers", err.Error())
	}

	return c.JSON(http.StatusOK, ContainersResponse{
		Count:      len(containers),
		Containers: containers,
	})
}

// getContainer handles GET /api/v1/containers/:id
func (s *Server) getContainer(c echo.Context) error {
	id := c.Param("id")

	detail, err := s.ops.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, runtime.ErrNotFound) {
			return NotFoundError("Container", id)
		}
		return UpstreamError("Failed to inspect container", err.Error())
	}

	return c.JSON(http.StatusOK, detail)
}

// createContainer handles POST /api/v1/containers
func (s *Server) createContainer(c echo.Context) error {
	var spec models.CreateContainerSpec
	if err := c.Bind(&spec); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}
	if err := c.Validate(&spec); err != nil {
		return err
	}

	id, err := s.ops.Create(c.Request().Context(), spec)
	if err != nil {
		return UpstreamError("Failed to create container", err.Error())
	}

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: "Container created",
		ID:      id,
	})
}

// deleteContainer handles DELETE /api/v1/containers/:id
func (s *Server) deleteContainer(c echo.Context) error {
	id := c.Param("id")
	force, _ := strconv.ParseBool(c.QueryParam("force"))

	if err := s.ops.Remove(c.Request().Context(), id, force); err != nil {
		if errors.Is(err, runtime.ErrNotFound) {
			return NotFoundError("Container", id)
		}
		if errors.Is(err, ops.ErrProtected) {
			return BadRequestError("Container is protected", err.Error())
		}
		return UpstreamError("Failed to remove container", err.Error())
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "Container removed",
		ID:      id,
	})
}

// getContainerLogs handles GET /api/v1/containers/:id/logs
func (s *Server) getContainerLogs(c echo.Context) error {
	id := c.Param("id")

	tail := 100
	if raw := c.QueryParam("tail"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return BadRequestError("Invalid tail parameter", "tail must be a positive integer")
		}
		tail = parsed
	}
	timestamps, _ := strconv.ParseBool(c.QueryParam("timestamps"))

	logs, err := s.ops.Logs(c.Request().Context(), id, tail, timestamps)
	if err != nil {
		if errors.Is(err, runtime.ErrNotFound) {
			return NotFoundError("Container", id)
		}
		return UpstreamError("Failed to read container logs", err.Error())
	}

	return c.JSON(http.StatusOK, LogsResponse{ID: id, Logs: logs})
}
