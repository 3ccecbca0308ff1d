package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"quayside/internal/catalog"
	"quayside/internal/ops"
	"quayside/internal/runtime"
	"quayside/models"
)

// singleAction handles POST /api/v1/containers/:id/actions/:action
func (s *Server) singleAction(c echo.Context) error {
	id := c.Param("id")

	action, err := ops.ParseAction(c.Param("action"))
	if err != nil {
		return BadRequestError("Invalid action", err.Error())
	}

	if err := s.ops.SingleAction(c.Request().Context(), id, action); err != nil {
		if errors.Is(err, runtime.ErrNotFound) {
			return NotFoundError("Container", id)
		}
		return UpstreamError("Failed to apply action", err.Error())
	}

	return c.JSON(http.StatusOK, ActionResponse{ID: id, Action: string(action)})
}

// bulkAction handles POST /api/v1/containers/actions/:action
func (s *Server) bulkAction(c echo.Context) error {
	action, err := ops.ParseAction(c.Param("action"))
	if err != nil {
		return BadRequestError("Invalid action", err.Error())
	}

	var req models.BulkActionRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}

	result, err := s.ops.BulkAction(c.Request().Context(), action, req)
	if err != nil {
		return InternalError("Bulk action failed", err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// clusterAction handles POST /api/v1/clusters/:cluster/actions/:action
func (s *Server) clusterAction(c echo.Context) error {
	cluster := c.Param("cluster")

	action, err := ops.ParseAction(c.Param("action"))
	if err != nil {
		return BadRequestError("Invalid action", err.Error())
	}

	result, err := s.ops.ClusterAction(c.Request().Context(), cluster, action)
	if err != nil {
		return InternalError("Cluster action failed", err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// listClusters handles GET /api/v1/clusters
func (s *Server) listClusters(c echo.Context) error {
	clusters, err := s.ops.Clusters(c.Request().Context())
	if err != nil {
		return UpstreamError("Failed to list clusters", err.Error())
	}

	return c.JSON(http.StatusOK, ClustersResponse{
		Count:    len(clusters),
		Clusters: clusters,
	})
}

// listServices handles GET /api/v1/services
func (s *Server) listServices(c echo.Context) error {
	if s.catalog == nil {
		return c.JSON(http.StatusOK, ServicesResponse{Services: nil})
	}

	services := s.catalog.Services()
	return c.JSON(http.StatusOK, ServicesResponse{
		Count:    len(services),
		Services: services,
	})
}

// registerService handles POST /api/v1/services
func (s *Server) registerService(c echo.Context) error {
	if s.catalog == nil {
		return InternalError("No service catalog configured", "")
	}

	var svc catalog.Service
	if err := c.Bind(&svc); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}

	if err := s.catalog.Put(svc); err != nil {
		return BadRequestError("Invalid service definition", err.Error())
	}

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: "Service registered",
		ID:      svc.Name,
	})
}

// deployService handles POST /api/v1/services/:name/deploy
func (s *Server) deployService(c echo.Context) error {
	name := c.Param("name")

	id, err := s.ops.DeployService(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, runtime.ErrNotFound) {
			return NotFoundError("Service", name)
		}
		return UpstreamError("Failed to deploy service", err.Error())
	}

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: "Service deployed",
		ID:      id,
	})
}
