package api

import (
	"quayside/internal/catalog"
	"quayside/models"
)

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ContainersResponse represents the live container inventory.
type ContainersResponse struct {
	Count      int                       `json:"count"`
	Containers []models.ContainerSummary `json:"containers"`
}

// ClustersResponse represents the derived cluster groupings.
type ClustersResponse struct {
	Count    int                     `json:"count"`
	Clusters []models.ClusterSummary `json:"clusters"`
}

// ServicesResponse represents the service catalog contents.
type ServicesResponse struct {
	Count    int               `json:"count"`
	Services []catalog.Service `json:"services"`
}

// ActionResponse represents a completed single-container action.
type ActionResponse struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// LogsResponse represents recent container log output.
type LogsResponse struct {
	ID   string `json:"id"`
	Logs string `json:"logs"`
}
