package models

// ClusterSummary aggregates the containers sharing one cluster
// association.
type ClusterSummary struct {
	Name       string `json:"name"`
	Containers int    `json:"containers"`
	Running    int    `json:"running"`
}
