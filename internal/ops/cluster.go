package ops

import (
	"context"
	"sort"
	"strings"

	"quayside/models"
)

// ClusterLabel is the label carrying an explicit cluster assignment.
const ClusterLabel = "quayside.cluster"

// composeProjectLabel is set by docker compose on every container of a
// project; it serves as a second-choice cluster key.
const composeProjectLabel = "com.docker.compose.project"

// ClusterOf derives the cluster association of a container. Preference
// order: the quayside.cluster label, the compose project label, the
// service catalog assignment for the container's name, and finally a
// naming heuristic that strips a trailing numeric replica suffix
// ("web-3" belongs to cluster "web").
func (s *Service) ClusterOf(c models.ContainerSummary) string {
	if v, ok := c.Labels[ClusterLabel]; ok && v != "" {
		return v
	}
	if v, ok := c.Labels[composeProjectLabel]; ok && v != "" {
		return v
	}
	if s.catalog != nil {
		if v := s.catalog.ClusterFor(c.Name); v != "" {
			return v
		}
	}
	return nameCluster(c.Name)
}

// nameCluster strips a trailing "-<number>" replica suffix. Names
// without one are their own cluster.
func nameCluster(name string) string {
	i := strings.LastIndex(name, "-")
	if i <= 0 {
		return name
	}
	suffix := name[i+1:]
	if suffix == "" {
		return name
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return name
		}
	}
	return name[:i]
}

// Clusters groups the live inventory by cluster association.
func (s *Service) Clusters(ctx context.Context) ([]models.ClusterSummary, error) {
	inventory, err := s.rt.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*models.ClusterSummary)
	for _, c := range inventory {
		cluster := s.ClusterOf(c)
		summary, ok := byName[cluster]
		if !ok {
			summary = &models.ClusterSummary{Name: cluster}
			byName[cluster] = summary
		}
		summary.Containers++
		if c.State == "running" {
			summary.Running++
		}
	}

	out := make([]models.ClusterSummary, 0, len(byName))
	for _, summary := range byName {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
