package ops

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quayside/internal/catalog"
	"quayside/internal/policy"
	"quayside/models"
)

func TestNameCluster(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"web-1", "web"},
		{"web-12", "web"},
		{"kz-dashboard-api", "kz-dashboard-api"},
		{"db", "db"},
		{"cache-", "cache-"},
		{"-1", "-1"},
		{"a-b-3", "a-b"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, nameCluster(tt.name), "nameCluster(%q)", tt.name)
	}
}

func TestClusterOfPreferenceOrder(t *testing.T) {
	dir := t.TempDir()
	cat, err := catalog.Load(dir + "/services.yaml")
	require.NoError(t, err)
	require.NoError(t, cat.Put(catalog.Service{Name: "worker", Image: "worker:1", Cluster: "jobs"}))

	svc := New(&fakeRuntime{}, policy.NewFilter(nil), cat, 5, zerolog.Nop())

	t.Run("explicit label wins", func(t *testing.T) {
		c := models.ContainerSummary{
			Name: "worker",
			Labels: map[string]string{
				ClusterLabel:        "explicit",
				composeProjectLabel: "compose",
			},
		}
		assert.Equal(t, "explicit", svc.ClusterOf(c))
	})

	t.Run("compose project second", func(t *testing.T) {
		c := models.ContainerSummary{
			Name:   "worker",
			Labels: map[string]string{composeProjectLabel: "compose"},
		}
		assert.Equal(t, "compose", svc.ClusterOf(c))
	})

	t.Run("catalog third", func(t *testing.T) {
		c := models.ContainerSummary{Name: "worker"}
		assert.Equal(t, "jobs", svc.ClusterOf(c))
	})

	t.Run("name heuristic last", func(t *testing.T) {
		c := models.ContainerSummary{Name: "web-2"}
		assert.Equal(t, "web", svc.ClusterOf(c))
	})
}

func TestClusters(t *testing.T) {
	rt := &fakeRuntime{containers: []models.ContainerSummary{
		{ID: "1", Name: "web-1", State: "running"},
		{ID: "2", Name: "web-2", State: "exited"},
		{ID: "3", Name: "db", State: "running"},
		{ID: "4", Name: "api", State: "running", Labels: map[string]string{ClusterLabel: "web"}},
	}}
	svc := newService(rt, nil)

	clusters, err := svc.Clusters(context.Background())
	require.NoError(t, err)

	require.Len(t, clusters, 2)
	assert.Equal(t, models.ClusterSummary{Name: "db", Containers: 1, Running: 1}, clusters[0])
	assert.Equal(t, models.ClusterSummary{Name: "web", Containers: 3, Running: 2}, clusters[1])
}
