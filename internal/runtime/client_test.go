package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quayside/internal/config"
	"quayside/models"
)

func TestSummaryName(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		id    string
		want  string
	}{
		{"leading slash stripped", []string{"/web-1"}, "abc", "web-1"},
		{"first name wins", []string{"/web-1", "/alias"}, "abc", "web-1"},
		{"no slash kept as is", []string{"web-1"}, "abc", "web-1"},
		{"only one slash stripped", []string{"//odd"}, "abc", "/odd"},
		{"empty names fall back to short id", nil, "0123456789abcdef0123", "0123456789ab"},
		{"short id kept whole", []string{}, "abc123", "abc123"},
		{"blank name skipped", []string{"/", "/web-2"}, "abc", "web-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summaryName(tt.names, tt.id))
		})
	}
}

func TestSpecToDockerConfig(t *testing.T) {
	spec := models.CreateContainerSpec{
		Name:  "web",
		Image: "nginx:latest",
		Env:   map[string]string{"MODE": "prod"},
		Ports: []models.PortMapping{
			{ContainerPort: 80, HostPort: 8080},
			{ContainerPort: 53, HostPort: 5353, Protocol: "UDP"},
			{ContainerPort: 9090}, // exposed but unbound
		},
		Labels:        map[string]string{"quayside.cluster": "web"},
		RestartPolicy: "unless-stopped",
	}

	containerConfig, hostConfig, err := specToDockerConfig(spec)
	require.NoError(t, err)

	assert.Equal(t, "nginx:latest", containerConfig.Image)
	assert.Contains(t, containerConfig.Env, "MODE=prod")
	assert.Equal(t, "web", containerConfig.Labels["quayside.cluster"])
	assert.Len(t, containerConfig.ExposedPorts, 3)
	assert.Len(t, hostConfig.PortBindings, 2, "unbound ports are exposed but not published")
	assert.Equal(t, "unless-stopped", string(hostConfig.RestartPolicy.Name))

	bindings, ok := hostConfig.PortBindings["80/tcp"]
	require.True(t, ok)
	require.Len(t, bindings, 1)
	assert.Equal(t, "8080", bindings[0].HostPort)

	_, udp := hostConfig.PortBindings["53/udp"]
	assert.True(t, udp, "protocol is lower-cased")
}

func TestPullBoundOutlastsAPITimeout(t *testing.T) {
	d, err := NewDockerClient(config.DockerConfig{
		Socket:      "/var/run/docker.sock",
		APITimeout:  2 * time.Second,
		StopTimeout: 10,
	})
	require.NoError(t, err)
	defer d.Close()

	apiCtx, apiCancel := d.bounded(context.Background())
	defer apiCancel()
	pullCtx, pullCancel := d.pullBound(context.Background())
	defer pullCancel()

	apiDeadline, ok := apiCtx.Deadline()
	require.True(t, ok)
	pullDeadline, ok := pullCtx.Deadline()
	require.True(t, ok)

	// A cold pull must not be capped by the per-call API budget.
	assert.True(t, pullDeadline.After(apiDeadline))
}

func TestRestartPolicyMapping(t *testing.T) {
	assert.Equal(t, "always", string(restartPolicy("always").Name))
	assert.Equal(t, "unless-stopped", string(restartPolicy("unless-stopped").Name))
	assert.Equal(t, "on-failure", string(restartPolicy("on-failure").Name))
	assert.Equal(t, "no", string(restartPolicy("").Name))
	assert.Equal(t, "no", string(restartPolicy("bogus").Name))
}
