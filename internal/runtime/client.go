// Package runtime wraps the Docker daemon's control socket behind a
// narrow interface. Every call is bounded by a per-call timeout so a
// hung daemon request surfaces as that call's failure instead of
// stalling its caller indefinitely.
package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"quayside/internal/config"
	"quayside/internal/stats"
	"quayside/models"
)

// ErrNotFound reports that the referenced container does not exist.
var ErrNotFound = errors.New("container not found")

// pullTimeout bounds a cold image pull. Pulls routinely outlast the
// per-call API budget, so they get their own allowance.
const pullTimeout = 5 * time.Minute

// Client is the container-runtime surface the rest of Quayside consumes.
// Tests substitute fakes for it.
type Client interface {
	ListAll(ctx context.Context) ([]models.ContainerSummary, error)
	Inspect(ctx context.Context, id string) (*models.ContainerDetail, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error
	Restart(ctx context.Context, id string) error
	StatsSnapshot(ctx context.Context, id string) (*stats.Raw, error)
	Logs(ctx context.Context, id string, tail int, timestamps bool) (string, error)
	Create(ctx context.Context, spec models.CreateContainerSpec) (string, error)
	Remove(ctx context.Context, id string, force bool) error
	Ping(ctx context.Context) error
}

// DockerClient implements Client against a local Docker daemon.
type DockerClient struct {
	cli         *dockerclient.Client
	apiTimeout  time.Duration
	stopTimeout int
}

// NewDockerClient connects to the daemon described by cfg. An empty
// socket means the standard Docker environment (DOCKER_HOST et al.).
func NewDockerClient(cfg config.DockerConfig) (*DockerClient, error) {
	opts := []dockerclient.Opt{dockerclient.WithAPIVersionNegotiation()}

	if cfg.Socket == "" {
		opts = append(opts, dockerclient.FromEnv)
	} else {
		host := cfg.Socket
		if !strings.Contains(host, "://") {
			host = "unix://" + host
		}
		opts = append(opts, dockerclient.WithHost(host))
	}

	cli, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &DockerClient{
		cli:         cli,
		apiTimeout:  cfg.APITimeout,
		stopTimeout: cfg.StopTimeout,
	}, nil
}

// Close releases the underlying HTTP client.
func (d *DockerClient) Close() error {
	return d.cli.Close()
}

func (d *DockerClient) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.apiTimeout)
}

// ListAll returns the full container inventory, running or not.
func (d *DockerClient) ListAll(ctx context.Context) ([]models.ContainerSummary, error) {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	list, err := d.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	summaries := make([]models.ContainerSummary, 0, len(list))
	for _, c := range list {
		summaries = append(summaries, models.ContainerSummary{
			ID:      c.ID,
			Name:    summaryName(c.Names, c.ID),
			Image:   c.Image,
			State:   string(c.State),
			Status:  c.Status,
			Labels:  c.Labels,
			Created: c.Created,
		})
	}
	return summaries, nil
}

// Inspect returns the detail view of one container, or ErrNotFound.
func (d *DockerClient) Inspect(ctx context.Context, id string) (*models.ContainerDetail, error) {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	info, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to inspect container %s: %w", id, err)
	}

	detail := &models.ContainerDetail{
		ID:   info.ID,
		Name: strings.TrimPrefix(info.Name, "/"),
	}
	if info.Config != nil {
		detail.Image = info.Config.Image
		detail.Labels = info.Config.Labels
		detail.Env = info.Config.Env
	}
	if info.State != nil {
		detail.State = info.State.Status
		detail.Status = info.State.Status
		detail.StartedAt = info.State.StartedAt
		detail.ExitCode = info.State.ExitCode
	}
	if info.HostConfig != nil {
		detail.RestartPolicy = string(info.HostConfig.RestartPolicy.Name)
	}
	return detail, nil
}

// Start starts a stopped container.
func (d *DockerClient) Start(ctx context.Context, id string) error {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	if err := d.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", id, err)
	}
	return nil
}

// Stop stops a running container, killing it after the configured grace
// period.
func (d *DockerClient) Stop(ctx context.Context, id string) error {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	timeout := d.stopTimeout
	if err := d.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", id, err)
	}
	return nil
}

// Restart restarts a container.
func (d *DockerClient) Restart(ctx context.Context, id string) error {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	timeout := d.stopTimeout
	if err := d.cli.ContainerRestart(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to restart container %s: %w", id, err)
	}
	return nil
}

// StatsSnapshot fetches a single non-streaming stats reading.
func (d *DockerClient) StatsSnapshot(ctx context.Context, id string) (*stats.Raw, error) {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	resp, err := d.cli.ContainerStats(ctx, id, false)
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read stats for container %s: %w", id, err)
	}
	defer resp.Body.Close()

	raw := &stats.Raw{}
	if err := json.NewDecoder(resp.Body).Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode stats for container %s: %w", id, err)
	}
	return raw, nil
}

// Logs returns up to tail recent log lines of a container as one string.
// Multiplexed stdout/stderr streams are demultiplexed and interleaved.
func (d *DockerClient) Logs(ctx context.Context, id string, tail int, timestamps bool) (string, error) {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: timestamps,
		Tail:       strconv.Itoa(tail),
	}

	reader, err := d.cli.ContainerLogs(ctx, id, opts)
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("failed to read logs for container %s: %w", id, err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, reader); err != nil {
		// TTY containers emit a raw stream without multiplexing headers.
		buf.Reset()
		if _, err := io.Copy(&buf, reader); err != nil {
			return "", fmt.Errorf("failed to read logs for container %s: %w", id, err)
		}
	}
	return buf.String(), nil
}

// Create pulls the image if it is not present locally, then creates and
// starts a container from the spec. The created container is removed
// again if starting it fails. The pull runs under its own timeout;
// create and start share one API-call budget.
func (d *DockerClient) Create(ctx context.Context, spec models.CreateContainerSpec) (string, error) {
	if err := d.pullIfAbsent(ctx, spec.Image); err != nil {
		return "", err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()

	containerConfig, hostConfig, err := specToDockerConfig(spec)
	if err != nil {
		return "", err
	}

	resp, err := d.cli.ContainerCreate(ctx, containerConfig, hostConfig, &network.NetworkingConfig{}, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := d.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = d.cli.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	return resp.ID, nil
}

// Remove removes a container.
func (d *DockerClient) Remove(ctx context.Context, id string, force bool) error {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	err := d.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: force})
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to remove container %s: %w", id, err)
	}
	return nil
}

// Ping checks daemon reachability.
func (d *DockerClient) Ping(ctx context.Context) error {
	ctx, cancel := d.bounded(ctx)
	defer cancel()

	if _, err := d.cli.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Docker daemon: %w", err)
	}
	return nil
}

func (d *DockerClient) pullBound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, pullTimeout)
}

func (d *DockerClient) pullIfAbsent(ctx context.Context, imageName string) error {
	ctx, cancel := d.pullBound(ctx)
	defer cancel()

	if _, _, err := d.cli.ImageInspectWithRaw(ctx, imageName); err == nil {
		return nil
	}

	reader, err := d.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// Consume pull output to ensure the pull completes.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	return nil
}

// summaryName derives the display name of a listed container: the first
// raw name with its leading '/' stripped, falling back to a short id.
func summaryName(names []string, id string) string {
	for _, name := range names {
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			return name
		}
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// specToDockerConfig converts a CreateContainerSpec to Docker API configs.
func specToDockerConfig(spec models.CreateContainerSpec) (*container.Config, *container.HostConfig, error) {
	env := make([]string, 0, len(spec.Env))
	for key, value := range spec.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	containerConfig := &container.Config{
		Image:  spec.Image,
		Env:    env,
		Labels: spec.Labels,
	}

	exposedPorts := make(nat.PortSet)
	portBindings := make(nat.PortMap)

	for _, port := range spec.Ports {
		protocol := port.Protocol
		if protocol == "" {
			protocol = "tcp"
		}

		natPort, err := nat.NewPort(strings.ToLower(protocol), strconv.Itoa(port.ContainerPort))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid port: %w", err)
		}

		exposedPorts[natPort] = struct{}{}

		if port.HostPort > 0 {
			portBindings[natPort] = []nat.PortBinding{
				{HostIP: "0.0.0.0", HostPort: strconv.Itoa(port.HostPort)},
			}
		}
	}
	containerConfig.ExposedPorts = exposedPorts

	hostConfig := &container.HostConfig{
		PortBindings:  portBindings,
		RestartPolicy: restartPolicy(spec.RestartPolicy),
	}

	return containerConfig, hostConfig, nil
}

func restartPolicy(policy string) container.RestartPolicy {
	switch policy {
	case "always":
		return container.RestartPolicy{Name: container.RestartPolicyAlways}
	case "unless-stopped":
		return container.RestartPolicy{Name: container.RestartPolicyUnlessStopped}
	case "on-failure":
		return container.RestartPolicy{Name: container.RestartPolicyOnFailure, MaximumRetryCount: 3}
	default:
		return container.RestartPolicy{Name: container.RestartPolicyDisabled}
	}
}
