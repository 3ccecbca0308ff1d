// Package ops composes the policy filter, the bounded worker pool and
// the runtime client into the container operations the HTTP layer
// exposes: single actions, bulk actions, cluster actions and derived
// metrics.
package ops

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quayside/internal/catalog"
	"quayside/internal/policy"
	"quayside/internal/pool"
	"quayside/internal/runtime"
	"quayside/internal/stats"
	"quayside/models"
)

// Service is the operations engine. It holds no state of its own beyond
// configuration: the container inventory is re-fetched from the daemon
// on every call.
type Service struct {
	rt      runtime.Client
	filter  *policy.Filter
	catalog *catalog.Catalog
	workers int
	log     zerolog.Logger
}

// New builds a Service. workers caps per-batch concurrency and must be
// at least 1. catalog may be nil when no service catalog is configured.
func New(rt runtime.Client, filter *policy.Filter, cat *catalog.Catalog, workers int, log zerolog.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		rt:      rt,
		filter:  filter,
		catalog: cat,
		workers: workers,
		log:     log,
	}
}

// List returns the live container inventory. Unlike the listing inside
// bulk actions, a daemon failure here propagates to the caller.
func (s *Service) List(ctx context.Context) ([]models.ContainerSummary, error) {
	return s.rt.ListAll(ctx)
}

// Get returns the inspect view of one container.
func (s *Service) Get(ctx context.Context, id string) (*models.ContainerDetail, error) {
	return s.rt.Inspect(ctx, id)
}

// SingleAction applies a lifecycle action to one container. The
// existence check runs first so an unknown id surfaces as
// runtime.ErrNotFound instead of a less specific daemon error.
func (s *Service) SingleAction(ctx context.Context, id string, action Action) error {
	if _, err := s.rt.Inspect(ctx, id); err != nil {
		return err
	}
	return s.apply(ctx, action, id)
}

// BulkAction applies an action to every container selected by req,
// subject to the protected-name policy. Individual failures never abort
// the batch; the result reports each target exactly once. A failed
// inventory listing degrades to an empty target set and marks the
// result accordingly.
func (s *Service) BulkAction(ctx context.Context, action Action, req models.BulkActionRequest) (*models.BulkActionResult, error) {
	inventory, degraded := s.inventory(ctx)
	targets := s.filter.Targets(inventory, req)
	return s.execute(ctx, action, targets, degraded)
}

// ClusterAction applies an action to every container associated with
// the given cluster key. Protected names are still excluded.
func (s *Service) ClusterAction(ctx context.Context, cluster string, action Action) (*models.BulkActionResult, error) {
	inventory, degraded := s.inventory(ctx)

	targets := make([]models.ContainerSummary, 0, len(inventory))
	for _, c := range inventory {
		if s.ClusterOf(c) != cluster {
			continue
		}
		if s.filter.IsProtected(c.Name) {
			continue
		}
		targets = append(targets, c)
	}

	return s.execute(ctx, action, targets, degraded)
}

// ContainerStats computes a derived metrics snapshot for one container.
func (s *Service) ContainerStats(ctx context.Context, id string) (*models.ContainerStatsSnapshot, error) {
	raw, err := s.rt.StatsSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := stats.Snapshot(id, raw)
	return &snap, nil
}

// Logs returns recent log output of one container.
func (s *Service) Logs(ctx context.Context, id string, tail int, timestamps bool) (string, error) {
	return s.rt.Logs(ctx, id, tail, timestamps)
}

// Create creates and starts a container from spec.
func (s *Service) Create(ctx context.Context, spec models.CreateContainerSpec) (string, error) {
	return s.rt.Create(ctx, spec)
}

// Remove removes a container. Protected containers cannot be removed.
func (s *Service) Remove(ctx context.Context, id string, force bool) error {
	detail, err := s.rt.Inspect(ctx, id)
	if err != nil {
		return err
	}
	if s.filter.IsProtected(detail.Name) {
		return fmt.Errorf("%w: %s", ErrProtected, detail.Name)
	}
	return s.rt.Remove(ctx, id, force)
}

// DeployService creates and starts a container from a catalog entry.
func (s *Service) DeployService(ctx context.Context, name string) (string, error) {
	if s.catalog == nil {
		return "", fmt.Errorf("no service catalog configured")
	}
	svc, ok := s.catalog.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: service %s", runtime.ErrNotFound, name)
	}
	return s.rt.Create(ctx, svc.Spec())
}

// Ping checks daemon reachability.
func (s *Service) Ping(ctx context.Context) error {
	return s.rt.Ping(ctx)
}

// inventory fetches the live container set for a batch operation. A
// listing failure degrades to an empty inventory by design: the
// dashboard stays available even when the daemon briefly is not. The
// degradation is observable through the returned flag and a warn log.
func (s *Service) inventory(ctx context.Context) ([]models.ContainerSummary, bool) {
	inventory, err := s.rt.ListAll(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("inventory listing failed, proceeding with empty target set")
		return nil, true
	}
	return inventory, false
}

// execute fans the action out over targets with bounded concurrency and
// aggregates the per-item outcomes.
func (s *Service) execute(ctx context.Context, action Action, targets []models.ContainerSummary, degraded bool) (*models.BulkActionResult, error) {
	opID := uuid.NewString()

	results, err := pool.ForEach(ctx, targets, s.workers, func(ctx context.Context, c models.ContainerSummary) error {
		return s.apply(ctx, action, c.ID)
	})
	if err != nil {
		return nil, err
	}

	result := &models.BulkActionResult{
		OperationID: opID,
		Action:      string(action),
		Total:       len(targets),
		Succeeded:   make([]string, 0, len(targets)),
		Failed:      make([]models.ActionFailure, 0),
		Degraded:    degraded,
	}

	for _, r := range results {
		if r.Err != nil {
			result.Failed = append(result.Failed, models.ActionFailure{
				ID:    r.Item.ID,
				Name:  r.Item.Name,
				Error: r.Err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, r.Item.ID)
	}

	s.log.Info().
		Str("operation_id", opID).
		Str("action", string(action)).
		Int("total", result.Total).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Bool("degraded", result.Degraded).
		Msg("bulk action completed")

	return result, nil
}

func (s *Service) apply(ctx context.Context, action Action, id string) error {
	switch action {
	case ActionStart:
		return s.rt.Start(ctx, id)
	case ActionStop:
		return s.rt.Stop(ctx, id)
	case ActionRestart:
		return s.rt.Restart(ctx, id)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
}
