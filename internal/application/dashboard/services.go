package dashboard

import (
	"context"
	"fmt"

	domain "github.com/fanoo2/backend/internal/domain/dashboard"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 100
)

// Service exposes the dashboard read model and the few writes it allows
type Service struct {
	Store domain.Store
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	agents, err := s.Store.ListAgents(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("list agents: %w", err)
	}
	phases, err := s.Store.ListPhases(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("list phases: %w", err)
	}
	return domain.ComputeStats(agents, phases), nil
}

func (s *Service) Agents(ctx context.Context) ([]*domain.Agent, error) {
	return s.Store.ListAgents(ctx)
}

func (s *Service) Agent(ctx context.Context, id int64) (*domain.Agent, error) {
	return s.Store.GetAgent(ctx, id)
}

// UpdateAgent expects an already validated patch.
func (s *Service) UpdateAgent(ctx context.Context, id int64, patch domain.AgentPatch) (*domain.Agent, error) {
	a, err := s.Store.UpdateAgent(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		title := fmt.Sprintf("%s status changed to %s", a.Name, a.Status)
		if _, err := s.Store.CreateActivity(ctx, title, activityFor(a.Status)); err != nil {
			return nil, fmt.Errorf("record activity: %w", err)
		}
	}
	return a, nil
}

func activityFor(status string) string {
	switch status {
	case domain.StatusActive:
		return domain.ActivitySuccess
	case domain.StatusError:
		return domain.ActivityError
	default:
		return domain.ActivityInfo
	}
}

func (s *Service) Phases(ctx context.Context) ([]*domain.Phase, error) {
	return s.Store.ListPhases(ctx)
}

func (s *Service) Repositories(ctx context.Context) ([]*domain.CodeRepository, error) {
	return s.Store.ListRepositories(ctx)
}

func (s *Service) Services(ctx context.Context) ([]*domain.ServiceHealth, error) {
	return s.Store.ListServices(ctx)
}

func (s *Service) Workflows(ctx context.Context) ([]*domain.Workflow, error) {
	return s.Store.ListWorkflows(ctx)
}

// Activities returns the newest activities; limit defaults to 10 and is capped at 100.
func (s *Service) Activities(ctx context.Context, limit int) ([]*domain.Activity, error) {
	switch {
	case limit <= 0:
		limit = defaultActivityLimit
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}
	return s.Store.RecentActivities(ctx, limit)
}

func (s *Service) RecordActivity(ctx context.Context, title, kind string) (*domain.Activity, error) {
	return s.Store.CreateActivity(ctx, title, kind)
}
