package dashboard

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entity id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence port for dashboard entities
type Store interface {
	ListAgents(ctx context.Context) ([]*Agent, error)
	GetAgent(ctx context.Context, id int64) (*Agent, error)
	UpdateAgent(ctx context.Context, id int64, patch AgentPatch) (*Agent, error)

	ListPhases(ctx context.Context) ([]*Phase, error)
	ListRepositories(ctx context.Context) ([]*CodeRepository, error)
	ListServices(ctx context.Context) ([]*ServiceHealth, error)
	ListWorkflows(ctx context.Context) ([]*Workflow, error)

	RecentActivities(ctx context.Context, limit int) ([]*Activity, error)
	CreateActivity(ctx context.Context, title, kind string) (*Activity, error)
}
