package ports

import (
	"context"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// GoalRepository defines persistence operations for goals.
type GoalRepository interface {
	Create(ctx context.Context, g *domain.Goal) error
	FindByID(ctx context.Context, id string) (*domain.Goal, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Goal, error)
	// Update applies patch as a single-document write and returns the fresh goal.
	Update(ctx context.Context, id string, patch domain.GoalPatch) (*domain.Goal, error)
	Delete(ctx context.Context, id string) error
}

// JobRepository is the append-only store of jobs and metric records.
type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) error
	ListByOrg(ctx context.Context, orgID string) ([]domain.Job, error)
	CreateMetric(ctx context.Context, m *domain.MetricRecord) error
	ListMetricsByOrg(ctx context.Context, orgID string) ([]domain.MetricRecord, error)
}
