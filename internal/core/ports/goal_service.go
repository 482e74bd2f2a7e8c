package ports

import (
	"context"

	"github.com/detailiq/dashboard-system/internal/core/analytics"
	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// CreateGoalInput carries the data needed to create a goal.
type CreateGoalInput struct {
	OrgID        string
	Description  string
	TargetValue  float64
	CurrentValue float64
}

// GoalService defines use-case operations for goals.
type GoalService interface {
	CreateGoal(ctx context.Context, id Identity, in CreateGoalInput) (*domain.Goal, error)
	GetGoal(ctx context.Context, id Identity, goalID string) (*domain.Goal, error)
	UpdateGoal(ctx context.Context, id Identity, goalID string, patch domain.GoalPatch) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, id Identity, goalID string) error
}

// CreateJobInput carries the data needed to log a job.
type CreateJobInput struct {
	OrgID      string
	Type       string
	Value      float64
	LeadSource string
	Date       string
}

// RecordMetricInput carries a free-form metric record.
type RecordMetricInput struct {
	OrgID    string
	DataType string
	Value    float64
	Date     string
	Details  map[string]any
}

// JobService defines the append-only write path for jobs and metrics.
type JobService interface {
	CreateJob(ctx context.Context, id Identity, in CreateJobInput) (*domain.Job, error)
	RecordMetric(ctx context.Context, id Identity, in RecordMetricInput) (*domain.MetricRecord, error)
}

// Dashboard is the aggregate view of one organization.
type Dashboard struct {
	Goals     []*domain.Goal
	Jobs      []domain.Job
	Metrics   []domain.MetricRecord
	ChartData analytics.ChartData
}

// DashboardService builds the dashboard. It returns a nil dashboard and no
// error for members whose role does not grant dashboard access.
type DashboardService interface {
	GetDashboard(ctx context.Context, id Identity, orgID string) (*Dashboard, error)
}
