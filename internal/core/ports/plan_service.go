package ports

import (
	"context"
	"time"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// StepPatch is a partial edit of a single action step.
type StepPatch struct {
	Description *string
	Completed   *bool
	DueDate     *string
	Notes       *string
}

// PlanService generates and edits goal action plans.
type PlanService interface {
	// GeneratePlan returns the cached plan for goalID or generates a new one.
	GeneratePlan(ctx context.Context, id Identity, goalID string) ([]domain.ActionStep, error)
	// UpdateStep replaces the step at index through the generic goal update path.
	UpdateStep(ctx context.Context, id Identity, goalID string, index int, patch StepPatch) (*domain.Goal, error)
}

// PlanCache stores generated plans keyed by goal id.
type PlanCache interface {
	// Get returns the cached plan and true, or false on a miss.
	Get(ctx context.Context, goalID string) ([]domain.ActionStep, bool, error)
	Set(ctx context.Context, goalID string, steps []domain.ActionStep, ttl time.Duration) error
}
