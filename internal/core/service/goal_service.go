package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
	"github.com/detailiq/dashboard-system/internal/pkg/metrics"
)

// GoalService implements goal CRUD and the status state machine.
type GoalService struct {
	access ports.AccessChecker
	repo   ports.GoalRepository
	log    zerolog.Logger
	now    func() time.Time
}

// NewGoalService returns a GoalService.
func NewGoalService(access ports.AccessChecker, repo ports.GoalRepository, log zerolog.Logger) *GoalService {
	return &GoalService{
		access: access,
		repo:   repo,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.GoalService = (*GoalService)(nil)

// CreateGoal creates a goal. The goal starts completed when current already
// meets target.
func (s *GoalService) CreateGoal(ctx context.Context, id ports.Identity, in ports.CreateGoalInput) (*domain.Goal, error) {
	a, err := s.access.ResolveAccess(ctx, id, in.OrgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin); err != nil {
		return nil, err
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, domain.InvalidInput("description must not be empty")
	}
	if err := domain.ValidateGoalValues(in.TargetValue, in.CurrentValue); err != nil {
		return nil, err
	}

	g := &domain.Goal{
		ID:           uuid.NewString(),
		OrgID:        in.OrgID,
		Description:  desc,
		TargetValue:  in.TargetValue,
		CurrentValue: in.CurrentValue,
		Status:       domain.InitialGoalStatus(in.CurrentValue, in.TargetValue),
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, g); err != nil {
		s.log.Error().Err(err).Str("org_id", in.OrgID).Msg("failed to create goal")
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.log.Info().Str("goal_id", g.ID).Str("org_id", g.OrgID).Str("status", string(g.Status)).Msg("goal created")
	return g, nil
}

// GetGoal returns a goal to any member of its organization.
func (s *GoalService) GetGoal(ctx context.Context, id ports.Identity, goalID string) (*domain.Goal, error) {
	g, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	if _, err := s.access.ResolveAccess(ctx, id, g.OrgID); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGoal merges patch into the goal, applying the auto-completion rule.
func (s *GoalService) UpdateGoal(ctx context.Context, id ports.Identity, goalID string, patch domain.GoalPatch) (*domain.Goal, error) {
	return s.update(ctx, id, goalID, patch, false)
}

// DeleteGoal removes a goal.
func (s *GoalService) DeleteGoal(ctx context.Context, id ports.Identity, goalID string) error {
	g, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	a, err := s.access.ResolveAccess(ctx, id, g.OrgID)
	if err != nil {
		return err
	}
	if err := requireRole(a, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, goalID); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.log.Info().Str("goal_id", goalID).Str("org_id", g.OrgID).Msg("goal deleted")
	return nil
}

// update is the single write path for goals. Silent saves (plan step edits)
// log at debug level only.
func (s *GoalService) update(ctx context.Context, id ports.Identity, goalID string, patch domain.GoalPatch, silent bool) (*domain.Goal, error) {
	g, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	a, err := s.access.ResolveAccess(ctx, id, g.OrgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin, domain.RoleMember); err != nil {
		return nil, err
	}

	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		patch.Description = &desc
	}
	resolved, err := g.Resolve(patch)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, goalID, resolved)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}

	if updated.Status != g.Status {
		cause := "explicit"
		if patch.Status == nil {
			cause = "auto"
		}
		metrics.GoalTransitionsTotal.WithLabelValues(string(g.Status), string(updated.Status), cause).Inc()
	}

	ev := s.log.Info()
	if silent {
		ev = s.log.Debug()
	}
	ev.Str("goal_id", goalID).Str("status", string(updated.Status)).Msg("goal updated")
	return updated, nil
}
