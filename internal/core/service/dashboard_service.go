package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/core/analytics"
	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// DashboardService assembles the per-organization dashboard.
type DashboardService struct {
	access ports.AccessChecker
	goals  ports.GoalRepository
	jobs   ports.JobRepository
	log    zerolog.Logger
}

// NewDashboardService returns a DashboardService.
func NewDashboardService(access ports.AccessChecker, goals ports.GoalRepository, jobs ports.JobRepository, log zerolog.Logger) *DashboardService {
	return &DashboardService{access: access, goals: goals, jobs: jobs, log: log}
}

var _ ports.DashboardService = (*DashboardService)(nil)

// GetDashboard returns goals (active first, newest first), jobs, metric
// records and chart data. Callers without the admin or member role get nil.
func (s *DashboardService) GetDashboard(ctx context.Context, id ports.Identity, orgID string) (*ports.Dashboard, error) {
	a, err := s.access.ResolveAccess(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if !a.HasRole(domain.RoleAdmin, domain.RoleMember) {
		return nil, nil
	}

	goals, err := s.goals.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	jobs, err := s.jobs.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	records, err := s.jobs.ListMetricsByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	sort.SliceStable(goals, func(i, j int) bool {
		ai, aj := goals[i].Status == domain.GoalActive, goals[j].Status == domain.GoalActive
		if ai != aj {
			return ai
		}
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})

	return &ports.Dashboard{
		Goals:     goals,
		Jobs:      jobs,
		Metrics:   records,
		ChartData: analytics.Aggregate(jobs),
	}, nil
}
