package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
	"github.com/detailiq/dashboard-system/internal/pkg/metrics"
)

// JobService is the append-only write path feeding analytics.
type JobService struct {
	access ports.AccessChecker
	repo   ports.JobRepository
	log    zerolog.Logger
	now    func() time.Time
}

// NewJobService returns a JobService.
func NewJobService(access ports.AccessChecker, repo ports.JobRepository, log zerolog.Logger) *JobService {
	return &JobService{
		access: access,
		repo:   repo,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.JobService = (*JobService)(nil)

// CreateJob logs a completed job.
func (s *JobService) CreateJob(ctx context.Context, id ports.Identity, in ports.CreateJobInput) (*domain.Job, error) {
	a, err := s.access.ResolveAccess(ctx, id, in.OrgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin, domain.RoleMember); err != nil {
		return nil, err
	}

	jobType := strings.TrimSpace(in.Type)
	source := strings.TrimSpace(in.LeadSource)
	switch {
	case jobType == "":
		return nil, domain.InvalidInput("job type must not be empty")
	case source == "":
		return nil, domain.InvalidInput("lead source must not be empty")
	case !(in.Value > 0) || math.IsInf(in.Value, 0):
		return nil, domain.InvalidInput("job value must be a positive number")
	case !domain.ValidDate(in.Date):
		return nil, domain.InvalidInput("date must be a calendar date in YYYY-MM-DD format")
	}

	j := &domain.Job{
		ID:         uuid.NewString(),
		OrgID:      in.OrgID,
		Type:       jobType,
		Value:      in.Value,
		LeadSource: source,
		Date:       in.Date,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, j); err != nil {
		s.log.Error().Err(err).Str("org_id", in.OrgID).Msg("failed to create job")
		return nil, fmt.Errorf("create job: %w", err)
	}

	metrics.JobsCreatedTotal.WithLabelValues(j.LeadSource).Inc()
	s.log.Info().Str("job_id", j.ID).Str("org_id", j.OrgID).Msg("job created")
	return j, nil
}

// RecordMetric stores a free-form metric record such as marketing spend.
func (s *JobService) RecordMetric(ctx context.Context, id ports.Identity, in ports.RecordMetricInput) (*domain.MetricRecord, error) {
	a, err := s.access.ResolveAccess(ctx, id, in.OrgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin, domain.RoleMember); err != nil {
		return nil, err
	}

	dataType := strings.TrimSpace(in.DataType)
	switch {
	case dataType == "":
		return nil, domain.InvalidInput("data type must not be empty")
	case math.IsNaN(in.Value) || math.IsInf(in.Value, 0):
		return nil, domain.InvalidInput("value must be a finite number")
	case !domain.ValidDate(in.Date):
		return nil, domain.InvalidInput("date must be a calendar date in YYYY-MM-DD format")
	}

	m := &domain.MetricRecord{
		ID:        uuid.NewString(),
		OrgID:     in.OrgID,
		DataType:  dataType,
		Value:     in.Value,
		Date:      in.Date,
		Details:   in.Details,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateMetric(ctx, m); err != nil {
		return nil, fmt.Errorf("record metric: %w", err)
	}
	s.log.Info().Str("metric_id", m.ID).Str("org_id", m.OrgID).Str("data_type", m.DataType).Msg("metric recorded")
	return m, nil
}
