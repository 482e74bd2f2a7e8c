package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// JobRepository stores jobs and free-form metric records. Both collections
// are append-only.
type JobRepository struct {
	jobs    *mongo.Collection
	metrics *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{
		jobs:    db.Collection(collectionJobs),
		metrics: db.Collection(collectionMetrics),
	}
}

var _ ports.JobRepository = (*JobRepository)(nil)

var byDate = options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})

func (r *JobRepository) Create(ctx context.Context, j *domain.Job) error {
	if err := insert(ctx, r.jobs, j); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) ListByOrg(ctx context.Context, orgID string) ([]domain.Job, error) {
	jobs, err := findAll[domain.Job](ctx, r.jobs, bson.M{"org_id": orgID}, byDate)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) CreateMetric(ctx context.Context, m *domain.MetricRecord) error {
	if err := insert(ctx, r.metrics, m); err != nil {
		return fmt.Errorf("insert metric record: %w", err)
	}
	return nil
}

func (r *JobRepository) ListMetricsByOrg(ctx context.Context, orgID string) ([]domain.MetricRecord, error) {
	records, err := findAll[domain.MetricRecord](ctx, r.metrics, bson.M{"org_id": orgID}, byDate)
	if err != nil {
		return nil, fmt.Errorf("list metric records: %w", err)
	}
	return records, nil
}
