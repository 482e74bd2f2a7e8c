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

type GoalRepository struct {
	col *mongo.Collection
}

func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{col: db.Collection(collectionGoals)}
}

var _ ports.GoalRepository = (*GoalRepository)(nil)

func (r *GoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	if err := insert(ctx, r.col, g); err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) FindByID(ctx context.Context, id string) (*domain.Goal, error) {
	var g domain.Goal
	if err := findOne(ctx, r.col, bson.M{"_id": id}, &g, domain.ErrGoalNotFound); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GoalRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Goal, error) {
	goals, err := findAll[*domain.Goal](ctx, r.col, bson.M{"org_id": orgID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// Update writes the patched fields in one $set so a status change and the
// values that caused it land together.
func (r *GoalRepository) Update(ctx context.Context, id string, patch domain.GoalPatch) (*domain.Goal, error) {
	set := goalSet(patch)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	var g domain.Goal
	if err := findOneAndSet(ctx, r.col, bson.M{"_id": id}, bson.M{"$set": set}, &g, domain.ErrGoalNotFound); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GoalRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func goalSet(p domain.GoalPatch) bson.M {
	set := bson.M{}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.TargetValue != nil {
		set["target_value"] = *p.TargetValue
	}
	if p.CurrentValue != nil {
		set["current_value"] = *p.CurrentValue
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.ActionPlan != nil {
		plan := *p.ActionPlan
		if plan == nil {
			plan = []domain.ActionStep{}
		}
		set["action_plan"] = plan
	}
	return set
}
