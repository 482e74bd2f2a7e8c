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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := findOne(ctx, r.col, bson.M{"_id": id}, &u, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByTokenIdentifier(ctx context.Context, tokenIdentifier string) (*domain.User, error) {
	var u domain.User
	if err := findOne(ctx, r.col, bson.M{"token_identifier": tokenIdentifier}, &u, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := findAll[*domain.User](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

// CreateIfAbsent upserts on token_identifier with $setOnInsert, so replays and
// concurrent first logins converge on one document.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	orgIDs := user.OrgIDs
	if orgIDs == nil {
		orgIDs = []string{}
	}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        user.ID,
		"name":       user.Name,
		"org_ids":    orgIDs,
		"created_at": user.CreatedAt,
	}}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	res, err := r.col.UpdateOne(opCtx, bson.M{"token_identifier": user.TokenIdentifier}, update, options.Update().SetUpsert(true))
	cancel()
	// Two concurrent upserts can both miss and one then trips the unique index.
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, false, fmt.Errorf("upsert user: %w", err)
	}

	stored, err := r.FindByTokenIdentifier(ctx, user.TokenIdentifier)
	if err != nil {
		return nil, false, err
	}
	return stored, res != nil && res.UpsertedCount == 1, nil
}

func (r *UserRepository) AddOrganization(ctx context.Context, userID, orgID string) error {
	return r.updateOrgs(ctx, userID, bson.M{"$addToSet": bson.M{"org_ids": orgID}})
}

func (r *UserRepository) RemoveOrganization(ctx context.Context, userID, orgID string) error {
	return r.updateOrgs(ctx, userID, bson.M{"$pull": bson.M{"org_ids": orgID}})
}

func (r *UserRepository) updateOrgs(ctx context.Context, userID string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("update user organizations: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
