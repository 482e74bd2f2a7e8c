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

type OrganizationRepository struct {
	col *mongo.Collection
}

func NewOrganizationRepository(db *mongo.Database) *OrganizationRepository {
	return &OrganizationRepository{col: db.Collection(collectionOrganizations)}
}

var _ ports.OrganizationRepository = (*OrganizationRepository)(nil)

func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if err := insert(ctx, r.col, org); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: billing reference already linked to another organization", domain.ErrConflict)
		}
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*domain.Organization, error) {
	var o domain.Organization
	if err := findOne(ctx, r.col, bson.M{"_id": id}, &o, domain.ErrOrganizationNotFound); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	orgs, err := findAll[*domain.Organization](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find organizations: %w", err)
	}
	return orgs, nil
}

func (r *OrganizationRepository) UpdateName(ctx context.Context, id, name string) (*domain.Organization, error) {
	var o domain.Organization
	err := findOneAndSet(ctx, r.col, bson.M{"_id": id}, bson.M{"$set": bson.M{"name": name}}, &o, domain.ErrOrganizationNotFound)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepository) UpdatePlanByBillingRef(ctx context.Context, billingRef string, plan domain.Plan) (*domain.Organization, error) {
	var o domain.Organization
	err := findOneAndSet(ctx, r.col, bson.M{"billing_ref": billingRef}, bson.M{"$set": bson.M{"plan": plan}}, &o, domain.ErrOrganizationNotFound)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

type MembershipRepository struct {
	col *mongo.Collection
}

func NewMembershipRepository(db *mongo.Database) *MembershipRepository {
	return &MembershipRepository{col: db.Collection(collectionMemberships)}
}

var _ ports.MembershipRepository = (*MembershipRepository)(nil)

// Create inserts m. The unique (org_id, user_id) index turns a second
// membership for the same pair into ErrAlreadyMember.
func (r *MembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	if err := insert(ctx, r.col, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) FindByID(ctx context.Context, id string) (*domain.Membership, error) {
	var m domain.Membership
	if err := findOne(ctx, r.col, bson.M{"_id": id}, &m, domain.ErrMembershipNotFound); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) FindByOrgAndUser(ctx context.Context, orgID, userID string) (*domain.Membership, error) {
	var m domain.Membership
	if err := findOne(ctx, r.col, bson.M{"org_id": orgID, "user_id": userID}, &m, domain.ErrMembershipNotFound); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	ms, err := findAll[*domain.Membership](ctx, r.col, bson.M{"org_id": orgID})
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return ms, nil
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	ms, err := findAll[*domain.Membership](ctx, r.col, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return ms, nil
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, id, role string) (*domain.Membership, error) {
	var m domain.Membership
	err := findOneAndSet(ctx, r.col, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}}, &m, domain.ErrMembershipNotFound)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}
