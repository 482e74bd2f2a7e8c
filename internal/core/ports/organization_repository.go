package ports

import (
	"context"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// OrganizationRepository defines persistence operations for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	FindByID(ctx context.Context, id string) (*domain.Organization, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error)
	UpdateName(ctx context.Context, id, name string) (*domain.Organization, error)
	// UpdatePlanByBillingRef sets the plan of the organization linked to an
	// external billing reference.
	UpdatePlanByBillingRef(ctx context.Context, billingRef string, plan domain.Plan) (*domain.Organization, error)
}

// MembershipRepository defines persistence operations for memberships.
// (org_id, user_id) is unique.
type MembershipRepository interface {
	Create(ctx context.Context, m *domain.Membership) error
	FindByID(ctx context.Context, id string) (*domain.Membership, error)
	FindByOrgAndUser(ctx context.Context, orgID, userID string) (*domain.Membership, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	UpdateRole(ctx context.Context, id, role string) (*domain.Membership, error)
	Delete(ctx context.Context, id string) error
}
