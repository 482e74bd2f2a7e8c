package ports

import (
	"context"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// Access is the result of resolving a caller against an organization.
type Access struct {
	User         *domain.User
	Membership   *domain.Membership
	Organization *domain.Organization
	Role         string
}

// HasRole reports whether the resolved role is one of roles.
func (a *Access) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// AccessChecker gates every organization-scoped operation.
type AccessChecker interface {
	// ResolveAccess fails with ErrUnauthenticated, then a not-found error for
	// the user or organization, then ErrForbidden when no membership exists.
	ResolveAccess(ctx context.Context, id Identity, orgID string) (*Access, error)
	// RequireFeature resolves access and additionally fails with
	// ErrPlanRestricted when the organization's plan lacks feature.
	RequireFeature(ctx context.Context, id Identity, orgID string, feature domain.Feature) (*Access, error)
}

// CurrentUser is the caller's profile with their organizations.
type CurrentUser struct {
	User          *domain.User
	Organizations []*domain.Organization
	Memberships   []*domain.Membership
}

// Member is one row of an organization's member list.
type Member struct {
	UserID       string
	Name         string
	MembershipID string
	Role         string
}

// OrganizationDetails is an organization together with its sorted members.
type OrganizationDetails struct {
	Organization *domain.Organization
	Members      []Member
}

// CreateOrganizationInput carries the data needed to create an organization.
type CreateOrganizationInput struct {
	Name       string
	BillingRef string
}

// OrganizationService covers users, organizations and memberships.
type OrganizationService interface {
	AccessChecker

	EnsureUser(ctx context.Context, id Identity) (*domain.User, error)
	CurrentUser(ctx context.Context, id Identity) (*CurrentUser, error)
	CreateOrganization(ctx context.Context, id Identity, in CreateOrganizationInput) (*domain.Organization, error)
	OrganizationDetails(ctx context.Context, id Identity, orgID string) (*OrganizationDetails, error)
	RenameOrganization(ctx context.Context, id Identity, orgID, name string) (*domain.Organization, error)
	AddMember(ctx context.Context, id Identity, orgID, userID string) (*domain.Membership, error)
	UpdateRole(ctx context.Context, id Identity, membershipID, role string) (*domain.Membership, error)
	RemoveMember(ctx context.Context, id Identity, membershipID string) error
}
