package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// requireRole fails with ErrForbidden unless the resolved role is one of roles.
func requireRole(a *ports.Access, roles ...string) error {
	if a.HasRole(roles...) {
		return nil
	}
	return fmt.Errorf("%w: role %q may not perform this action", domain.ErrForbidden, a.Role)
}

// requireFeature fails with ErrPlanRestricted unless the organization's plan
// includes feature.
func requireFeature(a *ports.Access, feature domain.Feature) error {
	if a.Organization.Plan.Includes(feature) {
		return nil
	}
	return fmt.Errorf("%w: %s is not available on the %s plan", domain.ErrPlanRestricted, feature, a.Organization.Plan)
}

// resolveAccess implements the lookup chain shared by every gated operation.
func resolveAccess(
	ctx context.Context,
	users ports.UserRepository,
	orgs ports.OrganizationRepository,
	memberships ports.MembershipRepository,
	id ports.Identity,
	orgID string,
) (*ports.Access, error) {
	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	user, err := users.FindByTokenIdentifier(ctx, id.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	org, err := orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	m, err := memberships.FindByOrgAndUser(ctx, org.ID, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: not a member of this organization", domain.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}

	return &ports.Access{User: user, Membership: m, Organization: org, Role: m.Role}, nil
}
