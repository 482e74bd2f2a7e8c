package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// OrganizationService implements access control and organization management.
type OrganizationService struct {
	users       ports.UserRepository
	orgs        ports.OrganizationRepository
	memberships ports.MembershipRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewOrganizationService returns an OrganizationService.
func NewOrganizationService(
	users ports.UserRepository,
	orgs ports.OrganizationRepository,
	memberships ports.MembershipRepository,
	log zerolog.Logger,
) *OrganizationService {
	return &OrganizationService{
		users:       users,
		orgs:        orgs,
		memberships: memberships,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.OrganizationService = (*OrganizationService)(nil)

// ResolveAccess resolves the caller's membership in orgID.
func (s *OrganizationService) ResolveAccess(ctx context.Context, id ports.Identity, orgID string) (*ports.Access, error) {
	return resolveAccess(ctx, s.users, s.orgs, s.memberships, id, orgID)
}

// RequireFeature resolves access and checks the plan entitlement.
func (s *OrganizationService) RequireFeature(ctx context.Context, id ports.Identity, orgID string, feature domain.Feature) (*ports.Access, error) {
	a, err := s.ResolveAccess(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if err := requireFeature(a, feature); err != nil {
		return nil, err
	}
	return a, nil
}

// EnsureUser creates the caller's user record on first contact.
func (s *OrganizationService) EnsureUser(ctx context.Context, id ports.Identity) (*domain.User, error) {
	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	u, created, err := s.users.CreateIfAbsent(ctx, &domain.User{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(id.Name),
		TokenIdentifier: id.TokenIdentifier,
		OrgIDs:          []string{},
		CreatedAt:       s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	if created {
		s.log.Info().Str("user_id", u.ID).Msg("user created on first contact")
	}
	return u, nil
}

// CurrentUser returns the caller with their organizations. A caller without a
// user record yet gets an empty result rather than an error.
func (s *OrganizationService) CurrentUser(ctx context.Context, id ports.Identity) (*ports.CurrentUser, error) {
	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.users.FindByTokenIdentifier(ctx, id.TokenIdentifier)
	if errors.Is(err, domain.ErrNotFound) {
		return &ports.CurrentUser{Organizations: []*domain.Organization{}, Memberships: []*domain.Membership{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	ms, err := s.memberships.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	orgIDs := make([]string, 0, len(ms))
	for _, m := range ms {
		orgIDs = append(orgIDs, m.OrgID)
	}
	orgs, err := s.orgs.FindByIDs(ctx, orgIDs)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &ports.CurrentUser{User: u, Organizations: orgs, Memberships: ms}, nil
}

// CreateOrganization creates a solo-plan organization with the caller as admin.
func (s *OrganizationService) CreateOrganization(ctx context.Context, id ports.Identity, in ports.CreateOrganizationInput) (*domain.Organization, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.InvalidInput("organization name cannot be empty")
	}
	u, err := s.EnsureUser(ctx, id)
	if err != nil {
		return nil, err
	}

	org := &domain.Organization{
		ID:         uuid.NewString(),
		Name:       name,
		Plan:       domain.PlanSolo,
		BillingRef: strings.TrimSpace(in.BillingRef),
		CreatedAt:  s.now(),
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	m := &domain.Membership{ID: uuid.NewString(), OrgID: org.ID, UserID: u.ID, Role: domain.RoleAdmin}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	if err := s.users.AddOrganization(ctx, u.ID, org.ID); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	s.log.Info().Str("org_id", org.ID).Str("user_id", u.ID).Msg("organization created")
	return org, nil
}

// OrganizationDetails returns the organization and its members sorted by name.
func (s *OrganizationService) OrganizationDetails(ctx context.Context, id ports.Identity, orgID string) (*ports.OrganizationDetails, error) {
	a, err := s.ResolveAccess(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin, domain.RoleMember); err != nil {
		return nil, err
	}

	ms, err := s.memberships.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("organization details: %w", err)
	}
	userIDs := make([]string, 0, len(ms))
	for _, m := range ms {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("organization details: %w", err)
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	members := make([]ports.Member, 0, len(ms))
	for _, m := range ms {
		u, ok := byID[m.UserID]
		if !ok {
			continue
		}
		members = append(members, ports.Member{UserID: u.ID, Name: u.Name, MembershipID: m.ID, Role: m.Role})
	}
	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(members, func(i, j int) bool {
		return col.CompareString(members[i].Name, members[j].Name) < 0
	})

	return &ports.OrganizationDetails{Organization: a.Organization, Members: members}, nil
}

// RenameOrganization changes the organization's display name.
func (s *OrganizationService) RenameOrganization(ctx context.Context, id ports.Identity, orgID, name string) (*domain.Organization, error) {
	if _, err := s.requireManager(ctx, id, orgID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.InvalidInput("organization name cannot be empty")
	}
	org, err := s.orgs.UpdateName(ctx, orgID, name)
	if err != nil {
		return nil, fmt.Errorf("rename organization: %w", err)
	}
	s.log.Info().Str("org_id", orgID).Msg("organization renamed")
	return org, nil
}

// AddMember grants userID the member role in orgID.
func (s *OrganizationService) AddMember(ctx context.Context, id ports.Identity, orgID, userID string) (*domain.Membership, error) {
	if _, err := s.requireManager(ctx, id, orgID); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	_, err = s.memberships.FindByOrgAndUser(ctx, orgID, u.ID)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyMember
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("add member: %w", err)
	}

	m := &domain.Membership{ID: uuid.NewString(), OrgID: orgID, UserID: u.ID, Role: domain.RoleMember}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	if err := s.users.AddOrganization(ctx, u.ID, orgID); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	s.log.Info().Str("org_id", orgID).Str("user_id", u.ID).Msg("member added")
	return m, nil
}

// UpdateRole changes a membership's role. Only admin and member are assignable.
func (s *OrganizationService) UpdateRole(ctx context.Context, id ports.Identity, membershipID, role string) (*domain.Membership, error) {
	m, err := s.memberships.FindByID(ctx, membershipID)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if _, err := s.requireManager(ctx, id, m.OrgID); err != nil {
		return nil, err
	}
	if !domain.ValidAssignableRole(role) {
		return nil, domain.InvalidInput(fmt.Sprintf("role %q cannot be assigned", role))
	}

	updated, err := s.memberships.UpdateRole(ctx, membershipID, role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.log.Info().Str("org_id", m.OrgID).Str("membership_id", m.ID).Str("role", role).Msg("role updated")
	return updated, nil
}

// RemoveMember deletes a membership and unlinks the organization from the user.
func (s *OrganizationService) RemoveMember(ctx context.Context, id ports.Identity, membershipID string) error {
	m, err := s.memberships.FindByID(ctx, membershipID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if _, err := s.requireManager(ctx, id, m.OrgID); err != nil {
		return err
	}

	if err := s.memberships.Delete(ctx, membershipID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if err := s.users.RemoveOrganization(ctx, m.UserID, m.OrgID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	s.log.Info().Str("org_id", m.OrgID).Str("user_id", m.UserID).Msg("member removed")
	return nil
}

// requireManager is the gate for role management: admin role first, then
// the role_management feature.
func (s *OrganizationService) requireManager(ctx context.Context, id ports.Identity, orgID string) (*ports.Access, error) {
	a, err := s.ResolveAccess(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := requireFeature(a, domain.FeatureRoleManagement); err != nil {
		return nil, err
	}
	return a, nil
}
