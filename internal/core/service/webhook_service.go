package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

const (
	eventUserCreated         = "user.created"
	eventSubscriptionCreated = "subscription.created"
	eventSubscriptionUpdated = "subscription.updated"
)

// ErrIssuerNotConfigured rejects identity events when no issuer is set: the
// user would be stored under a token identifier no token can produce.
var ErrIssuerNotConfigured = errors.New("identity webhook: issuer not configured")

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID        string  `json:"id"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	} `json:"data"`
}

type billingEvent struct {
	Type string `json:"type"`
	Data struct {
		OrganizationID string `json:"organization_id"`
		PlanID         string `json:"plan_id"`
	} `json:"data"`
}

// WebhookService applies identity-provider and billing events. Both handlers
// are idempotent so that provider retries are harmless.
type WebhookService struct {
	users   ports.UserRepository
	orgs    ports.OrganizationRepository
	issuer  string
	planMap map[string]domain.Plan
	log     zerolog.Logger
	now     func() time.Time
}

// NewWebhookService returns a WebhookService. issuer prefixes the provider's
// user id to form token identifiers; planMap maps billing plan ids to plans.
func NewWebhookService(
	users ports.UserRepository,
	orgs ports.OrganizationRepository,
	issuer string,
	planMap map[string]domain.Plan,
	log zerolog.Logger,
) *WebhookService {
	return &WebhookService{
		users:   users,
		orgs:    orgs,
		issuer:  issuer,
		planMap: planMap,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.WebhookService = (*WebhookService)(nil)

// HandleIdentityEvent creates the user announced by user.created if absent.
func (s *WebhookService) HandleIdentityEvent(ctx context.Context, payload []byte) (ports.WebhookOutcome, error) {
	var ev identityEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return "", domain.InvalidInput(fmt.Sprintf("malformed identity event: %v", err))
	}
	if ev.Type != eventUserCreated {
		s.log.Debug().Str("type", ev.Type).Msg("identity event ignored")
		return ports.WebhookIgnored, nil
	}
	if ev.Data.ID == "" {
		return "", domain.InvalidInput("identity event is missing data.id")
	}
	if s.issuer == "" {
		s.log.Error().Str("subject", ev.Data.ID).Msg("identity event rejected: issuer not configured")
		return "", ErrIssuerNotConfigured
	}

	name := strings.TrimSpace(deref(ev.Data.FirstName) + " " + deref(ev.Data.LastName))
	u, created, err := s.users.CreateIfAbsent(ctx, &domain.User{
		ID:              uuid.NewString(),
		Name:            name,
		TokenIdentifier: s.issuer + "|" + ev.Data.ID,
		OrgIDs:          []string{},
		CreatedAt:       s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("identity webhook: %w", err)
	}
	if !created {
		s.log.Debug().Str("user_id", u.ID).Msg("user already exists")
		return ports.WebhookIgnored, nil
	}
	s.log.Info().Str("user_id", u.ID).Msg("user created from identity webhook")
	return ports.WebhookApplied, nil
}

// HandleBillingEvent updates an organization's plan from a subscription event.
// Unknown plan ids and billing references are logged and acknowledged.
func (s *WebhookService) HandleBillingEvent(ctx context.Context, payload []byte) (ports.WebhookOutcome, error) {
	var ev billingEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return "", domain.InvalidInput(fmt.Sprintf("malformed billing event: %v", err))
	}
	if ev.Type != eventSubscriptionCreated && ev.Type != eventSubscriptionUpdated {
		s.log.Debug().Str("type", ev.Type).Msg("billing event ignored")
		return ports.WebhookIgnored, nil
	}
	if ev.Data.OrganizationID == "" || ev.Data.PlanID == "" {
		s.log.Warn().Str("type", ev.Type).Msg("billing event missing organization_id or plan_id")
		return ports.WebhookIgnored, nil
	}

	plan, ok := s.planMap[ev.Data.PlanID]
	if !ok {
		s.log.Warn().Str("plan_id", ev.Data.PlanID).Msg("unknown billing plan id")
		return ports.WebhookIgnored, nil
	}

	org, err := s.orgs.UpdatePlanByBillingRef(ctx, ev.Data.OrganizationID, plan)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Error().Str("billing_ref", ev.Data.OrganizationID).Msg("no organization for billing reference")
		return ports.WebhookIgnored, nil
	}
	if err != nil {
		return "", fmt.Errorf("billing webhook: %w", err)
	}
	s.log.Info().Str("org_id", org.ID).Str("plan", string(plan)).Msg("organization plan updated")
	return ports.WebhookApplied, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
