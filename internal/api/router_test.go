package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detailiq/dashboard-system/internal/api/handler"
	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

const (
	routerSecret = "router-secret"
	routerIssuer = "https://issuer"
)

// meOnlyOrgs serves GET /v1/me; every other method panics through the nil
// embedded interface.
type meOnlyOrgs struct {
	ports.OrganizationService
	seen ports.Identity
}

func (s *meOnlyOrgs) EnsureUser(_ context.Context, id ports.Identity) (*domain.User, error) {
	s.seen = id
	return &domain.User{ID: "u1", Name: id.Name, TokenIdentifier: id.TokenIdentifier}, nil
}

func (s *meOnlyOrgs) CurrentUser(_ context.Context, id ports.Identity) (*ports.CurrentUser, error) {
	return &ports.CurrentUser{User: &domain.User{ID: "u1", Name: id.Name, TokenIdentifier: id.TokenIdentifier}}, nil
}

type rejectAll struct{}

func (rejectAll) Verify([]byte, http.Header) error { return errors.New("no matching signature") }

func routerToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  "user_1",
		"iss":  routerIssuer,
		"name": "Ada",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(routerSecret))
	require.NoError(t, err)
	return s
}

// The router registers Prometheus collectors on the default registry, so it
// is built once and shared by the subtests.
func TestNewRouter(t *testing.T) {
	orgs := &meOnlyOrgs{}
	e := NewRouter(Dependencies{
		Organizations:    orgs,
		IdentityVerifier: rejectAll{},
		BillingVerifier:  rejectAll{},
		HealthChecks: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(context.Context) error { return nil }),
		},
		JWTSecret: routerSecret,
		Issuer:    routerIssuer,
	}, zerolog.Nop())

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("routes", func(t *testing.T) {
		registered := map[string]bool{}
		for _, r := range e.Routes() {
			registered[r.Method+" "+r.Path] = true
		}
		for _, want := range []string{
			"GET /v1/me",
			"POST /v1/orgs",
			"PATCH /v1/memberships/:id",
			"GET /v1/orgs/:org_id/dashboard",
			"PATCH /v1/goals/:id/plan/steps/:index",
			"GET /v1/orgs/:org_id/knowledge/search",
			"POST /v1/threads/:id/suggestion",
			"POST /webhooks/identity",
			"POST /webhooks/billing",
			"GET /health/ready",
			"GET /metrics",
		} {
			assert.True(t, registered[want], "missing route %s", want)
		}
	})

	t.Run("liveness", func(t *testing.T) {
		rec := serve(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readiness", func(t *testing.T) {
		rec := serve(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("v1 requires a token", func(t *testing.T) {
		rec := serve(httptest.NewRequest(http.MethodGet, "/v1/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"missing authorization header"}`, rec.Body.String())
	})

	t.Run("me with token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+routerToken(t))
		rec := serve(req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "https://issuer|user_1", orgs.seen.TokenIdentifier)
		assert.Contains(t, rec.Body.String(), `"name":"Ada"`)
	})

	t.Run("unsigned webhook", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", strings.NewReader(`{"type":"subscription.created"}`))
		rec := serve(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "dashboard_requests_total")
	})
}
