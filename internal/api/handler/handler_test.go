package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

var testIdentity = ports.Identity{TokenIdentifier: "https://issuer|u1", Name: "Ada"}

// newCtx builds an echo context with the validator installed and the
// identity the Auth middleware would have injected.
func newCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("identity", testIdentity)
	return c, rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

// --- stubs ---

type stubGoalService struct {
	updateFn func(ctx context.Context, id ports.Identity, goalID string, p domain.GoalPatch) (*domain.Goal, error)
}

func (s *stubGoalService) CreateGoal(_ context.Context, _ ports.Identity, in ports.CreateGoalInput) (*domain.Goal, error) {
	return &domain.Goal{ID: "g1", OrgID: in.OrgID, Description: in.Description, TargetValue: in.TargetValue, Status: domain.GoalActive}, nil
}

func (s *stubGoalService) GetGoal(context.Context, ports.Identity, string) (*domain.Goal, error) {
	return nil, domain.ErrGoalNotFound
}

func (s *stubGoalService) UpdateGoal(ctx context.Context, id ports.Identity, goalID string, p domain.GoalPatch) (*domain.Goal, error) {
	return s.updateFn(ctx, id, goalID, p)
}

func (s *stubGoalService) DeleteGoal(context.Context, ports.Identity, string) error { return nil }

type stubPlanService struct {
	gotIndex int
	gotPatch ports.StepPatch
}

func (s *stubPlanService) GeneratePlan(context.Context, ports.Identity, string) ([]domain.ActionStep, error) {
	return []domain.ActionStep{{Description: "Post a winter promo"}}, nil
}

func (s *stubPlanService) UpdateStep(_ context.Context, _ ports.Identity, goalID string, index int, p ports.StepPatch) (*domain.Goal, error) {
	s.gotIndex, s.gotPatch = index, p
	return &domain.Goal{ID: goalID}, nil
}

type stubDashboardService struct {
	dash *ports.Dashboard
}

func (s *stubDashboardService) GetDashboard(context.Context, ports.Identity, string) (*ports.Dashboard, error) {
	return s.dash, nil
}

type stubJobService struct {
	got ports.CreateJobInput
}

func (s *stubJobService) CreateJob(_ context.Context, _ ports.Identity, in ports.CreateJobInput) (*domain.Job, error) {
	s.got = in
	return &domain.Job{ID: "j1", OrgID: in.OrgID, Type: in.Type, Value: in.Value, LeadSource: in.LeadSource, Date: in.Date}, nil
}

func (s *stubJobService) RecordMetric(_ context.Context, _ ports.Identity, in ports.RecordMetricInput) (*domain.MetricRecord, error) {
	return &domain.MetricRecord{ID: "r1", OrgID: in.OrgID}, nil
}

type stubAdvisorService struct {
	sent string
}

func (s *stubAdvisorService) CreateThread(_ context.Context, _ ports.Identity, orgID, title string) (*domain.Thread, error) {
	return &domain.Thread{ID: "t1", OrgID: orgID, Title: title}, nil
}

func (s *stubAdvisorService) SendMessage(_ context.Context, _ ports.Identity, threadID, content string) (*domain.Message, error) {
	s.sent = content
	return &domain.Message{ID: "m1", ThreadID: threadID, Role: domain.MessageRoleUser, Content: content}, nil
}

func (s *stubAdvisorService) ListMessages(context.Context, ports.Identity, string) ([]*domain.Message, error) {
	return nil, domain.ErrThreadNotFound
}

func (s *stubAdvisorService) SuggestNextQuestion(context.Context, ports.Identity, string) (string, error) {
	return "Which lead source converts best?", nil
}

type stubWebhookService struct {
	outcome ports.WebhookOutcome
	err     error
	payload string
}

func (s *stubWebhookService) HandleIdentityEvent(_ context.Context, payload []byte) (ports.WebhookOutcome, error) {
	s.payload = string(payload)
	return s.outcome, s.err
}

func (s *stubWebhookService) HandleBillingEvent(_ context.Context, payload []byte) (ports.WebhookOutcome, error) {
	s.payload = string(payload)
	return s.outcome, s.err
}

// --- goals and plans ---

func TestGoalHandler_Update_MapsPatch(t *testing.T) {
	var got domain.GoalPatch
	goals := &stubGoalService{updateFn: func(_ context.Context, id ports.Identity, goalID string, p domain.GoalPatch) (*domain.Goal, error) {
		if id != testIdentity || goalID != "g1" {
			t.Fatalf("unexpected args: %+v %s", id, goalID)
		}
		got = p
		return &domain.Goal{ID: goalID, Status: domain.GoalCompleted}, nil
	}}
	h := NewGoalHandler(goals, &stubPlanService{})

	c, rec := newCtx(http.MethodPatch, "/v1/goals/g1", `{"current_value":5000,"action_plan":[{"description":"Call fleet clients","due_date":"2024-08-01"}]}`)
	c.SetParamNames("id")
	c.SetParamValues("g1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.CurrentValue == nil || *got.CurrentValue != 5000 {
		t.Fatalf("current value not mapped: %+v", got)
	}
	if got.TargetValue != nil || got.Status != nil || got.Description != nil {
		t.Fatalf("absent fields must stay nil: %+v", got)
	}
	if got.ActionPlan == nil || len(*got.ActionPlan) != 1 || (*got.ActionPlan)[0].DueDate != "2024-08-01" {
		t.Fatalf("action plan not mapped: %+v", got.ActionPlan)
	}
}

func TestGoalHandler_Update_ValidationErrors(t *testing.T) {
	h := NewGoalHandler(&stubGoalService{}, &stubPlanService{})
	cases := map[string]string{
		"bad status":   `{"status":"paused"}`,
		"zero target":  `{"target_value":0}`,
		"negative":     `{"current_value":-1}`,
		"bad due date": `{"action_plan":[{"description":"x","due_date":"08/01/2024"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newCtx(http.MethodPatch, "/v1/goals/g1", body)
			if code := httpCode(t, h.Update(c)); code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", code)
			}
		})
	}
}

func TestGoalHandler_Get_PassesDomainError(t *testing.T) {
	h := NewGoalHandler(&stubGoalService{}, &stubPlanService{})
	c, _ := newCtx(http.MethodGet, "/v1/goals/missing", "")
	if err := h.Get(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGoalHandler_GeneratePlan(t *testing.T) {
	h := NewGoalHandler(&stubGoalService{}, &stubPlanService{})
	c, rec := newCtx(http.MethodPost, "/v1/goals/g1/plan", "")
	c.SetParamNames("id")
	c.SetParamValues("g1")

	if err := h.GeneratePlan(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp planResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.GoalID != "g1" || len(resp.Steps) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGoalHandler_UpdateStep(t *testing.T) {
	plans := &stubPlanService{}
	h := NewGoalHandler(&stubGoalService{}, plans)

	c, rec := newCtx(http.MethodPatch, "/v1/goals/g1/plan/steps/2", `{"completed":true}`)
	c.SetParamNames("id", "index")
	c.SetParamValues("g1", "2")
	if err := h.UpdateStep(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || plans.gotIndex != 2 || plans.gotPatch.Completed == nil || !*plans.gotPatch.Completed {
		t.Fatalf("unexpected call: code=%d index=%d patch=%+v", rec.Code, plans.gotIndex, plans.gotPatch)
	}

	c, _ = newCtx(http.MethodPatch, "/v1/goals/g1/plan/steps/x", `{"completed":true}`)
	c.SetParamNames("id", "index")
	c.SetParamValues("g1", "x")
	if code := httpCode(t, h.UpdateStep(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

// --- jobs and dashboard ---

func TestJobHandler_Create(t *testing.T) {
	jobs := &stubJobService{}
	h := NewJobHandler(jobs, &stubDashboardService{})

	c, rec := newCtx(http.MethodPost, "/v1/orgs/org_1/jobs", `{"type":"Detail","value":200,"lead_source":"Google","date":"2024-06-15"}`)
	c.SetParamNames("org_id")
	c.SetParamValues("org_1")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if jobs.got.OrgID != "org_1" || jobs.got.Value != 200 || jobs.got.Date != "2024-06-15" {
		t.Fatalf("unexpected input: %+v", jobs.got)
	}

	c, _ = newCtx(http.MethodPost, "/v1/orgs/org_1/jobs", `{"type":"Detail","value":0,"lead_source":"Google","date":"2024-06-15"}`)
	if code := httpCode(t, h.Create(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	c, _ = newCtx(http.MethodPost, "/v1/orgs/org_1/jobs", `{not json`)
	if code := httpCode(t, h.Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestJobHandler_Dashboard_NullForClientRole(t *testing.T) {
	h := NewJobHandler(&stubJobService{}, &stubDashboardService{})
	c, rec := newCtx(http.MethodGet, "/v1/orgs/org_1/dashboard", "")

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("expected 200 null, got %d %q", rec.Code, rec.Body.String())
	}
}

// --- advisor ---

func TestAdvisorHandler_SendMessage_Accepted(t *testing.T) {
	adv := &stubAdvisorService{}
	h := NewAdvisorHandler(adv, nil)

	c, rec := newCtx(http.MethodPost, "/v1/threads/t1/messages", `{"content":"How do I upsell ceramic coatings?"}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	if err := h.SendMessage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if adv.sent != "How do I upsell ceramic coatings?" {
		t.Fatalf("unexpected content %q", adv.sent)
	}

	c, _ = newCtx(http.MethodPost, "/v1/threads/t1/messages", `{"content":""}`)
	if code := httpCode(t, h.SendMessage(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestAdvisorHandler_Suggest(t *testing.T) {
	h := NewAdvisorHandler(&stubAdvisorService{}, nil)
	c, rec := newCtx(http.MethodPost, "/v1/threads/t1/suggestion", "")

	if err := h.Suggest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp suggestionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Question != "Which lead source converts best?" {
		t.Fatalf("unexpected question %q", resp.Question)
	}
}

// --- webhooks ---

func TestWebhookHandler(t *testing.T) {
	cases := []struct {
		name     string
		svc      *stubWebhookService
		wantCode int
	}{
		{"applied", &stubWebhookService{outcome: ports.WebhookApplied}, http.StatusOK},
		{"ignored", &stubWebhookService{outcome: ports.WebhookIgnored}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewWebhookHandler(tc.svc)
			c, rec := newCtx(http.MethodPost, "/webhooks/identity", `{"type":"user.created"}`)
			if err := h.Identity(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if tc.svc.payload != `{"type":"user.created"}` {
				t.Fatalf("payload not forwarded: %q", tc.svc.payload)
			}
		})
	}

	h := NewWebhookHandler(&stubWebhookService{err: domain.InvalidInput("malformed billing event")})
	c, _ := newCtx(http.MethodPost, "/webhooks/billing", `[`)
	if code := httpCode(t, h.Billing(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

// --- health ---

func TestReadiness(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	c, rec := newCtx(http.MethodGet, "/health/ready", "")
	if err := NewHealthDependenciesHandler(map[string]Pinger{"mongodb": ok, "redis": ok}).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newCtx(http.MethodGet, "/health/ready", "")
	if err := NewHealthDependenciesHandler(map[string]Pinger{"mongodb": ok, "redis": down}).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dependencies["redis"].Status != "unhealthy" || resp.Dependencies["mongodb"].Status != "ok" {
		t.Fatalf("unexpected dependencies: %+v", resp.Dependencies)
	}
}
