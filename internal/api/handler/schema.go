package handler

import (
	"github.com/detailiq/dashboard-system/internal/core/analytics"
	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// --- Organizations and memberships ---

type createOrganizationRequest struct {
	Name       string `json:"name"        validate:"required,max=120"`
	BillingRef string `json:"billing_ref" validate:"omitempty,max=120"`
}

type renameOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

type meResponse struct {
	User          *domain.User           `json:"user"`
	Organizations []*domain.Organization `json:"organizations"`
	Memberships   []*domain.Membership   `json:"memberships"`
}

type memberResponse struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	MembershipID string `json:"membership_id"`
	Role         string `json:"role"`
}

type organizationDetailsResponse struct {
	Organization *domain.Organization `json:"organization"`
	Members      []memberResponse     `json:"members"`
}

func toOrganizationDetails(d *ports.OrganizationDetails) organizationDetailsResponse {
	out := organizationDetailsResponse{Organization: d.Organization, Members: make([]memberResponse, 0, len(d.Members))}
	for _, m := range d.Members {
		out.Members = append(out.Members, memberResponse{UserID: m.UserID, Name: m.Name, MembershipID: m.MembershipID, Role: m.Role})
	}
	return out
}

// --- Goals and plans ---

type createGoalRequest struct {
	Description  string  `json:"description"   validate:"required,max=500"`
	TargetValue  float64 `json:"target_value"  validate:"gt=0"`
	CurrentValue float64 `json:"current_value" validate:"gte=0"`
}

type actionStepRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
	DueDate     string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	Notes       string `json:"notes"`
}

type updateGoalRequest struct {
	Description  *string              `json:"description"   validate:"omitempty,max=500"`
	TargetValue  *float64             `json:"target_value"  validate:"omitempty,gt=0"`
	CurrentValue *float64             `json:"current_value" validate:"omitempty,gte=0"`
	Status       *string              `json:"status"        validate:"omitempty,oneof=active completed archived"`
	ActionPlan   *[]actionStepRequest `json:"action_plan"   validate:"omitempty,dive"`
}

func (r updateGoalRequest) toPatch() domain.GoalPatch {
	p := domain.GoalPatch{
		Description:  r.Description,
		TargetValue:  r.TargetValue,
		CurrentValue: r.CurrentValue,
	}
	if r.Status != nil {
		s := domain.GoalStatus(*r.Status)
		p.Status = &s
	}
	if r.ActionPlan != nil {
		steps := make([]domain.ActionStep, 0, len(*r.ActionPlan))
		for _, s := range *r.ActionPlan {
			steps = append(steps, domain.ActionStep(s))
		}
		p.ActionPlan = &steps
	}
	return p
}

type updateStepRequest struct {
	Description *string `json:"description" validate:"omitempty,min=1"`
	Completed   *bool   `json:"completed"`
	DueDate     *string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes"`
}

func (r updateStepRequest) toPatch() ports.StepPatch {
	return ports.StepPatch{Description: r.Description, Completed: r.Completed, DueDate: r.DueDate, Notes: r.Notes}
}

type planResponse struct {
	GoalID string              `json:"goal_id"`
	Steps  []domain.ActionStep `json:"steps"`
}

// --- Jobs, metrics and the dashboard ---

type createJobRequest struct {
	Type       string  `json:"type"        validate:"required,max=120"`
	Value      float64 `json:"value"       validate:"gt=0"`
	LeadSource string  `json:"lead_source" validate:"required,max=120"`
	Date       string  `json:"date"        validate:"required,datetime=2006-01-02"`
}

type recordMetricRequest struct {
	DataType string         `json:"data_type" validate:"required,max=120"`
	Value    float64        `json:"value"`
	Date     string         `json:"date"      validate:"required,datetime=2006-01-02"`
	Details  map[string]any `json:"details"`
}

type dashboardResponse struct {
	Goals     []*domain.Goal        `json:"goals"`
	Jobs      []domain.Job          `json:"jobs"`
	Metrics   []domain.MetricRecord `json:"metrics"`
	ChartData analytics.ChartData   `json:"chart_data"`
}

// --- Knowledge base and advisor ---

type createArticleRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Text  string `json:"text"  validate:"required"`
}

type searchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

type createThreadRequest struct {
	Title string `json:"title" validate:"omitempty,max=200"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

type suggestionResponse struct {
	Question string `json:"question"`
}

// --- Webhooks ---

type webhookResponse struct {
	Outcome ports.WebhookOutcome `json:"outcome"`
}

// errorResponse documents the envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}
