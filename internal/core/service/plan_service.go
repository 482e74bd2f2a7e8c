package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/detailiq/dashboard-system/internal/core/analytics"
	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
	"github.com/detailiq/dashboard-system/internal/pkg/metrics"
)

const (
	// DefaultPlanTTL is how long a generated plan is served from cache.
	DefaultPlanTTL = 24 * time.Hour

	maxPlanSteps           = 5
	placeholderDescription = "No description provided"
)

// planSchema constrains the model output to an object holding the action steps.
var planSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"steps": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{"type": "string"},
					"completed":   map[string]any{"type": "boolean"},
					"dueDate":     map[string]any{"type": "string"},
					"notes":       map[string]any{"type": "string"},
				},
				"required": []string{"description", "completed"},
			},
		},
	},
	"required": []string{"steps"},
}

// PlanService generates goal action plans through the LLM with a per-goal
// cache. Concurrent misses for the same goal share one generation.
type PlanService struct {
	access ports.AccessChecker
	goals  *GoalService
	repo   ports.GoalRepository
	jobs   ports.JobRepository
	cache  ports.PlanCache
	llm    ports.LLMClient
	ttl    time.Duration
	flight singleflight.Group
	log    zerolog.Logger
	now    func() time.Time
}

// NewPlanService returns a PlanService. A non-positive ttl falls back to DefaultPlanTTL.
func NewPlanService(
	access ports.AccessChecker,
	goals *GoalService,
	repo ports.GoalRepository,
	jobs ports.JobRepository,
	cache ports.PlanCache,
	llm ports.LLMClient,
	ttl time.Duration,
	log zerolog.Logger,
) *PlanService {
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	return &PlanService{
		access: access,
		goals:  goals,
		repo:   repo,
		jobs:   jobs,
		cache:  cache,
		llm:    llm,
		ttl:    ttl,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.PlanService = (*PlanService)(nil)

// GeneratePlan returns the plan for goalID. The cache key is the goal id only:
// editing the goal does not invalidate a cached plan, only the TTL does.
func (s *PlanService) GeneratePlan(ctx context.Context, id ports.Identity, goalID string) ([]domain.ActionStep, error) {
	g, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	if _, err := s.access.RequireFeature(ctx, id, g.OrgID, domain.FeatureAIActionPlans); err != nil {
		return nil, err
	}

	if steps, ok := s.cached(ctx, goalID); ok {
		metrics.PlanCacheTotal.WithLabelValues("hit").Inc()
		return steps, nil
	}

	// The generation outlives any single caller that joined the flight.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.flight.Do(goalID, func() (any, error) {
		if steps, ok := s.cached(flightCtx, goalID); ok {
			return steps, nil
		}
		steps, err := s.generate(flightCtx, g)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(flightCtx, goalID, steps, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("goal_id", goalID).Msg("failed to cache plan")
		}
		return steps, nil
	})
	if shared {
		metrics.PlanCacheTotal.WithLabelValues("coalesced").Inc()
	} else {
		metrics.PlanCacheTotal.WithLabelValues("miss").Inc()
	}
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	return cloneSteps(v.([]domain.ActionStep)), nil
}

// UpdateStep edits one step of the goal's plan in place. The write goes through
// the generic goal update path as a silent save.
func (s *PlanService) UpdateStep(ctx context.Context, id ports.Identity, goalID string, index int, patch ports.StepPatch) (*domain.Goal, error) {
	g, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("update step: %w", err)
	}
	if _, err := s.access.ResolveAccess(ctx, id, g.OrgID); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(g.ActionPlan) {
		return nil, domain.InvalidInput(fmt.Sprintf("step index %d out of range", index))
	}

	plan := cloneSteps(g.ActionPlan)
	step := plan[index]
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		if desc == "" {
			return nil, domain.InvalidInput("step description must not be empty")
		}
		step.Description = desc
	}
	if patch.Completed != nil {
		step.Completed = *patch.Completed
	}
	if patch.DueDate != nil {
		if *patch.DueDate != "" && !domain.ValidDate(*patch.DueDate) {
			return nil, domain.InvalidInput("due date must be a calendar date in YYYY-MM-DD format")
		}
		step.DueDate = *patch.DueDate
	}
	if patch.Notes != nil {
		step.Notes = *patch.Notes
	}
	plan[index] = step

	return s.goals.update(ctx, id, goalID, domain.GoalPatch{ActionPlan: &plan}, true)
}

func (s *PlanService) cached(ctx context.Context, goalID string) ([]domain.ActionStep, bool) {
	steps, ok, err := s.cache.Get(ctx, goalID)
	if err != nil {
		s.log.Warn().Err(err).Str("goal_id", goalID).Msg("plan cache lookup failed")
		return nil, false
	}
	return steps, ok
}

func (s *PlanService) generate(ctx context.Context, g *domain.Goal) ([]domain.ActionStep, error) {
	siblings, err := s.repo.ListByOrg(ctx, g.OrgID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListByOrg(ctx, g.OrgID)
	if err != nil {
		return nil, err
	}
	summary := analytics.Summarize(jobs, s.now())

	start := time.Now()
	raw, err := s.llm.Complete(ctx, ports.CompletionRequest{
		System:     advisorSystemPrompt,
		Prompt:     planPrompt(g, siblings, summary),
		JSONSchema: planSchema,
	})
	if err != nil {
		metrics.PlanGenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.log.Error().Err(err).Str("goal_id", g.ID).Msg("plan generation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamGeneration, err)
	}

	steps, err := parsePlan(raw)
	if err != nil {
		metrics.PlanGenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.log.Error().Err(err).Str("goal_id", g.ID).Msg("unusable plan output")
		return nil, err
	}
	metrics.PlanGenerationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	s.log.Info().Str("goal_id", g.ID).Int("steps", len(steps)).Msg("plan generated")
	return steps, nil
}

func planPrompt(g *domain.Goal, siblings []*domain.Goal, summary analytics.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following business data, create a concise, actionable, step-by-step plan to achieve this specific goal: %q. ", g.Description)
	fmt.Fprintf(&b, "The target is %s and the current value is %s. ", formatNumber(g.TargetValue), formatNumber(g.CurrentValue))
	b.WriteString("The plan should have between 3 and 5 steps. Each step must be a clear, simple action the business owner can take. ")
	b.WriteString("If a step is time-sensitive, suggest a dueDate in YYYY-MM-DD format. Add brief notes for clarity.\n\n")
	b.WriteString("**LATEST BUSINESS DATA CONTEXT:**\n---\n**Other Goals:**\n")
	for _, o := range siblings {
		fmt.Fprintf(&b, "- %s (Status: %s)\n", o.Description, o.Status)
	}
	b.WriteString("---\n**Detailed Job Data Summary (Last 30 Days):**\n")
	b.WriteString(summary.Text())
	b.WriteString("\n---")
	return b.String()
}

// parsePlan decodes model output into at most five steps. Every step is
// forced to completed=false; bad descriptions get a placeholder and invalid
// due dates are dropped. Output with no usable steps is an upstream failure.
func parsePlan(raw string) ([]domain.ActionStep, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty plan output", domain.ErrUpstreamGeneration)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		var wrapped struct {
			Steps []map[string]any `json:"steps"`
		}
		if err2 := json.Unmarshal([]byte(text), &wrapped); err2 != nil {
			return nil, fmt.Errorf("%w: plan output is not valid JSON: %v", domain.ErrUpstreamGeneration, err)
		}
		items = wrapped.Steps
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: plan output has no steps", domain.ErrUpstreamGeneration)
	}
	if len(items) > maxPlanSteps {
		items = items[:maxPlanSteps]
	}

	steps := make([]domain.ActionStep, 0, len(items))
	for _, item := range items {
		step := domain.ActionStep{Description: placeholderDescription}
		if d, ok := item["description"].(string); ok && strings.TrimSpace(d) != "" {
			step.Description = strings.TrimSpace(d)
		}
		if due, ok := item["dueDate"].(string); ok && domain.ValidDate(due) {
			step.DueDate = due
		}
		if notes, ok := item["notes"].(string); ok {
			step.Notes = strings.TrimSpace(notes)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// stripCodeFence removes a surrounding ``` block if the model added one.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.Index(text, "\n"); nl != -1 {
		text = text[nl+1:]
	}
	if end := strings.LastIndex(text, "```"); end != -1 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

func cloneSteps(steps []domain.ActionStep) []domain.ActionStep {
	if steps == nil {
		return nil
	}
	return append([]domain.ActionStep(nil), steps...)
}
