package domain

import (
	"errors"
	"testing"
)

func f64(v float64) *float64 { return &v }

func status(s GoalStatus) *GoalStatus { return &s }

func TestInitialGoalStatus(t *testing.T) {
	if got := InitialGoalStatus(10, 10); got != GoalCompleted {
		t.Fatalf("current == target: expected completed, got %s", got)
	}
	if got := InitialGoalStatus(12, 10); got != GoalCompleted {
		t.Fatalf("current > target: expected completed, got %s", got)
	}
	if got := InitialGoalStatus(3, 10); got != GoalActive {
		t.Fatalf("current < target: expected active, got %s", got)
	}
}

func TestGoalStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to GoalStatus
		want     bool
	}{
		{GoalActive, GoalCompleted, true},
		{GoalActive, GoalArchived, true},
		{GoalCompleted, GoalActive, true},
		{GoalArchived, GoalActive, true},
		{GoalCompleted, GoalArchived, false},
		{GoalArchived, GoalCompleted, false},
		{GoalArchived, GoalArchived, true},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.want, got)
		}
	}
}

func TestResolve_AutoCompletesOnValueUpdate(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 3, Status: GoalActive}

	out, err := g.Resolve(GoalPatch{CurrentValue: f64(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status == nil || *out.Status != GoalCompleted {
		t.Fatalf("expected status promoted to completed, got %v", out.Status)
	}
	if got := g.Apply(out); got.Status != GoalCompleted || got.CurrentValue != 10 {
		t.Fatalf("unexpected applied goal: %+v", got)
	}
}

func TestResolve_LoweringTargetCompletes(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 6, Status: GoalActive}

	out, err := g.Resolve(GoalPatch{TargetValue: f64(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status == nil || *out.Status != GoalCompleted {
		t.Fatalf("expected completed, got %v", out.Status)
	}
}

func TestResolve_NeverAutoReverts(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 10, Status: GoalCompleted}

	out, err := g.Resolve(GoalPatch{CurrentValue: f64(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != nil {
		t.Fatalf("expected status untouched, got %s", *out.Status)
	}
	if got := g.Apply(out); got.Status != GoalCompleted {
		t.Fatalf("expected completed to stick, got %s", got.Status)
	}
}

func TestResolve_ArchivedNotPromoted(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 1, Status: GoalArchived}

	out, err := g.Resolve(GoalPatch{CurrentValue: f64(20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != nil {
		t.Fatalf("archived goal must not be promoted, got %s", *out.Status)
	}
}

func TestResolve_ExplicitStatusWins(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 3, Status: GoalActive}

	out, err := g.Resolve(GoalPatch{CurrentValue: f64(50), Status: status(GoalArchived)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *out.Status != GoalArchived {
		t.Fatalf("expected archived, got %s", *out.Status)
	}
}

func TestResolve_ReactivateBelowTarget(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 10, Status: GoalCompleted}

	out, err := g.Resolve(GoalPatch{Status: status(GoalActive)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.Apply(out); got.Status != GoalActive {
		t.Fatalf("expected active, got %s", got.Status)
	}
}

func TestResolve_RejectsInvalidTransition(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 10, Status: GoalCompleted}

	_, err := g.Resolve(GoalPatch{Status: status(GoalArchived)})
	if !IsInvalidTransition(err) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
}

func TestResolve_Validation(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 3, Status: GoalActive}
	empty := ""

	cases := map[string]GoalPatch{
		"empty description": {Description: &empty},
		"zero target":       {TargetValue: f64(0)},
		"negative current":  {CurrentValue: f64(-1)},
		"unknown status":    {Status: status("paused")},
	}
	for name, p := range cases {
		if _, err := g.Resolve(p); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestResolve_ActionPlanDoesNotComplete(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 10, Status: GoalActive}
	plan := []ActionStep{{Description: "call past customers"}}

	out, err := g.Resolve(GoalPatch{ActionPlan: &plan})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != nil {
		t.Fatalf("plan-only update must not touch status, got %s", *out.Status)
	}
}

func TestPlanIncludes(t *testing.T) {
	if PlanSolo.Includes(FeatureAIActionPlans) {
		t.Fatal("solo must not include ai_action_plans")
	}
	if !PlanPro.Includes(FeatureRoleManagement) || !PlanEnterprise.Includes(FeatureAIActionPlans) {
		t.Fatal("pro and enterprise must include every feature")
	}
}
