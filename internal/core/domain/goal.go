package domain

import (
	"errors"
	"fmt"
	"time"
)

// GoalStatus represents the lifecycle state of a goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

// validGoalTransitions defines the allowed state machine transitions.
// Leaving completed or archived is only possible by re-activating.
var validGoalTransitions = map[GoalStatus][]GoalStatus{
	GoalActive:    {GoalCompleted, GoalArchived},
	GoalCompleted: {GoalActive},
	GoalArchived:  {GoalActive},
}

var ErrInvalidTransition = wrap(ErrValidation, "invalid goal status transition")

// Valid reports whether s is a known status.
func (s GoalStatus) Valid() bool {
	_, ok := validGoalTransitions[s]
	return ok
}

// CanTransitionTo reports whether a transition from s to next is valid.
// Staying in the same status is always allowed.
func (s GoalStatus) CanTransitionTo(next GoalStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range validGoalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InitialGoalStatus returns the status a new goal starts in. Archived is
// unreachable at creation.
func InitialGoalStatus(current, target float64) GoalStatus {
	if current >= target {
		return GoalCompleted
	}
	return GoalActive
}

// ActionStep is one entry of a goal's ordered action plan.
type ActionStep struct {
	Description string `json:"description" bson:"description"`
	Completed   bool   `json:"completed" bson:"completed"`
	DueDate     string `json:"due_date,omitempty" bson:"due_date,omitempty"` // YYYY-MM-DD
	Notes       string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Goal is a measurable target tracked by an organization.
type Goal struct {
	ID           string       `json:"id" bson:"_id"`
	OrgID        string       `json:"org_id" bson:"org_id"`
	Description  string       `json:"description" bson:"description"`
	TargetValue  float64      `json:"target_value" bson:"target_value"`
	CurrentValue float64      `json:"current_value" bson:"current_value"`
	Status       GoalStatus   `json:"status" bson:"status"`
	ActionPlan   []ActionStep `json:"action_plan,omitempty" bson:"action_plan,omitempty"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
}

// GoalPatch is a partial goal update. Nil fields are left untouched.
type GoalPatch struct {
	Description  *string
	TargetValue  *float64
	CurrentValue *float64
	Status       *GoalStatus
	ActionPlan   *[]ActionStep
}

// TouchesValues reports whether the patch changes current or target value.
func (p GoalPatch) TouchesValues() bool {
	return p.CurrentValue != nil || p.TargetValue != nil
}

// ValidateGoalValues checks the numeric invariants shared by create and update.
func ValidateGoalValues(target, current float64) error {
	if target <= 0 {
		return InvalidInput("target value must be greater than 0")
	}
	if current < 0 {
		return InvalidInput("current value must not be negative")
	}
	return nil
}

// Resolve validates p against the stored goal and returns the patch that must
// be persisted. When the patch touches values without an explicit status and
// the goal is active, the status is promoted to completed once current reaches
// target. The promotion never runs backwards.
func (g *Goal) Resolve(p GoalPatch) (GoalPatch, error) {
	out := p

	if p.Description != nil && *p.Description == "" {
		return GoalPatch{}, InvalidInput("description must not be empty")
	}

	target, current := g.TargetValue, g.CurrentValue
	if p.TargetValue != nil {
		target = *p.TargetValue
	}
	if p.CurrentValue != nil {
		current = *p.CurrentValue
	}
	if p.TouchesValues() {
		if err := ValidateGoalValues(target, current); err != nil {
			return GoalPatch{}, err
		}
	}

	if p.Status != nil {
		next := *p.Status
		if !next.Valid() {
			return GoalPatch{}, InvalidInput(fmt.Sprintf("unknown goal status %q", next))
		}
		if !g.Status.CanTransitionTo(next) {
			return GoalPatch{}, fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, g.Status, next)
		}
		return out, nil
	}

	if p.TouchesValues() && g.Status == GoalActive && current >= target {
		completed := GoalCompleted
		out.Status = &completed
	}
	return out, nil
}

// Apply returns a copy of g with the resolved patch applied.
func (g Goal) Apply(p GoalPatch) Goal {
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.TargetValue != nil {
		g.TargetValue = *p.TargetValue
	}
	if p.CurrentValue != nil {
		g.CurrentValue = *p.CurrentValue
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	if p.ActionPlan != nil {
		g.ActionPlan = append([]ActionStep(nil), (*p.ActionPlan)...)
	}
	return g
}

// IsInvalidTransition reports whether err is a rejected status change.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
