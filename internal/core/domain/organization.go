package domain

import "time"

// Plan is an organization's subscription tier.
type Plan string

const (
	PlanSolo       Plan = "solo"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Feature is a plan-gated capability.
type Feature string

const (
	FeatureAIActionPlans  Feature = "ai_action_plans"
	FeatureRoleManagement Feature = "role_management"
)

// planFeatures is the static entitlement table.
var planFeatures = map[Plan][]Feature{
	PlanSolo:       {},
	PlanPro:        {FeatureAIActionPlans, FeatureRoleManagement},
	PlanEnterprise: {FeatureAIActionPlans, FeatureRoleManagement},
}

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	_, ok := planFeatures[p]
	return ok
}

// Includes reports whether the plan grants feature f.
func (p Plan) Includes(f Feature) bool {
	for _, allowed := range planFeatures[p] {
		if allowed == f {
			return true
		}
	}
	return false
}

// Organization is the tenant that owns jobs, goals, memberships and articles.
type Organization struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Plan       Plan      `json:"plan" bson:"plan"`
	BillingRef string    `json:"billing_ref,omitempty" bson:"billing_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
