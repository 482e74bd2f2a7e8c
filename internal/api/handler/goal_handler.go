package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// GoalHandler serves goals and their AI action plans.
type GoalHandler struct {
	goals ports.GoalService
	plans ports.PlanService
}

func NewGoalHandler(goals ports.GoalService, plans ports.PlanService) *GoalHandler {
	return &GoalHandler{goals: goals, plans: plans}
}

// Create handles POST /v1/orgs/:org_id/goals.
//
// @Summary      Create a goal
// @Tags         goals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string             true  "Organization id"
// @Param        body    body      createGoalRequest  true  "Goal"
// @Success      201     {object}  domain.Goal
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/goals [post]
func (h *GoalHandler) Create(c echo.Context) error {
	var req createGoalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	g, err := h.goals.CreateGoal(c.Request().Context(), callerIdentity(c), ports.CreateGoalInput{
		OrgID:        c.Param("org_id"),
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

// Get handles GET /v1/goals/:id.
//
// @Summary      Get a goal
// @Tags         goals
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Goal id"
// @Success      200  {object}  domain.Goal
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/goals/{id} [get]
func (h *GoalHandler) Get(c echo.Context) error {
	g, err := h.goals.GetGoal(c.Request().Context(), callerIdentity(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Update handles PATCH /v1/goals/:id. Value edits may complete the goal.
//
// @Summary      Partially update a goal
// @Tags         goals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Goal id"
// @Param        body  body      updateGoalRequest  true  "Fields to change"
// @Success      200   {object}  domain.Goal
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/goals/{id} [patch]
func (h *GoalHandler) Update(c echo.Context) error {
	var req updateGoalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	g, err := h.goals.UpdateGoal(c.Request().Context(), callerIdentity(c), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Delete handles DELETE /v1/goals/:id.
//
// @Summary      Delete a goal
// @Tags         goals
// @Security     BearerAuth
// @Param        id  path  string  true  "Goal id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c echo.Context) error {
	if err := h.goals.DeleteGoal(c.Request().Context(), callerIdentity(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GeneratePlan handles POST /v1/goals/:id/plan. A plan generated within the
// cache window is returned without calling the model.
//
// @Summary      Generate (or fetch the cached) action plan
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Goal id"
// @Success      200  {object}  planResponse
// @Failure      402  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/goals/{id}/plan [post]
func (h *GoalHandler) GeneratePlan(c echo.Context) error {
	goalID := c.Param("id")
	steps, err := h.plans.GeneratePlan(c.Request().Context(), callerIdentity(c), goalID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, planResponse{GoalID: goalID, Steps: steps})
}

// UpdateStep handles PATCH /v1/goals/:id/plan/steps/:index.
//
// @Summary      Edit one step of the goal's stored plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string             true  "Goal id"
// @Param        index  path      int                true  "Zero-based step index"
// @Param        body   body      updateStepRequest  true  "Fields to change"
// @Success      200    {object}  domain.Goal
// @Failure      403    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /v1/goals/{id}/plan/steps/{index} [patch]
func (h *GoalHandler) UpdateStep(c echo.Context) error {
	index, err := intParam(c, "index")
	if err != nil {
		return err
	}
	var req updateStepRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	g, err := h.plans.UpdateStep(c.Request().Context(), callerIdentity(c), c.Param("id"), index, req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}
