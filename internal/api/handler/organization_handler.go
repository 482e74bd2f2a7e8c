package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// OrganizationHandler serves the caller's profile, organizations and memberships.
type OrganizationHandler struct {
	service ports.OrganizationService
}

func NewOrganizationHandler(service ports.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// Me handles GET /v1/me. The user record is created on first contact.
//
// @Summary      Current user with organizations and memberships
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *OrganizationHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	id := callerIdentity(c)
	if _, err := h.service.EnsureUser(ctx, id); err != nil {
		return err
	}
	cu, err := h.service.CurrentUser(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{User: cu.User, Organizations: cu.Organizations, Memberships: cu.Memberships})
}

// Create handles POST /v1/orgs.
//
// @Summary      Create an organization; the caller becomes its admin
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrganizationRequest  true  "Organization"
// @Success      201   {object}  domain.Organization
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/orgs [post]
func (h *OrganizationHandler) Create(c echo.Context) error {
	var req createOrganizationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	org, err := h.service.CreateOrganization(c.Request().Context(), callerIdentity(c), ports.CreateOrganizationInput{
		Name:       req.Name,
		BillingRef: req.BillingRef,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, org)
}

// Get handles GET /v1/orgs/:org_id.
//
// @Summary      Organization with its members
// @Tags         organizations
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string  true  "Organization id"
// @Success      200     {object}  organizationDetailsResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/orgs/{org_id} [get]
func (h *OrganizationHandler) Get(c echo.Context) error {
	d, err := h.service.OrganizationDetails(c.Request().Context(), callerIdentity(c), c.Param("org_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrganizationDetails(d))
}

// Rename handles PATCH /v1/orgs/:org_id.
//
// @Summary      Rename an organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string                     true  "Organization id"
// @Param        body    body      renameOrganizationRequest  true  "New name"
// @Success      200     {object}  domain.Organization
// @Failure      402     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/orgs/{org_id} [patch]
func (h *OrganizationHandler) Rename(c echo.Context) error {
	var req renameOrganizationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	org, err := h.service.RenameOrganization(c.Request().Context(), callerIdentity(c), c.Param("org_id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, org)
}

// AddMember handles POST /v1/orgs/:org_id/members.
//
// @Summary      Add an existing user as a member
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string            true  "Organization id"
// @Param        body    body      addMemberRequest  true  "User to add"
// @Success      201     {object}  domain.Membership
// @Failure      402     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/members [post]
func (h *OrganizationHandler) AddMember(c echo.Context) error {
	var req addMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.service.AddMember(c.Request().Context(), callerIdentity(c), c.Param("org_id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateRole handles PATCH /v1/memberships/:id.
//
// @Summary      Change a member's role
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Membership id"
// @Param        body  body      updateRoleRequest  true  "Role"
// @Success      200   {object}  domain.Membership
// @Failure      402   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/memberships/{id} [patch]
func (h *OrganizationHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.service.UpdateRole(c.Request().Context(), callerIdentity(c), c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// RemoveMember handles DELETE /v1/memberships/:id.
//
// @Summary      Remove a member
// @Tags         memberships
// @Security     BearerAuth
// @Param        id  path  string  true  "Membership id"
// @Success      204
// @Failure      402  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/memberships/{id} [delete]
func (h *OrganizationHandler) RemoveMember(c echo.Context) error {
	if err := h.service.RemoveMember(c.Request().Context(), callerIdentity(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
