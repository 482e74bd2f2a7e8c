package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// JobHandler serves the job log, metric records and the dashboard.
type JobHandler struct {
	jobs      ports.JobService
	dashboard ports.DashboardService
}

func NewJobHandler(jobs ports.JobService, dashboard ports.DashboardService) *JobHandler {
	return &JobHandler{jobs: jobs, dashboard: dashboard}
}

// Create handles POST /v1/orgs/:org_id/jobs.
//
// @Summary      Log a completed job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string            true  "Organization id"
// @Param        body    body      createJobRequest  true  "Job"
// @Success      201     {object}  domain.Job
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	var req createJobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	j, err := h.jobs.CreateJob(c.Request().Context(), callerIdentity(c), ports.CreateJobInput{
		OrgID:      c.Param("org_id"),
		Type:       req.Type,
		Value:      req.Value,
		LeadSource: req.LeadSource,
		Date:       req.Date,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, j)
}

// RecordMetric handles POST /v1/orgs/:org_id/metrics.
//
// @Summary      Record a free-form business metric
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string               true  "Organization id"
// @Param        body    body      recordMetricRequest  true  "Metric record"
// @Success      201     {object}  domain.MetricRecord
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/metrics [post]
func (h *JobHandler) RecordMetric(c echo.Context) error {
	var req recordMetricRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.jobs.RecordMetric(c.Request().Context(), callerIdentity(c), ports.RecordMetricInput{
		OrgID:    c.Param("org_id"),
		DataType: req.DataType,
		Value:    req.Value,
		Date:     req.Date,
		Details:  req.Details,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// Dashboard handles GET /v1/orgs/:org_id/dashboard. Roles without dashboard
// access receive a JSON null body.
//
// @Summary      Goals, jobs, metrics and chart data for an organization
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  path      string  true  "Organization id"
// @Success      200     {object}  dashboardResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/orgs/{org_id}/dashboard [get]
func (h *JobHandler) Dashboard(c echo.Context) error {
	d, err := h.dashboard.GetDashboard(c.Request().Context(), callerIdentity(c), c.Param("org_id"))
	if err != nil {
		return err
	}
	if d == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Goals:     d.Goals,
		Jobs:      d.Jobs,
		Metrics:   d.Metrics,
		ChartData: d.ChartData,
	})
}
