package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/detailiq/dashboard-system/internal/api/handler"
	"github.com/detailiq/dashboard-system/internal/api/middleware"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// Dependencies are the services and adapters the router exposes over HTTP.
type Dependencies struct {
	Organizations ports.OrganizationService
	Goals         ports.GoalService
	Plans         ports.PlanService
	Jobs          ports.JobService
	Dashboard     ports.DashboardService
	Advisor       ports.AdvisorService
	Knowledge     ports.KnowledgeService
	Webhooks      ports.WebhookService

	IdentityVerifier middleware.SignatureVerifier
	BillingVerifier  middleware.SignatureVerifier

	// HealthChecks are pinged by the readiness endpoint, keyed by dependency name.
	HealthChecks map[string]handler.Pinger

	JWTSecret string
	Issuer    string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddleware("dashboard"))

	// --- Ops (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Webhooks (signature verified, no bearer token) ---
	webhookHandler := handler.NewWebhookHandler(deps.Webhooks)
	hooks := e.Group("/webhooks")
	hooks.POST("/identity", webhookHandler.Identity, middleware.VerifyWebhook(deps.IdentityVerifier, "identity", log))
	hooks.POST("/billing", webhookHandler.Billing, middleware.VerifyWebhook(deps.BillingVerifier, "billing", log))

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret, deps.Issuer))

	orgHandler := handler.NewOrganizationHandler(deps.Organizations)
	v1.GET("/me", orgHandler.Me)
	v1.POST("/orgs", orgHandler.Create)
	v1.GET("/orgs/:org_id", orgHandler.Get)
	v1.PATCH("/orgs/:org_id", orgHandler.Rename)
	v1.POST("/orgs/:org_id/members", orgHandler.AddMember)
	v1.PATCH("/memberships/:id", orgHandler.UpdateRole)
	v1.DELETE("/memberships/:id", orgHandler.RemoveMember)

	jobHandler := handler.NewJobHandler(deps.Jobs, deps.Dashboard)
	v1.GET("/orgs/:org_id/dashboard", jobHandler.Dashboard)
	v1.POST("/orgs/:org_id/jobs", jobHandler.Create)
	v1.POST("/orgs/:org_id/metrics", jobHandler.RecordMetric)

	goalHandler := handler.NewGoalHandler(deps.Goals, deps.Plans)
	v1.POST("/orgs/:org_id/goals", goalHandler.Create)
	v1.GET("/goals/:id", goalHandler.Get)
	v1.PATCH("/goals/:id", goalHandler.Update)
	v1.DELETE("/goals/:id", goalHandler.Delete)
	v1.POST("/goals/:id/plan", goalHandler.GeneratePlan)
	v1.PATCH("/goals/:id/plan/steps/:index", goalHandler.UpdateStep)

	advisorHandler := handler.NewAdvisorHandler(deps.Advisor, deps.Knowledge)
	v1.POST("/orgs/:org_id/knowledge", advisorHandler.AddArticle)
	v1.GET("/orgs/:org_id/knowledge", advisorHandler.ListArticles)
	v1.GET("/orgs/:org_id/knowledge/search", advisorHandler.Search)
	v1.POST("/orgs/:org_id/threads", advisorHandler.CreateThread)
	v1.POST("/threads/:id/messages", advisorHandler.SendMessage)
	v1.GET("/threads/:id/messages", advisorHandler.ListMessages)
	v1.POST("/threads/:id/suggestion", advisorHandler.Suggest)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
