package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/detailiq/dashboard-system/docs"
	"github.com/detailiq/dashboard-system/internal/api"
	"github.com/detailiq/dashboard-system/internal/api/handler"
	"github.com/detailiq/dashboard-system/internal/core/service"
	"github.com/detailiq/dashboard-system/internal/infrastructure/ai"
	mongodb "github.com/detailiq/dashboard-system/internal/infrastructure/db/mongo"
	redisdb "github.com/detailiq/dashboard-system/internal/infrastructure/db/redis"
	"github.com/detailiq/dashboard-system/internal/infrastructure/queue"
	"github.com/detailiq/dashboard-system/internal/infrastructure/webhook"
	"github.com/detailiq/dashboard-system/internal/pkg/config"
	"github.com/detailiq/dashboard-system/pkg/logger"
)

// @title                       Detailing Dashboard API
// @version                     1.0
// @description                 Goals, job analytics, AI action plans and an advisory chat for car-detailing businesses.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "dashboard-api",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	plans, err := cfg.BillingPlans()
	if err != nil {
		log.Fatal().Err(err).Msg("billing plan map")
	}
	identityVerifier, err := webhook.NewVerifier(cfg.Webhooks.IdentitySecret)
	if err != nil {
		log.Fatal().Err(err).Msg("identity webhook secret")
	}
	billingVerifier, err := webhook.NewVerifier(cfg.Webhooks.BillingSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("billing webhook secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection")
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongodb indexes")
	}
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection")
	}

	// --- Repositories and adapters ---
	users := mongodb.NewUserRepository(db)
	orgRepo := mongodb.NewOrganizationRepository(db)
	memberships := mongodb.NewMembershipRepository(db)
	goalRepo := mongodb.NewGoalRepository(db)
	jobRepo := mongodb.NewJobRepository(db)
	articles := mongodb.NewKnowledgeRepository(db)
	threads := mongodb.NewThreadRepository(db)

	llm := ai.NewOpenAIClient(ai.Config{
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		BaseURL: cfg.AI.BaseURL,
		Timeout: cfg.AI.Timeout,
	})
	if cfg.AI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set: plan generation and chat replies will fail")
	}
	planCache := redisdb.NewPlanCache(rdb)

	// --- Services ---
	orgs := service.NewOrganizationService(users, orgRepo, memberships, logger.Component("organizations"))
	goals := service.NewGoalService(orgs, goalRepo, logger.Component("goals"))
	plansSvc := service.NewPlanService(orgs, goals, goalRepo, jobRepo, planCache, llm, cfg.AI.PlanCacheTTL, logger.Component("plans"))
	jobs := service.NewJobService(orgs, jobRepo, logger.Component("jobs"))
	dashboard := service.NewDashboardService(orgs, goalRepo, jobRepo, logger.Component("dashboard"))
	knowledge := service.NewKnowledgeService(orgs, articles, logger.Component("knowledge"))
	webhooks := service.NewWebhookService(users, orgRepo, cfg.Auth.Issuer, plans, logger.Component("webhooks"))

	worker := service.NewChatWorker(threads, goalRepo, jobRepo, articles, llm, logger.Component("chat_worker"))
	dispatcher := queue.NewDispatcher(cfg.Chat.Workers, worker, logger.Component("dispatcher"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)
	advisor := service.NewAdvisorService(orgs, threads, goalRepo, jobRepo, dispatcher, llm, logger.Component("advisor"))

	e := api.NewRouter(api.Dependencies{
		Organizations:    orgs,
		Goals:            goals,
		Plans:            plansSvc,
		Jobs:             jobs,
		Dashboard:        dashboard,
		Advisor:          advisor,
		Knowledge:        knowledge,
		Webhooks:         webhooks,
		IdentityVerifier: identityVerifier,
		BillingVerifier:  billingVerifier,
		HealthChecks: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis":   handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		JWTSecret: cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.Issuer,
	}, logger.Component("http"))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// HTTP first so no new turns are queued, then the chat workers, then the stores.
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopWorkers()
	dispatcher.Wait()
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect")
	}
	log.Info().Msg("stopped")
}
