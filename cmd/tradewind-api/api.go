// Package main provides the Tradewind API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tradewind-io/tradewind/pkg/aggregate"
	"github.com/tradewind-io/tradewind/pkg/decision"
	"github.com/tradewind-io/tradewind/pkg/eventbus"
	"github.com/tradewind-io/tradewind/pkg/metrics"
	"github.com/tradewind-io/tradewind/pkg/persistence"
	"github.com/tradewind-io/tradewind/pkg/registry"
	"github.com/tradewind-io/tradewind/pkg/risk"
	"github.com/tradewind-io/tradewind/pkg/runner"
	"github.com/tradewind-io/tradewind/pkg/web"
	"github.com/tradewind-io/tradewind/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	executor    *workflow.Executor
	scheduler   *risk.ResetScheduler
	promReg     *prometheus.Registry
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	redisURL string,
) (*API, error) {
	var store risk.Store = risk.NewMemoryStore()

	if redisURL != "" {
		redisStore, err := risk.NewRedisStoreFromURL(redisURL)
		if err != nil {
			return nil, err
		}

		store = redisStore
	}

	promReg := prometheus.NewRegistry()

	gate := risk.NewGate(store, logger)
	executor := workflow.NewExecutor(
		logger,
		runner.NewRunner(reg, logger),
		decision.NewEngine(logger),
		gate,
		aggregate.NewAggregator(logger),
		persist,
		eventBus,
		metrics.New(promReg),
	)

	return &API{
		logger:      logger,
		persistence: persist,
		registry:    reg,
		executor:    executor,
		scheduler:   risk.NewResetScheduler(gate, logger),
		promReg:     promReg,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.persistence, a.executor, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Tradewind API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Post("/:id/executions/:executionId/retry", handlers.RetryExecution)

	e := app.Group("/executions")
	e.Get("/active", handlers.GetActiveExecutions)
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/cancel", handlers.CancelExecution)

	app.Get("/agents", handlers.GetAvailableAgents)
	app.Get("/health", handlers.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{})))

	return app
}

// StartScheduler begins the UTC-midnight daily-loss reset sweep.
func (a *API) StartScheduler(ctx context.Context) error {
	return a.scheduler.Start(ctx)
}

func (a *API) StopScheduler() {
	a.scheduler.Stop()
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
