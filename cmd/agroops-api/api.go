// Package main provides the agroops API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/agroops/pkg/catalog"
	"github.com/dukex/agroops/pkg/evaluation"
	"github.com/dukex/agroops/pkg/eventbus"
	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/monitor"
	"github.com/dukex/agroops/pkg/persistence"
	"github.com/dukex/agroops/pkg/readings"
	"github.com/dukex/agroops/pkg/services"
	"github.com/dukex/agroops/pkg/threshold"
	"github.com/dukex/agroops/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"golang.org/x/text/language"
)

const shutdownTimeout = 10 * time.Second

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	validate    *validator.Validate
	deps        web.Dependencies
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	c *catalog.Catalog,
	source readings.Source,
	eventBus eventbus.EventPublisher,
	lang language.Tag,
) (*API, error) {
	registry, err := c.SensorRegistry()
	if err != nil {
		return nil, err
	}

	profiles, err := c.ProfileStore()
	if err != nil {
		return nil, err
	}

	taskTypes, err := c.TaskTypeStore()
	if err != nil {
		return nil, err
	}

	classifier := threshold.NewClassifier()
	evaluator := evaluation.NewEvaluator(source, profiles, threshold.NewAdvisor(classifier, lang), logger)

	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		deps: web.Dependencies{
			Templates:  services.NewTemplate(persistence, registry, eventBus, logger),
			Crops:      services.NewCrop(persistence, source, classifier, eventBus, logger),
			Tasks:      services.NewTask(persistence, taskTypes, eventBus, logger),
			Evaluator:  evaluator,
			Drafts:     evaluation.NewSessionStore(evaluator, taskTypes, logger),
			Sensors:    registry,
			Profiles:   profiles,
			TaskTypes:  taskTypes,
			Readings:   source,
			Classifier: classifier,
		},
	}, nil
}

// Seed stores the catalog templates that are not stored yet.
func (a *API) Seed(ctx context.Context, templates []models.OperationTemplate) error {
	return a.deps.Templates.Seed(ctx, templates)
}

// Monitor returns a sweeper over the API's tasks and task drafts.
func (a *API) Monitor() *monitor.Monitor {
	return monitor.New(a.deps.Tasks, a.deps.Evaluator, a.deps.Drafts, a.eventBus, a.logger)
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.deps, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("agroops API")
	})

	web.Register(app, handlers)

	return app
}

// Start serves the API until ctx is done.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	errs := make(chan error, 1)

	go func() {
		errs <- app.Listen(":" + strconv.Itoa(port))
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		a.logger.InfoContext(ctx, "Shutting down agroops API")

		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}
