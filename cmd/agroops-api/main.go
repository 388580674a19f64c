package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/agroops/pkg/cmd"
	"github.com/dukex/agroops/pkg/log"
	"github.com/dukex/agroops/pkg/monitor"
	"github.com/dukex/agroops/pkg/otelhelper"
	"github.com/dukex/agroops/pkg/threshold"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	command := &cli.Command{
		Name:                  "agroops-api",
		Usage:                 "Manage operation templates, crops and tasks and evaluate field conditions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Persistence URL (memory://, file://, postgres://, sqlite://)",
				Value:   "memory://",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "readings-url",
				Usage:   "Field reading feed (static:// serves the catalog readings, redis://)",
				Value:   "static://",
				Sources: cli.EnvVars("READINGS_URL"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Catalog file (.json, .yaml); the built-in catalog when empty",
				Sources: cli.EnvVars("CATALOG_PATH"),
			},
			&cli.StringFlag{
				Name:    "profiles-xlsx",
				Usage:   "Spreadsheet of optimal condition profiles merged into the catalog",
				Sources: cli.EnvVars("PROFILES_XLSX"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringSliceFlag{
				Name:    "kafka-brokers",
				Usage:   "Kafka broker addresses",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "sweep-schedule",
				Usage:   "Cron schedule of the open task sweep; empty disables it",
				Value:   monitor.DefaultSchedule,
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "locale",
				Usage:   "Language of advisory messages (en, ru)",
				Value:   "en",
				Sources: cli.EnvVars("LOCALE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.BoolFlag{
				Name:    "otel",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: run,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("api")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.InfoContext(ctx, "Initializing agroops API")

	if command.Bool("otel") {
		shutdown, err := otelhelper.Setup(ctx, "agroops-api")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()
	}

	schedule := command.String("sweep-schedule")
	if schedule != "" {
		if err := monitor.ValidateSchedule(schedule); err != nil {
			return err
		}
	}

	catalog, err := cmd.LoadCatalog(command.String("catalog"), command.String("profiles-xlsx"))
	if err != nil {
		return err
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		err := persistence.Close(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	source, err := cmd.NewReadings(ctx, logger, command.String("readings-url"), catalog)
	if err != nil {
		return err
	}

	defer func() {
		if err := source.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close readings source", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.StringSlice("kafka-brokers"), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	api, err := NewAPI(logger, persistence, catalog, source, eventBus, threshold.MatchLanguage(command.String("locale")))
	if err != nil {
		return err
	}

	err = api.Seed(ctx, catalog.Templates)
	if err != nil {
		return err
	}

	if schedule != "" {
		sweeper := api.Monitor()

		err = sweeper.Start(ctx, schedule)
		if err != nil {
			return err
		}

		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				logger.ErrorContext(ctx, "Failed to stop monitor", "error", err)
			}
		}()
	}

	return api.Start(ctx, command.Int("port"))
}
