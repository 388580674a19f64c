package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dukex/agroops/pkg/cmd"
	"github.com/dukex/agroops/pkg/events"
	"github.com/dukex/agroops/pkg/eventbus"
	"github.com/dukex/agroops/pkg/log"
	"github.com/urfave/cli/v3"
)

func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print advisory and task events published by the API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringSliceFlag{
				Name:    "kafka-brokers",
				Usage:   "Kafka broker addresses",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("agroops").With("action", "watch")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bus, err := cmd.NewEventBus(command.String("event-bus"), command.StringSlice("kafka-brokers"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			err = subscribePrinter(ctx, bus, command.Root().Writer)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Watching events")
			<-ctx.Done()

			return nil
		},
	}
}

// subscribePrinter writes one line per advisory and task event to w.
func subscribePrinter(ctx context.Context, bus eventbus.EventSubscriber, w io.Writer) error {
	err := bus.Handle(events.AdvisoryRaisedEvent, func(_ context.Context, event any) error {
		raised, ok := event.(*events.AdvisoryRaised)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}

		for _, advisory := range raised.Advisories {
			_, err := fmt.Fprintf(w, "%s task=%s field=%s crop=%s %s: %s\n",
				raised.Type, raised.TaskID, raised.Field, raised.CropKind, advisory.Parameter, advisory.Message)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, eventType := range []events.EventType{events.TaskCreatedEvent, events.TaskStatusChangedEvent} {
		err = bus.Handle(eventType, func(_ context.Context, event any) error {
			changed, ok := event.(*events.TaskChanged)
			if !ok {
				return fmt.Errorf("unexpected event %T", event)
			}

			_, err := fmt.Fprintf(w, "%s task=%s type=%s status=%s\n", changed.Type, changed.TaskID, changed.TaskType, changed.To)

			return err
		})
		if err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
