package services

import (
	"context"
	"log/slog"

	"github.com/dukex/agroops/pkg/eventbus"
	"github.com/dukex/agroops/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dukex/agroops/pkg/services"

// base carries what every service shares.
type base struct {
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	locks     *keyedMutex
}

func newBase(logger *slog.Logger, publisher eventbus.EventPublisher, module string) base {
	if logger == nil {
		logger = slog.Default()
	}

	return base{
		logger:    logger.With("module", module),
		publisher: publisher,
		tracer:    otelhelper.Tracer(tracerName),
		locks:     newKeyedMutex(),
	}
}

// nolint:spancheck // Callers end the span.
func (b *base) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, b.tracer, name, attrs...)
}

// fail records err on span and returns it unchanged.
func fail(span trace.Span, err error) error {
	otelhelper.SetError(span, err)

	return err
}

// publish emits event after a successful mutation. A publishing failure is
// logged and never undoes the mutation.
func (b *base) publish(ctx context.Context, key string, event eventbus.Event) {
	if b.publisher == nil {
		return
	}

	err := b.publisher.Publish(ctx, key, event)
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "key", key, "error", err)
	}
}
