// Package monitor periodically re-evaluates the fields of open tasks and
// raises an event when their conditions turn blocking.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/agroops/pkg/eventbus"
	"github.com/dukex/agroops/pkg/evaluation"
	"github.com/dukex/agroops/pkg/events"
	"github.com/dukex/agroops/pkg/models"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the sweep every fifteen minutes.
const DefaultSchedule = "*/15 * * * *"

// DraftTTL is how long an untouched task draft survives a sweep.
const DraftTTL = 24 * time.Hour

// Tasks lists the tasks still awaiting completion.
type Tasks interface {
	ListOpen(ctx context.Context) ([]*models.Task, error)
}

// Report summarises one sweep.
type Report struct {
	Checked int `json:"checked"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Raised  int `json:"raised"`
	Pruned  int `json:"pruned"`
}

// Monitor sweeps open tasks on a cron schedule.
type Monitor struct {
	tasks     Tasks
	evaluator *evaluation.Evaluator
	drafts    *evaluation.SessionStore
	publisher eventbus.EventPublisher
	logger    *slog.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

// New creates a monitor. drafts may be nil when no task draft store runs.
func New(
	tasks Tasks,
	evaluator *evaluation.Evaluator,
	drafts *evaluation.SessionStore,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Monitor {
	return &Monitor{
		tasks:     tasks,
		evaluator: evaluator,
		drafts:    drafts,
		publisher: publisher,
		logger:    logger.With("module", "monitor"),
		now:       time.Now,
	}
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron expression '%s': %w", schedule, err)
	}

	return nil
}

// Start schedules the sweep. Overlapping runs are skipped.
func (m *Monitor) Start(ctx context.Context, schedule string) error {
	err := ValidateSchedule(schedule)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron != nil {
		return errors.New("monitor already started")
	}

	m.ctx, m.cancel = context.WithCancel(ctx)

	logger := cronLogger{m.logger}
	m.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))

	entryID, err := m.cron.AddFunc(schedule, m.run)
	if err != nil {
		m.cron = nil
		m.cancel()

		return fmt.Errorf("failed to add sweep job: %w", err)
	}

	m.cron.Start()
	m.logger.InfoContext(ctx, "Monitor started", "schedule", schedule, "entry_id", entryID)

	return nil
}

// Stop cancels a running sweep and waits for it to return.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	scheduler := m.cron
	m.cron = nil
	m.mu.Unlock()

	if scheduler == nil {
		return nil
	}

	m.cancel()

	select {
	case <-scheduler.Stop().Done():
		m.logger.InfoContext(ctx, "Monitor stopped")

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) run() {
	report, err := m.Sweep(m.ctx)
	if err != nil {
		m.logger.ErrorContext(m.ctx, "Sweep failed", "error", err)

		return
	}

	m.logger.InfoContext(m.ctx, "Sweep finished",
		"checked", report.Checked, "skipped", report.Skipped, "failed", report.Failed,
		"raised", report.Raised, "pruned", report.Pruned)
}

// Sweep evaluates every open task bound to a field and a crop kind and
// publishes an advisory.raised event for each blocking one. Tasks that
// cannot be evaluated are logged and counted, never fatal.
func (m *Monitor) Sweep(ctx context.Context) (Report, error) {
	var report Report

	tasks, err := m.tasks.ListOpen(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list open tasks: %w", err)
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		if task.Field == "" || task.CropKind == "" {
			report.Skipped++

			continue
		}

		report.Checked++

		diagnostics, err := m.evaluator.ListAdvisories(ctx, task.Field, task.CropKind)
		if err != nil {
			report.Failed++
			m.logger.WarnContext(ctx, "Failed to evaluate task", "task_id", task.ID, "field", task.Field,
				"crop_kind", task.CropKind, "error", err)

			continue
		}

		if !diagnostics.Blocking {
			continue
		}

		err = m.publisher.Publish(ctx, task.ID, events.NewAdvisoryRaised(task, diagnostics.Critical()))
		if err != nil {
			m.logger.ErrorContext(ctx, "Failed to publish advisory", "task_id", task.ID, "error", err)

			continue
		}

		report.Raised++
	}

	if m.drafts != nil {
		report.Pruned = m.drafts.Prune(ctx, m.now().Add(-DraftTTL))
	}

	return report, nil
}

// cronLogger routes cron's job logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
