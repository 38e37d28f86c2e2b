// Package worker runs the periodic reminder check.
package worker

import (
	"context"
	"time"

	"harcama/internal/log"
)

// DefaultRetention keeps ledger entries long enough to outlive a yearly
// renewal cycle.
const DefaultRetention = 400 * 24 * time.Hour

// ReminderRunner sends the reminders due at now.
type ReminderRunner interface {
	ProcessDueReminders(ctx context.Context, now time.Time) (int, error)
}

// LedgerPruner forgets reminders sent before the retention window.
type LedgerPruner interface {
	PruneReminders(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ReminderWorker checks for due reminders once at start and then on every
// tick of interval.
type ReminderWorker struct {
	runner    ReminderRunner
	pruner    LedgerPruner
	interval  time.Duration
	retention time.Duration
	logger    *log.Logger
	now       func() time.Time
}

func NewReminderWorker(runner ReminderRunner, pruner LedgerPruner, interval time.Duration, logger *log.Logger) *ReminderWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderWorker{
		runner:    runner,
		pruner:    pruner,
		interval:  interval,
		retention: DefaultRetention,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) {
	w.logger.InfoContext(ctx, "Reminder worker started", "interval", w.interval.String())

	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Reminder worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce processes due reminders and prunes the ledger. Failures are
// logged; the next tick tries again.
func (w *ReminderWorker) RunOnce(ctx context.Context) {
	now := w.now()

	sent, err := w.runner.ProcessDueReminders(ctx, now)
	if err != nil {
		w.logger.ErrorContext(ctx, "Reminder run failed",
			log.FieldOperation, log.OpPublish,
			log.FieldError, err.Error())
	} else {
		w.logger.InfoContext(ctx, "Reminder run complete",
			log.FieldCount, sent,
			"next_check", now.Add(w.interval).Format("15:04:05"))
	}

	if w.pruner == nil {
		return
	}
	pruned, err := w.pruner.PruneReminders(ctx, w.retention)
	if err != nil {
		w.logger.WarnContext(ctx, "Pruning reminder ledger failed",
			log.FieldErrorType, log.ErrorTypeDatabase,
			log.FieldError, err.Error())
		return
	}
	if pruned > 0 {
		w.logger.DebugContext(ctx, "Pruned reminder ledger", log.FieldCount, pruned)
	}
}
