package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"harcama/internal/amqp"
	"harcama/internal/api"
	"harcama/internal/core"
	"harcama/internal/log"
	"harcama/internal/metrics"
)

// ReminderLedger remembers which renewals were already announced.
type ReminderLedger interface {
	MarkReminderSent(ctx context.Context, subscriptionID uuid.UUID, nextBillingAt time.Time) (bool, error)
	UnmarkReminder(ctx context.Context, subscriptionID uuid.UUID, nextBillingAt time.Time) error
}

// ReminderPublisher delivers one reminder.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, msg *amqp.SubscriptionReminderMessage) error
}

// UserSource returns the user whose subscriptions are checked.
type UserSource func(ctx context.Context) (core.User, bool)

// ReminderProcessor finds active subscriptions renewing soon and publishes
// one reminder per renewal.
type ReminderProcessor struct {
	subscriptions api.SubscriptionStore
	user          UserSource
	ledger        ReminderLedger
	publisher     ReminderPublisher
	policy        ReminderPolicy
	logger        *log.Logger
	metrics       *metrics.Metrics
}

// NewReminderProcessor wires a processor. A nil publisher logs reminders
// instead of sending them.
func NewReminderProcessor(
	subscriptions api.SubscriptionStore,
	user UserSource,
	ledger ReminderLedger,
	publisher ReminderPublisher,
	policy ReminderPolicy,
	logger *log.Logger,
	m *metrics.Metrics,
) *ReminderProcessor {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReminderProcessor{
		subscriptions: subscriptions,
		user:          user,
		ledger:        ledger,
		publisher:     publisher,
		policy:        policy,
		logger:        logger.WithComponent(log.ComponentReminder),
		metrics:       m,
	}
}

// ProcessDueReminders returns how many reminders were sent. Nobody logged
// in is not an error.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	if p.subscriptions == nil || p.user == nil || p.ledger == nil {
		return 0, errors.New("processor not properly initialized")
	}

	user, ok := p.user(ctx)
	if !ok {
		p.logger.DebugContext(ctx, "No session user, skipping reminder run")
		return 0, nil
	}

	subs, err := p.subscriptions.ListSubscriptions(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		if !sub.Active {
			continue
		}
		checker, err := p.policy.Checker(sub.BillingPeriod)
		if err != nil {
			p.logger.WarnContext(ctx, "Skipping subscription",
				log.FieldSubscriptionID, sub.ID.String(),
				log.FieldError, err.Error())
			continue
		}
		if !checker.Due(sub.NextBillingAt, now) {
			continue
		}

		fresh, err := p.ledger.MarkReminderSent(ctx, sub.ID, sub.NextBillingAt)
		if err != nil {
			return sent, fmt.Errorf("mark reminder: %w", err)
		}
		if !fresh {
			continue
		}

		if err := p.deliver(ctx, user, sub); err != nil {
			p.metrics.ReminderSent(err)
			p.logger.ErrorContext(ctx, "Failed to publish reminder",
				log.FieldSubscriptionID, sub.ID.String(),
				log.FieldError, err.Error())
			// Leave it unmarked so the next run retries.
			if uerr := p.ledger.UnmarkReminder(ctx, sub.ID, sub.NextBillingAt); uerr != nil {
				p.logger.ErrorContext(ctx, "Failed to unmark reminder",
					log.FieldSubscriptionID, sub.ID.String(),
					log.FieldError, uerr.Error())
			}
			continue
		}
		p.metrics.ReminderSent(nil)
		sent++
	}

	p.logger.InfoContext(ctx, "Reminder run complete",
		log.FieldUserID, user.ID.String(),
		log.FieldCount, sent,
		"total_checked", len(subs))

	return sent, nil
}

func (p *ReminderProcessor) deliver(ctx context.Context, user core.User, sub core.Subscription) error {
	msg := amqp.NewSubscriptionReminder(user, sub)
	if p.publisher == nil {
		p.logger.InfoContext(ctx, "Subscription renews soon",
			log.FieldSubscriptionID, sub.ID.String(),
			log.FieldTitle, sub.Title,
			log.FieldAmount, sub.Amount.StringFixed(2),
			log.FieldCurrency, sub.Currency,
			log.FieldNextBillingAt, sub.NextBillingAt.Format(time.RFC3339))
		return nil
	}
	return p.publisher.PublishReminder(ctx, msg)
}
