package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"harcama/internal/api"
	"harcama/internal/core"
	"harcama/internal/log"
	"harcama/internal/metrics"
)

// SubscriptionsView is the subscriptions page. Totals always cover the
// active subscriptions, independent of the filter.
type SubscriptionsView struct {
	Filter        core.SubscriptionFilter
	Subscriptions []core.Subscription
	TotalCount    int
	ActiveCount   int
	InactiveCount int
	MonthlyTotal  decimal.Decimal
	YearlyTotal   decimal.Decimal
}

// SubscriptionService lists and creates subscriptions through the REST service.
type SubscriptionService struct {
	store   api.SubscriptionStore
	logger  *log.StructuredLogger
	metrics *metrics.Metrics
}

func NewSubscriptionService(store api.SubscriptionStore, logger *log.Logger, m *metrics.Metrics) *SubscriptionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &SubscriptionService{
		store:   store,
		logger:  log.NewStructuredLogger(logger.WithComponent(log.ComponentAPI)),
		metrics: m,
	}
}

func (s *SubscriptionService) View(ctx context.Context, userID uuid.UUID, filter core.SubscriptionFilter) (SubscriptionsView, error) {
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return SubscriptionsView{}, fmt.Errorf("list subscriptions: %w", err)
	}

	active := core.CountActive(subs)
	return SubscriptionsView{
		Filter:        filter,
		Subscriptions: core.SortSubscriptions(core.FilterSubscriptions(subs, filter)),
		TotalCount:    len(subs),
		ActiveCount:   active,
		InactiveCount: len(subs) - active,
		MonthlyTotal:  core.MonthlyRecurring(subs),
		YearlyTotal:   core.YearlyCharges(subs),
	}, nil
}

// Create submits a validated request.
func (s *SubscriptionService) Create(ctx context.Context, req core.CreateSubscriptionRequest) (core.Subscription, error) {
	sub, err := s.store.CreateSubscription(ctx, req)
	s.metrics.EntryCreated("subscription", err)

	fields := log.NewFields().
		WithUserID(req.UserID.String()).
		WithSubscription(req.Title, req.Amount.String(), req.Currency, string(req.BillingPeriod), req.NextBillingAt.Format(time.RFC3339))
	if err != nil {
		s.logger.LogError(ctx, "Failed to create subscription", err, log.ErrorTypeUpstream, log.OpCreate, fields)
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	s.logger.LogEntryCreated(ctx, sub.ID.String(), fields)
	return sub, nil
}
