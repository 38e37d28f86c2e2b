package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"harcama/internal/api"
	"harcama/internal/core"
)

// Dashboard is everything the overview page shows.
type Dashboard struct {
	TotalExpenses       decimal.Decimal
	ExpenseCount        int
	ActiveSubscriptions int
	SubscriptionCount   int
	MonthlyRecurring    decimal.Decimal
	YearlyRecurring     decimal.Decimal
	RecentExpenses      []core.Expense
	Upcoming            []core.Subscription
}

// DashboardService loads both lists for a user and derives the overview.
type DashboardService struct {
	expenses      api.ExpenseStore
	subscriptions api.SubscriptionStore
	recentLimit   int
	upcomingLimit int
}

// NewDashboardService builds the dashboard view. A non-positive
// upcomingLimit falls back to core.DefaultUpcomingLimit.
func NewDashboardService(expenses api.ExpenseStore, subscriptions api.SubscriptionStore, recentLimit, upcomingLimit int) *DashboardService {
	if upcomingLimit <= 0 {
		upcomingLimit = core.DefaultUpcomingLimit
	}
	return &DashboardService{
		expenses:      expenses,
		subscriptions: subscriptions,
		recentLimit:   recentLimit,
		upcomingLimit: upcomingLimit,
	}
}

// Build fetches expenses and subscriptions concurrently. Either failure
// fails the whole dashboard.
func (s *DashboardService) Build(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	var (
		expenses []core.Expense
		subs     []core.Subscription
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListExpenses(gctx, userID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		subs, err = s.subscriptions.ListSubscriptions(gctx, userID)
		if err != nil {
			return fmt.Errorf("list subscriptions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		TotalExpenses:       core.TotalOf(expenses),
		ExpenseCount:        len(expenses),
		ActiveSubscriptions: core.CountActive(subs),
		SubscriptionCount:   len(subs),
		MonthlyRecurring:    core.MonthlyRecurring(subs),
		YearlyRecurring:     core.YearlyRecurring(subs),
		RecentExpenses:      core.Recent(expenses, s.recentLimit),
		Upcoming:            core.Upcoming(subs, s.upcomingLimit),
	}, nil
}
