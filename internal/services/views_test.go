package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harcama/internal/api"
	"harcama/internal/api/memory"
	"harcama/internal/core"
	"harcama/internal/metrics"
)

// tickingStore returns a memory store whose clock advances a minute per
// record, so creation order is also chronological order.
func tickingStore() *memory.Store {
	t := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return memory.NewWithClock(func() time.Time {
		t = t.Add(time.Minute)
		return t
	})
}

func addExpense(t *testing.T, s *memory.Store, user uuid.UUID, title, amount, category string) core.Expense {
	t.Helper()
	e, err := s.CreateExpense(context.Background(), core.CreateExpenseRequest{
		UserID: user, Title: title, Amount: decimal.RequireFromString(amount), Currency: "TRY", Category: category,
	})
	require.NoError(t, err)
	return e
}

func addSubscription(t *testing.T, s *memory.Store, user uuid.UUID, title, amount string, period core.BillingPeriod, next time.Time) core.Subscription {
	t.Helper()
	sub, err := s.CreateSubscription(context.Background(), core.CreateSubscriptionRequest{
		UserID: user, Title: title, Amount: decimal.RequireFromString(amount), Currency: "TRY", BillingPeriod: period, NextBillingAt: next,
	})
	require.NoError(t, err)
	return sub
}

func TestDashboard_Build(t *testing.T) {
	s := tickingStore()
	user := uuid.New()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	addExpense(t, s, user, "Market", "100", "Yiyecek")
	addExpense(t, s, user, "Taksi", "50.25", "Ulaşım")
	last := addExpense(t, s, user, "Kitap", "30", "Eğitim")
	addExpense(t, s, uuid.New(), "Başkası", "999", "Diğer")

	netflix := addSubscription(t, s, user, "Netflix", "100", core.Monthly, base.AddDate(0, 0, 10))
	addSubscription(t, s, user, "Domain", "1200", core.Yearly, base.AddDate(0, 0, 2))
	paused := addSubscription(t, s, user, "Gym", "500", core.Monthly, base)
	require.True(t, s.SetActive(paused.ID, false))

	d, err := NewDashboardService(s, s, 2, 5).Build(context.Background(), user)
	require.NoError(t, err)

	assert.True(t, d.TotalExpenses.Equal(decimal.RequireFromString("180.25")))
	assert.Equal(t, 3, d.ExpenseCount)
	assert.Equal(t, 2, d.ActiveSubscriptions)
	assert.Equal(t, 3, d.SubscriptionCount)
	assert.True(t, d.MonthlyRecurring.Equal(decimal.NewFromInt(100)))
	assert.True(t, d.YearlyRecurring.Equal(decimal.NewFromInt(2400)))

	require.Len(t, d.RecentExpenses, 2)
	assert.Equal(t, last.ID, d.RecentExpenses[0].ID)

	require.Len(t, d.Upcoming, 2)
	assert.Equal(t, "Domain", d.Upcoming[0].Title)
	assert.Equal(t, netflix.ID, d.Upcoming[1].ID)
}

func TestDashboard_EmptyUser(t *testing.T) {
	s := memory.New()
	d, err := NewDashboardService(s, s, 5, 5).Build(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, d.TotalExpenses.IsZero())
	assert.Empty(t, d.RecentExpenses)
	assert.Empty(t, d.Upcoming)
}

func TestDashboard_AnyFailureFails(t *testing.T) {
	s := memory.New()
	broken := failingStore{err: serverError()}

	_, err := NewDashboardService(broken, s, 5, 5).Build(context.Background(), uuid.New())
	assert.ErrorIs(t, err, api.ErrFetch)

	_, err = NewDashboardService(s, broken, 5, 5).Build(context.Background(), uuid.New())
	assert.ErrorIs(t, err, api.ErrFetch)
}

func TestExpenseView_FilterAndGroup(t *testing.T) {
	s := tickingStore()
	user := uuid.New()
	addExpense(t, s, user, "Market", "100", "Yiyecek")
	addExpense(t, s, user, "Taksi", "50", "Ulaşım")
	newest := addExpense(t, s, user, "Fırın", "20", "Yiyecek")

	svc := NewExpenseService(s, nil, metrics.New())

	v, err := svc.View(context.Background(), user, "all")
	require.NoError(t, err)
	assert.Equal(t, "", v.Category)
	assert.Equal(t, 3, v.Count)
	assert.False(t, v.Empty)
	require.Len(t, v.Groups, 2)
	assert.Equal(t, "Yiyecek", v.Groups[0].Category)
	assert.Equal(t, newest.ID, v.Groups[0].Expenses[0].ID)
	assert.True(t, v.Groups[0].Total.Equal(decimal.NewFromInt(120)))

	v, err = svc.View(context.Background(), user, "Ulaşım")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Count)
	require.Len(t, v.Groups, 1)
	assert.Equal(t, "Ulaşım", v.Groups[0].Category)

	v, err = svc.View(context.Background(), user, "Sağlık")
	require.NoError(t, err)
	assert.Zero(t, v.Count)
	assert.False(t, v.Empty)
}

func TestExpenseView_GroupsFollowServerOrder(t *testing.T) {
	s := tickingStore()
	user := uuid.New()
	first := addExpense(t, s, user, "Market", "100", "Yiyecek")
	addExpense(t, s, user, "Taksi", "50", "Ulaşım")
	second := addExpense(t, s, user, "Fırın", "20", "Yiyecek")
	addExpense(t, s, user, "Otobüs", "10", "Ulaşım")

	v, err := NewExpenseService(s, nil, nil).View(context.Background(), user, "")
	require.NoError(t, err)

	// Ulaşım holds the newest expense but Yiyecek was listed first.
	require.Len(t, v.Groups, 2)
	assert.Equal(t, "Yiyecek", v.Groups[0].Category)
	assert.Equal(t, "Ulaşım", v.Groups[1].Category)
	require.Len(t, v.Groups[0].Expenses, 2)
	assert.Equal(t, second.ID, v.Groups[0].Expenses[0].ID)
	assert.Equal(t, first.ID, v.Groups[0].Expenses[1].ID)
	assert.Equal(t, "Otobüs", v.Groups[1].Expenses[0].Title)
}

func TestDashboard_DefaultUpcomingLimit(t *testing.T) {
	s := tickingStore()
	user := uuid.New()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < core.DefaultUpcomingLimit+3; i++ {
		addSubscription(t, s, user, "Abonelik", "10", core.Monthly, base.AddDate(0, 0, i))
	}

	d, err := NewDashboardService(s, s, 5, 0).Build(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, d.Upcoming, core.DefaultUpcomingLimit)
}

func TestExpenseCreate(t *testing.T) {
	s := memory.New()
	svc := NewExpenseService(s, nil, nil)
	user := uuid.New()

	e, err := svc.Create(context.Background(), core.CreateExpenseRequest{
		UserID: user, Title: "Market", Amount: decimal.NewFromInt(10), Currency: "TRY", Category: "Yiyecek",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)

	_, err = NewExpenseService(failingStore{err: serverError()}, nil, nil).Create(context.Background(), core.CreateExpenseRequest{UserID: user})
	assert.ErrorIs(t, err, api.ErrFetch)
}

func TestSubscriptionView(t *testing.T) {
	s := tickingStore()
	user := uuid.New()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	addSubscription(t, s, user, "Netflix", "100", core.Monthly, base.AddDate(0, 0, 5))
	addSubscription(t, s, user, "Domain", "300", core.Yearly, base.AddDate(0, 0, 1))
	paused := addSubscription(t, s, user, "Gym", "500", core.Monthly, base)
	require.True(t, s.SetActive(paused.ID, false))

	svc := NewSubscriptionService(s, nil, nil)

	v, err := svc.View(context.Background(), user, core.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, 3, v.TotalCount)
	assert.Equal(t, 2, v.ActiveCount)
	assert.Equal(t, 1, v.InactiveCount)
	assert.True(t, v.MonthlyTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, v.YearlyTotal.Equal(decimal.NewFromInt(300)))
	require.Len(t, v.Subscriptions, 3)
	assert.Equal(t, "Domain", v.Subscriptions[0].Title)
	assert.Equal(t, "Gym", v.Subscriptions[2].Title)

	v, err = svc.View(context.Background(), user, core.FilterInactive)
	require.NoError(t, err)
	require.Len(t, v.Subscriptions, 1)
	assert.Equal(t, paused.ID, v.Subscriptions[0].ID)
	assert.True(t, v.MonthlyTotal.Equal(decimal.NewFromInt(100)))

	_, err = NewSubscriptionService(failingStore{err: serverError()}, nil, nil).View(context.Background(), user, core.FilterAll)
	assert.ErrorIs(t, err, api.ErrFetch)
}

func TestSubscriptionCreate(t *testing.T) {
	s := memory.New()
	sub, err := NewSubscriptionService(s, nil, nil).Create(context.Background(), core.CreateSubscriptionRequest{
		UserID:        uuid.New(),
		Title:         "Spotify",
		Amount:        decimal.RequireFromString("59.99"),
		Currency:      "TRY",
		BillingPeriod: core.Monthly,
		NextBillingAt: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, sub.Active)
}
