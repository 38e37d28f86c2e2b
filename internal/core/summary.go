package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultUpcomingLimit is the dashboard's upcoming-renewals length when none
// is configured.
const DefaultUpcomingLimit = 5

var twelve = decimal.NewFromInt(12)

// CategoryGroup is one bucket of GroupByCategory.
type CategoryGroup struct {
	Category string
	Expenses []Expense
	Total    decimal.Decimal
}

// Count returns the number of expenses in the group.
func (g CategoryGroup) Count() int {
	return len(g.Expenses)
}

// Currency returns the currency of the first expense; subtotals are
// displayed in it without conversion.
func (g CategoryGroup) Currency() string {
	if len(g.Expenses) == 0 {
		return DefaultCurrency
	}
	return g.Expenses[0].Currency
}

// SubscriptionFilter selects subscriptions by their active flag.
type SubscriptionFilter string

const (
	FilterAll      SubscriptionFilter = "all"
	FilterActive   SubscriptionFilter = "active"
	FilterInactive SubscriptionFilter = "inactive"
)

// ParseSubscriptionFilter maps a query value to a filter, defaulting to FilterAll.
func ParseSubscriptionFilter(s string) SubscriptionFilter {
	switch SubscriptionFilter(s) {
	case FilterActive:
		return FilterActive
	case FilterInactive:
		return FilterInactive
	default:
		return FilterAll
	}
}

// TotalOf sums the amounts of all expenses regardless of currency.
func TotalOf(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// MonthlyRecurring sums active subscriptions billed monthly.
func MonthlyRecurring(subs []Subscription) decimal.Decimal {
	return sumActive(subs, Monthly)
}

// YearlyCharges sums active subscriptions billed yearly.
func YearlyCharges(subs []Subscription) decimal.Decimal {
	return sumActive(subs, Yearly)
}

// YearlyRecurring projects one year of spending: twelve monthly charges
// plus every yearly charge of active subscriptions.
func YearlyRecurring(subs []Subscription) decimal.Decimal {
	return MonthlyRecurring(subs).Mul(twelve).Add(YearlyCharges(subs))
}

func sumActive(subs []Subscription, period BillingPeriod) decimal.Decimal {
	total := decimal.Zero
	for _, s := range subs {
		if s.Active && s.BillingPeriod == period {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// CountActive returns the number of active subscriptions.
func CountActive(subs []Subscription) int {
	n := 0
	for _, s := range subs {
		if s.Active {
			n++
		}
	}
	return n
}

// Upcoming returns at most limit active subscriptions ordered by the
// soonest renewal. Ties keep their input order. A non-positive limit
// yields an empty list.
func Upcoming(subs []Subscription, limit int) []Subscription {
	if limit <= 0 {
		return []Subscription{}
	}
	active := make([]Subscription, 0, len(subs))
	for _, s := range subs {
		if s.Active {
			active = append(active, s)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].NextBillingAt.Before(active[j].NextBillingAt)
	})
	if len(active) > limit {
		active = active[:limit]
	}
	return active
}

// GroupByCategory partitions expenses by category. Groups appear in the
// order their category is first seen and each keeps its input order.
func GroupByCategory(expenses []Expense) []CategoryGroup {
	index := make(map[string]int)
	groups := make([]CategoryGroup, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(groups)
			index[e.Category] = i
			groups = append(groups, CategoryGroup{Category: e.Category, Total: decimal.Zero})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
		groups[i].Total = groups[i].Total.Add(e.Amount)
	}
	return groups
}

// SortByNewest returns a copy of expenses ordered by creation time, newest first.
func SortByNewest(expenses []Expense) []Expense {
	out := make([]Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Recent returns the limit newest expenses.
func Recent(expenses []Expense, limit int) []Expense {
	out := SortByNewest(expenses)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilterByCategory keeps expenses of the given category. An empty
// category or "all" keeps everything.
func FilterByCategory(expenses []Expense, category string) []Expense {
	if category == "" || category == string(FilterAll) {
		out := make([]Expense, len(expenses))
		copy(out, expenses)
		return out
	}
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// FilterSubscriptions applies an active/inactive filter.
func FilterSubscriptions(subs []Subscription, filter SubscriptionFilter) []Subscription {
	out := make([]Subscription, 0, len(subs))
	for _, s := range subs {
		switch filter {
		case FilterActive:
			if !s.Active {
				continue
			}
		case FilterInactive:
			if s.Active {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// SortSubscriptions returns a copy ordered active first, then by next renewal.
func SortSubscriptions(subs []Subscription) []Subscription {
	out := make([]Subscription, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return out[i].NextBillingAt.Before(out[j].NextBillingAt)
	})
	return out
}
