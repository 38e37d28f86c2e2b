package sheets

import (
	"harcama/internal/core"
	"harcama/internal/format"
)

var (
	ExpenseHeader      = []any{"Tarih", "Başlık", "Tutar", "Para Birimi", "Kategori"}
	SubscriptionHeader = []any{"Başlık", "Tutar", "Para Birimi", "Dönem", "Sonraki Ödeme", "Durum"}
)

// ExpenseRows turns expenses into sheet rows, newest first. Amounts are
// written as plain decimals so USER_ENTERED stores them as numbers.
func ExpenseRows(expenses []core.Expense, f *format.Formatter) [][]any {
	sorted := core.SortByNewest(expenses)
	rows := make([][]any, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, []any{
			f.InputDate(e.CreatedAt),
			e.Title,
			e.Amount.Abs().StringFixed(2),
			e.Currency,
			e.Category,
		})
	}
	return rows
}

// SubscriptionRows turns subscriptions into sheet rows, active ones first
// and each group by next billing date.
func SubscriptionRows(subs []core.Subscription, f *format.Formatter) [][]any {
	sorted := core.SortSubscriptions(subs)
	rows := make([][]any, 0, len(sorted))
	for _, s := range sorted {
		status := "Pasif"
		if s.Active {
			status = "Aktif"
		}
		rows = append(rows, []any{
			s.Title,
			s.Amount.Abs().StringFixed(2),
			s.Currency,
			format.BillingPeriodLabel(s.BillingPeriod),
			f.InputDate(s.NextBillingAt),
			status,
		})
	}
	return rows
}
