// Package format renders amounts, dates and relative day phrases for display
// using Turkish conventions.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"harcama/internal/core"
)

var symbols = map[string]string{
	"TRY": "₺",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

var longMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

var shortMonths = [...]string{
	"Oca", "Şub", "Mar", "Nis", "May", "Haz",
	"Tem", "Ağu", "Eyl", "Eki", "Kas", "Ara",
}

// Formatter formats values in a fixed location against an injectable clock.
type Formatter struct {
	loc *time.Location
	now func() time.Time
}

// New returns a Formatter for loc. A nil loc means UTC and a nil clock means time.Now.
func New(loc *time.Location, now func() time.Time) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Formatter{loc: loc, now: now}
}

// Location returns the display location.
func (f *Formatter) Location() *time.Location {
	return f.loc
}

// Now returns the current time in the display location.
func (f *Formatter) Now() time.Time {
	return f.now().In(f.loc)
}

// Currency formats amount with two decimals, Turkish separators and the
// symbol of code. Codes without a symbol are printed before the number.
// Digits are taken from the decimal itself, so large amounts stay exact.
func (f *Formatter) Currency(amount decimal.Decimal, code string) string {
	sign := ""
	amount = amount.Round(2)
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	whole, frac, _ := strings.Cut(amount.StringFixed(2), ".")
	n := groupThousands(whole) + "," + frac

	if sym, ok := symbols[code]; ok {
		return sign + sym + n
	}
	if code == "" {
		return sign + n
	}
	return fmt.Sprintf("%s%s %s", sign, code, n)
}

// LongDate renders "15 Ocak 2025".
func (f *Formatter) LongDate(t time.Time) string {
	t = t.In(f.loc)
	return fmt.Sprintf("%d %s %d", t.Day(), longMonths[t.Month()-1], t.Year())
}

// ShortDate renders "15 Oca".
func (f *Formatter) ShortDate(t time.Time) string {
	t = t.In(f.loc)
	return fmt.Sprintf("%d %s", t.Day(), shortMonths[t.Month()-1])
}

// RelativeDays returns the number of calendar days from now to target in
// the display location. Positive values lie in the future.
func (f *Formatter) RelativeDays(target, now time.Time) int {
	return int(civilDay(target.In(f.loc)).Sub(civilDay(now.In(f.loc))).Hours() / 24)
}

// Relative describes target relative to the current day.
func (f *Formatter) Relative(target time.Time) string {
	days := f.RelativeDays(target, f.now())
	switch {
	case days < 0:
		return fmt.Sprintf("%d gün önce", -days)
	case days == 0:
		return "Bugün"
	case days == 1:
		return "Yarın"
	case days <= 7:
		return fmt.Sprintf("%d gün sonra", days)
	default:
		return f.ShortDate(target)
	}
}

// InputDate renders t as an HTML date input value.
func (f *Formatter) InputDate(t time.Time) string {
	return t.In(f.loc).Format("2006-01-02")
}

// BillingPeriodLabel returns the display label of a billing period.
func BillingPeriodLabel(p core.BillingPeriod) string {
	switch p {
	case core.Monthly:
		return "Aylık"
	case core.Yearly:
		return "Yıllık"
	default:
		return string(p)
	}
}

// groupThousands inserts Turkish thousands separators into a string of
// digits. Values that fit in a uint64 go through the locale printer.
func groupThousands(digits string) string {
	if u, err := strconv.ParseUint(digits, 10, 64); err == nil {
		return message.NewPrinter(language.Turkish).Sprint(number.Decimal(u))
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// civilDay maps t's calendar date onto UTC midnight so that day arithmetic
// is not skewed by DST transitions.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
