package services

import (
	"fmt"
	"time"

	"harcama/internal/core"
)

// DefaultYearlyLead is the minimum notice for a yearly renewal.
const DefaultYearlyLead = 7 * 24 * time.Hour

// LeadChecker decides whether a renewal at next is close enough to now to
// remind the user about it.
type LeadChecker interface {
	Due(next, now time.Time) bool
}

// WindowChecker is due when the renewal falls before now+Lead. Renewals that
// are already past stay due; the ledger keeps them from being sent twice.
type WindowChecker struct {
	Lead time.Duration
}

func (c WindowChecker) Due(next, now time.Time) bool {
	return next.Before(now.Add(c.Lead))
}

// ReminderPolicy maps each billing period to its checker.
type ReminderPolicy map[core.BillingPeriod]LeadChecker

// DefaultReminderPolicy uses monthlyLead for monthly renewals and at least
// a week for yearly ones.
func DefaultReminderPolicy(monthlyLead time.Duration) ReminderPolicy {
	yearly := DefaultYearlyLead
	if monthlyLead > yearly {
		yearly = monthlyLead
	}
	return ReminderPolicy{
		core.Monthly: WindowChecker{Lead: monthlyLead},
		core.Yearly:  WindowChecker{Lead: yearly},
	}
}

// Checker returns the checker for period.
func (p ReminderPolicy) Checker(period core.BillingPeriod) (LeadChecker, error) {
	c, ok := p[period]
	if !ok {
		return nil, fmt.Errorf("unknown billing period: %s", period)
	}
	return c, nil
}
