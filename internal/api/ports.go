package api

import (
	"context"

	"github.com/google/uuid"

	"harcama/internal/core"
)

// Ports consumed by the views. Client implements all of them against the
// REST service and memory.Store implements them in process.
type (
	UserDirectory interface {
		LookupUser(ctx context.Context, email string) (UserLookup, error)
		CreateUser(ctx context.Context, email string) (core.User, error)
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context, userID uuid.UUID) ([]core.Expense, error)
		CreateExpense(ctx context.Context, req core.CreateExpenseRequest) (core.Expense, error)
	}

	SubscriptionStore interface {
		ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]core.Subscription, error)
		CreateSubscription(ctx context.Context, req core.CreateSubscriptionRequest) (core.Subscription, error)
	}

	HealthChecker interface {
		Health(ctx context.Context) (HealthStatus, error)
	}

	Backend interface {
		UserDirectory
		ExpenseStore
		SubscriptionStore
		HealthChecker
	}
)

// LookupStatus tells whether a user lookup matched an account.
type LookupStatus int

const (
	NotFound LookupStatus = iota
	Found
)

func (s LookupStatus) String() string {
	if s == Found {
		return "found"
	}
	return "not_found"
}

// UserLookup is the result of a lookup that reached the service. User is
// only meaningful when Status is Found.
type UserLookup struct {
	Status LookupStatus
	User   core.User
}

// HealthStatus mirrors the body of GET /health.
type HealthStatus struct {
	Status string `json:"status"`
}
