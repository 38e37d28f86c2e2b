// Package memory is an in-process stand-in for the REST service, used for
// demo mode and tests.
package memory

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"harcama/internal/api"
	"harcama/internal/core"
)

var _ api.Backend = (*Store)(nil)

type Store struct {
	mu            sync.Mutex
	now           func() time.Time
	users         map[string]core.User
	expenses      []core.Expense
	subscriptions []core.Subscription
}

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns a store that stamps created_at with now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:   now,
		users: make(map[string]core.User),
	}
}

func (s *Store) LookupUser(_ context.Context, email string) (api.UserLookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.TrimSpace(email)]
	if !ok {
		return api.UserLookup{Status: api.NotFound}, nil
	}
	return api.UserLookup{Status: api.Found, User: u}, nil
}

func (s *Store) CreateUser(_ context.Context, email string) (core.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return core.User{}, badRequest("create_user")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	u := core.User{ID: uuid.New(), Email: email, CreatedAt: s.now().UTC()}
	s.users[email] = u
	return u, nil
}

func (s *Store) ListExpenses(_ context.Context, userID uuid.UUID) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, req core.CreateExpenseRequest) (core.Expense, error) {
	if err := req.Validate(); err != nil {
		return core.Expense{}, badRequest("create_expense")
	}
	e := core.Expense{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Title:     req.Title,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Category:  req.Category,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) ListSubscriptions(_ context.Context, userID uuid.UUID) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

// CreateSubscription stores an active subscription, as the service does.
func (s *Store) CreateSubscription(_ context.Context, req core.CreateSubscriptionRequest) (core.Subscription, error) {
	if err := req.Validate(); err != nil {
		return core.Subscription{}, badRequest("create_subscription")
	}
	sub := core.Subscription{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Title:         req.Title,
		Amount:        req.Amount,
		Currency:      req.Currency,
		BillingPeriod: req.BillingPeriod,
		NextBillingAt: req.NextBillingAt.UTC(),
		Active:        true,
		CreatedAt:     s.now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, sub)
	return sub, nil
}

// SetActive flips the active flag of a subscription. The service has no
// endpoint for this; it exists so demo data can hold inactive entries.
func (s *Store) SetActive(id uuid.UUID, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subscriptions {
		if s.subscriptions[i].ID == id {
			s.subscriptions[i].Active = active
			return true
		}
	}
	return false
}

func (s *Store) Health(context.Context) (api.HealthStatus, error) {
	return api.HealthStatus{Status: "okey"}, nil
}

func badRequest(op string) error {
	return &api.FetchError{Op: op, StatusCode: http.StatusBadRequest, StatusText: http.StatusText(http.StatusBadRequest)}
}
