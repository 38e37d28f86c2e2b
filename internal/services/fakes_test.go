package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"harcama/internal/amqp"
	"harcama/internal/api"
	"harcama/internal/core"
)

// recordingDirectory answers lookups from a fixed result and counts calls.
type recordingDirectory struct {
	lookup    api.UserLookup
	lookupErr error
	created   core.User
	createErr error

	lookups int
	creates int
}

func (d *recordingDirectory) LookupUser(context.Context, string) (api.UserLookup, error) {
	d.lookups++
	return d.lookup, d.lookupErr
}

func (d *recordingDirectory) CreateUser(_ context.Context, email string) (core.User, error) {
	d.creates++
	if d.createErr != nil {
		return core.User{}, d.createErr
	}
	u := d.created
	u.Email = email
	return u, nil
}

type fakeSession struct {
	user *core.User
	err  error
}

func (s *fakeSession) SetUser(_ context.Context, u *core.User) error {
	s.user = u
	return s.err
}

type failingStore struct{ err error }

func (f failingStore) ListExpenses(context.Context, uuid.UUID) ([]core.Expense, error) {
	return nil, f.err
}

func (f failingStore) CreateExpense(context.Context, core.CreateExpenseRequest) (core.Expense, error) {
	return core.Expense{}, f.err
}

func (f failingStore) ListSubscriptions(context.Context, uuid.UUID) ([]core.Subscription, error) {
	return nil, f.err
}

func (f failingStore) CreateSubscription(context.Context, core.CreateSubscriptionRequest) (core.Subscription, error) {
	return core.Subscription{}, f.err
}

func serverError() error {
	return &api.FetchError{Op: "test", StatusCode: http.StatusInternalServerError, StatusText: "Internal Server Error"}
}

type ledgerKey struct {
	id   uuid.UUID
	next int64
}

type memoryLedger struct {
	mu   sync.Mutex
	sent map[ledgerKey]bool
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{sent: make(map[ledgerKey]bool)}
}

func (l *memoryLedger) MarkReminderSent(_ context.Context, id uuid.UUID, next time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := ledgerKey{id, next.Unix()}
	if l.sent[k] {
		return false, nil
	}
	l.sent[k] = true
	return true, nil
}

func (l *memoryLedger) UnmarkReminder(_ context.Context, id uuid.UUID, next time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sent, ledgerKey{id, next.Unix()})
	return nil
}

type recordingPublisher struct {
	err  error
	msgs []*amqp.SubscriptionReminderMessage
}

func (p *recordingPublisher) PublishReminder(_ context.Context, msg *amqp.SubscriptionReminderMessage) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}
