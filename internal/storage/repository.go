package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the client's local key/value state and the
// ledger of sent renewal reminders.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies migrations. ":memory:" opens a private in-memory database.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetItem returns the value stored under key and whether it exists.
func (r *SQLiteRepository) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := r.queries.GetItem(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func (r *SQLiteRepository) SetItem(ctx context.Context, key, value string) error {
	err := r.queries.SetItem(ctx, SetItemParams{Key: key, Value: value, UpdatedAt: r.now().UTC()})
	if err != nil {
		return fmt.Errorf("set item %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key; removing a missing key is not an error.
func (r *SQLiteRepository) RemoveItem(ctx context.Context, key string) error {
	if err := r.queries.RemoveItem(ctx, key); err != nil {
		return fmt.Errorf("remove item %s: %w", key, err)
	}
	return nil
}

// MarkReminderSent records a reminder for one renewal of a subscription.
// It returns false when that renewal was already recorded.
func (r *SQLiteRepository) MarkReminderSent(ctx context.Context, subscriptionID uuid.UUID, nextBillingAt time.Time) (bool, error) {
	n, err := r.queries.InsertReminder(ctx, InsertReminderParams{
		SubscriptionID: subscriptionID.String(),
		NextBillingAt:  renewalKey(nextBillingAt),
		SentAt:         r.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("mark reminder %s: %w", subscriptionID, err)
	}
	return n == 1, nil
}

// UnmarkReminder forgets a recorded reminder so it can be retried.
func (r *SQLiteRepository) UnmarkReminder(ctx context.Context, subscriptionID uuid.UUID, nextBillingAt time.Time) error {
	if err := r.queries.DeleteReminder(ctx, subscriptionID.String(), renewalKey(nextBillingAt)); err != nil {
		return fmt.Errorf("unmark reminder %s: %w", subscriptionID, err)
	}
	return nil
}

// ReminderSent reports whether a reminder for that renewal was recorded.
func (r *SQLiteRepository) ReminderSent(ctx context.Context, subscriptionID uuid.UUID, nextBillingAt time.Time) (bool, error) {
	n, err := r.queries.CountReminders(ctx, subscriptionID.String(), renewalKey(nextBillingAt))
	if err != nil {
		return false, fmt.Errorf("check reminder %s: %w", subscriptionID, err)
	}
	return n > 0, nil
}

// PruneReminders drops ledger rows older than the given age.
func (r *SQLiteRepository) PruneReminders(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := r.queries.PruneReminders(ctx, r.now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune reminders: %w", err)
	}
	return n, nil
}

func renewalKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
