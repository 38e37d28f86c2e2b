package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const getItem = `SELECT value FROM local_storage WHERE key = ?`

func (q *Queries) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getItem, key).Scan(&value)
	return value, err
}

const setItem = `INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

type SetItemParams struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

func (q *Queries) SetItem(ctx context.Context, arg SetItemParams) error {
	_, err := q.db.ExecContext(ctx, setItem, arg.Key, arg.Value, dbTime(arg.UpdatedAt))
	return err
}

const removeItem = `DELETE FROM local_storage WHERE key = ?`

func (q *Queries) RemoveItem(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, removeItem, key)
	return err
}

const insertReminder = `INSERT OR IGNORE INTO reminder_log (subscription_id, next_billing_at, sent_at) VALUES (?, ?, ?)`

type InsertReminderParams struct {
	SubscriptionID string
	NextBillingAt  string
	SentAt         time.Time
}

// InsertReminder returns the number of inserted rows: 0 when the reminder
// was already recorded.
func (q *Queries) InsertReminder(ctx context.Context, arg InsertReminderParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertReminder, arg.SubscriptionID, arg.NextBillingAt, dbTime(arg.SentAt))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteReminder = `DELETE FROM reminder_log WHERE subscription_id = ? AND next_billing_at = ?`

func (q *Queries) DeleteReminder(ctx context.Context, subscriptionID, nextBillingAt string) error {
	_, err := q.db.ExecContext(ctx, deleteReminder, subscriptionID, nextBillingAt)
	return err
}

const countReminders = `SELECT COUNT(*) FROM reminder_log WHERE subscription_id = ? AND next_billing_at = ?`

func (q *Queries) CountReminders(ctx context.Context, subscriptionID, nextBillingAt string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countReminders, subscriptionID, nextBillingAt).Scan(&n)
	return n, err
}

const pruneReminders = `DELETE FROM reminder_log WHERE sent_at < ?`

func (q *Queries) PruneReminders(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, pruneReminders, dbTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// dbTime renders t in the fixed-width layout used by CURRENT_TIMESTAMP so
// that stored timestamps compare correctly as text.
func dbTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
