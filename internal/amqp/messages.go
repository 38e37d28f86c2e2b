package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"harcama/internal/core"
)

// SubscriptionReminderMessage announces an upcoming renewal of one
// subscription. It carries everything a notifier needs to render it.
type SubscriptionReminderMessage struct {
	SubscriptionID uuid.UUID          `json:"subscription_id"`
	UserID         uuid.UUID          `json:"user_id"`
	Email          string             `json:"email"`
	Title          string             `json:"title"`
	Amount         decimal.Decimal    `json:"amount"`
	Currency       string             `json:"currency"`
	BillingPeriod  core.BillingPeriod `json:"billing_period"`
	NextBillingAt  time.Time          `json:"next_billing_at"`
	Timestamp      time.Time          `json:"timestamp"`
}

// NewSubscriptionReminder builds the reminder for sub owned by user.
func NewSubscriptionReminder(user core.User, sub core.Subscription) *SubscriptionReminderMessage {
	return &SubscriptionReminderMessage{
		SubscriptionID: sub.ID,
		UserID:         user.ID,
		Email:          user.Email,
		Title:          sub.Title,
		Amount:         sub.Amount,
		Currency:       sub.Currency,
		BillingPeriod:  sub.BillingPeriod,
		NextBillingAt:  sub.NextBillingAt,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SubscriptionReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SubscriptionReminderFromJSON decodes a message produced by ToJSON.
func SubscriptionReminderFromJSON(data []byte) (*SubscriptionReminderMessage, error) {
	var msg SubscriptionReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
