package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Monthly BillingPeriod = "monthly"
	Yearly  BillingPeriod = "yearly"
)

const (
	DefaultCurrency = "TRY"
	DefaultCategory = "Diğer"
)

// Currencies lists the currency codes an entry may be tagged with.
// Amounts are never converted between them.
var Currencies = []string{"TRY", "USD", "EUR", "GBP"}

// Categories lists expense categories in display order.
var Categories = []string{
	"Yiyecek",
	"Ulaşım",
	"Alışveriş",
	"Faturalar",
	"Eğlence",
	"Sağlık",
	"Eğitim",
	"Diğer",
}

// BillingPeriods lists the supported renewal periods in display order.
var BillingPeriods = []BillingPeriod{Monthly, Yearly}

type (
	BillingPeriod string

	User struct {
		ID        uuid.UUID `json:"id"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
	}

	Expense struct {
		ID        uuid.UUID       `json:"id"`
		UserID    uuid.UUID       `json:"user_id"`
		Title     string          `json:"title"`
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
		Category  string          `json:"category"`
		CreatedAt time.Time       `json:"created_at"`
	}

	Subscription struct {
		ID            uuid.UUID       `json:"id"`
		UserID        uuid.UUID       `json:"user_id"`
		Title         string          `json:"title"`
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency"`
		BillingPeriod BillingPeriod   `json:"billing_period"`
		NextBillingAt time.Time       `json:"next_billing_at"`
		Active        bool            `json:"active"`
		CreatedAt     time.Time       `json:"created_at"`
	}

	CreateExpenseRequest struct {
		UserID   uuid.UUID
		Title    string
		Amount   decimal.Decimal
		Currency string
		Category string
	}

	CreateSubscriptionRequest struct {
		UserID        uuid.UUID
		Title         string
		Amount        decimal.Decimal
		Currency      string
		BillingPeriod BillingPeriod
		NextBillingAt time.Time
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyTitle           = errors.New("empty title")
	ErrEmptyEmail           = errors.New("empty email")
	ErrMissingUser          = errors.New("missing user id")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidBillingPeriod = errors.New("invalid billing period")
	ErrMissingNextBilling   = errors.New("missing next billing date")
)

// IsCurrency reports whether code is one of the supported currencies.
func IsCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// IsCategory reports whether name is one of the fixed categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func (p BillingPeriod) Valid() bool {
	return p == Monthly || p == Yearly
}

func (u User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrMissingUser
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

func (r CreateExpenseRequest) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrMissingUser
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !IsCurrency(r.Currency) {
		return ErrInvalidCurrency
	}
	if !IsCategory(r.Category) {
		return ErrInvalidCategory
	}
	return nil
}

func (r CreateSubscriptionRequest) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrMissingUser
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !IsCurrency(r.Currency) {
		return ErrInvalidCurrency
	}
	if !r.BillingPeriod.Valid() {
		return ErrInvalidBillingPeriod
	}
	if r.NextBillingAt.IsZero() {
		return ErrMissingNextBilling
	}
	return nil
}
