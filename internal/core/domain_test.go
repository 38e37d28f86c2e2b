package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestEnumerations(t *testing.T) {
	for _, c := range []string{"TRY", "USD", "EUR", "GBP"} {
		if !IsCurrency(c) {
			t.Fatalf("expected %s to be a currency", c)
		}
	}
	if IsCurrency("JPY") || IsCurrency("try") {
		t.Fatalf("unexpected currency accepted")
	}
	if len(Categories) != 8 || Categories[0] != "Yiyecek" || Categories[7] != DefaultCategory {
		t.Fatalf("unexpected categories %v", Categories)
	}
	if !IsCategory("Ulaşım") || IsCategory("Travel") {
		t.Fatalf("category membership broken")
	}
	if !Monthly.Valid() || !Yearly.Valid() || BillingPeriod("weekly").Valid() {
		t.Fatalf("billing period validation broken")
	}
}

func TestCreateExpenseRequestValidate(t *testing.T) {
	good := CreateExpenseRequest{
		UserID:   uuid.New(),
		Title:    "Market",
		Amount:   decimal.RequireFromString("150.50"),
		Currency: "TRY",
		Category: "Yiyecek",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(r *CreateExpenseRequest)
		want   error
	}{
		{"no user", func(r *CreateExpenseRequest) { r.UserID = uuid.Nil }, ErrMissingUser},
		{"blank title", func(r *CreateExpenseRequest) { r.Title = "   " }, ErrEmptyTitle},
		{"zero amount", func(r *CreateExpenseRequest) { r.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(r *CreateExpenseRequest) { r.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{"bad currency", func(r *CreateExpenseRequest) { r.Currency = "JPY" }, ErrInvalidCurrency},
		{"bad category", func(r *CreateExpenseRequest) { r.Category = "Other" }, ErrInvalidCategory},
	}
	for _, tc := range cases {
		r := good
		tc.mutate(&r)
		if err := r.Validate(); err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreateSubscriptionRequestValidate(t *testing.T) {
	good := CreateSubscriptionRequest{
		UserID:        uuid.New(),
		Title:         "Netflix",
		Amount:        decimal.NewFromInt(100),
		Currency:      "TRY",
		BillingPeriod: Monthly,
		NextBillingAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	r := good
	r.BillingPeriod = "weekly"
	if err := r.Validate(); err != ErrInvalidBillingPeriod {
		t.Fatalf("expected ErrInvalidBillingPeriod, got %v", err)
	}
	r = good
	r.NextBillingAt = time.Time{}
	if err := r.Validate(); err != ErrMissingNextBilling {
		t.Fatalf("expected ErrMissingNextBilling, got %v", err)
	}
}

func TestExpenseJSONAcceptsNumericAmount(t *testing.T) {
	raw := `{"id":"6f1c2a9e-0d4b-4a7f-9d55-1f0a3c8e2b11","user_id":"0b7e7c1a-4c1e-4a43-9d1f-5a4b8f2e6c77","title":"Market","amount":150.5,"currency":"TRY","category":"Yiyecek","created_at":"2025-01-15T10:00:00Z"}`
	var e Expense
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !e.Amount.Equal(decimal.RequireFromString("150.5")) {
		t.Fatalf("unexpected amount %s", e.Amount)
	}
	if e.CreatedAt.Day() != 15 {
		t.Fatalf("unexpected created_at %v", e.CreatedAt)
	}
}
