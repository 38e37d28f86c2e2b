package forms

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harcama/internal/core"
)

func TestExpenseValid(t *testing.T) {
	v := NewValidator(time.UTC)
	userID := uuid.New()

	form := DecodeExpense(url.Values{
		"title":    {"  Market  "},
		"amount":   {"150,50"},
		"currency": {"TRY"},
		"category": {"Yiyecek"},
	})
	req, errs := v.Expense(form, userID)
	require.Nil(t, errs)
	assert.Equal(t, userID, req.UserID)
	assert.Equal(t, "Market", req.Title)
	assert.Equal(t, "150.5", req.Amount.String())
	assert.Equal(t, "Yiyecek", req.Category)
	assert.NoError(t, req.Validate())
}

func TestExpenseInvalid(t *testing.T) {
	v := NewValidator(time.UTC)

	cases := []struct {
		name   string
		values url.Values
		field  string
		msg    string
	}{
		{"empty title", url.Values{"title": {"   "}, "amount": {"10"}, "currency": {"TRY"}, "category": {"Diğer"}}, "title", MsgTitleRequired},
		{"long title", url.Values{"title": {strings.Repeat("a", 201)}, "amount": {"10"}, "currency": {"TRY"}, "category": {"Diğer"}}, "title", MsgTitleTooLong},
		{"zero amount", url.Values{"title": {"x"}, "amount": {"0"}, "currency": {"TRY"}, "category": {"Diğer"}}, "amount", MsgAmountPositive},
		{"negative amount", url.Values{"title": {"x"}, "amount": {"-5"}, "currency": {"TRY"}, "category": {"Diğer"}}, "amount", MsgAmountPositive},
		{"missing amount", url.Values{"title": {"x"}, "currency": {"TRY"}, "category": {"Diğer"}}, "amount", MsgAmountPositive},
		{"bad currency", url.Values{"title": {"x"}, "amount": {"1"}, "currency": {"JPY"}, "category": {"Diğer"}}, "currency", MsgInvalidCurrency},
		{"bad category", url.Values{"title": {"x"}, "amount": {"1"}, "currency": {"TRY"}, "category": {"Travel"}}, "category", MsgInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := v.Expense(DecodeExpense(tc.values), uuid.New())
			require.NotNil(t, errs)
			assert.Equal(t, tc.msg, errs.Get(tc.field))
		})
	}
}

func TestExpenseCollectsAllErrors(t *testing.T) {
	v := NewValidator(time.UTC)
	_, errs := v.Expense(ExpenseForm{}, uuid.New())
	require.Len(t, errs, 4)
	assert.Contains(t, errs.Error(), "amount: "+MsgAmountPositive)
}

func TestSubscription(t *testing.T) {
	loc := time.FixedZone("TRT", 3*3600)
	v := NewValidator(loc)

	req, errs := v.Subscription(DecodeSubscription(url.Values{
		"title":           {"Netflix"},
		"amount":          {"99.90"},
		"currency":        {"USD"},
		"billing_period":  {"yearly"},
		"next_billing_at": {"2025-02-01"},
	}), uuid.New())
	require.Nil(t, errs)
	assert.Equal(t, core.Yearly, req.BillingPeriod)
	assert.True(t, req.NextBillingAt.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, loc)))
	assert.Equal(t, "2025-02-01T00:00:00+03:00", req.NextBillingAt.Format(time.RFC3339))

	_, errs = v.Subscription(SubscriptionForm{Title: "x", Amount: "1", Currency: "TRY", BillingPeriod: "weekly"}, uuid.New())
	require.NotNil(t, errs)
	assert.Equal(t, MsgInvalidPeriod, errs.Get("billing_period"))
	assert.Equal(t, MsgNextBillingRequired, errs.Get("next_billing_at"))

	_, errs = v.Subscription(SubscriptionForm{Title: "x", Amount: "1", Currency: "TRY", BillingPeriod: "monthly", NextBillingAt: "01.02.2025"}, uuid.New())
	require.NotNil(t, errs)
	assert.Equal(t, MsgInvalidDate, errs.Get("next_billing_at"))
}

func TestLogin(t *testing.T) {
	v := NewValidator(nil)

	email, errs := v.Login(DecodeLogin(url.Values{"email": {" user@example.com "}}))
	require.Nil(t, errs)
	assert.Equal(t, "user@example.com", email)

	_, errs = v.Login(LoginForm{})
	assert.Equal(t, MsgEmailRequired, errs.Get("email"))

	_, errs = v.Login(LoginForm{Email: "not-an-email"})
	assert.Equal(t, MsgInvalidEmail, errs.Get("email"))
}

func TestDefaults(t *testing.T) {
	e := DefaultExpenseForm()
	assert.Equal(t, "TRY", e.Currency)
	assert.Equal(t, "Diğer", e.Category)

	s := DefaultSubscriptionForm(time.Date(2025, 1, 15, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, "monthly", s.BillingPeriod)
	assert.Equal(t, "2025-01-15", s.NextBillingAt)
}
