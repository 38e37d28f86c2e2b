package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harcama/internal/core"
	"harcama/internal/log"
	"harcama/internal/metrics"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), WithLogger(log.Discard()), WithMetrics(metrics.New()))
}

func TestLookupUser(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/users", r.URL.Path)
			assert.Equal(t, "a+b@x.com", r.URL.Query().Get("email"))
			_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "email": "a+b@x.com", "created_at": "2025-01-01T00:00:00Z"})
		})
		res, err := c.LookupUser(context.Background(), "a+b@x.com")
		require.NoError(t, err)
		assert.Equal(t, Found, res.Status)
		assert.Equal(t, id, res.User.ID)
	})

	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "user not found", http.StatusNotFound)
		})
		res, err := c.LookupUser(context.Background(), "nobody@x.com")
		require.NoError(t, err)
		assert.Equal(t, NotFound, res.Status)
	})

	t.Run("server error is not treated as not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := c.LookupUser(context.Background(), "a@x.com")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFetch))
		assert.Equal(t, "API Error: Internal Server Error", err.Error())

		var fe *FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
		assert.Equal(t, opLookupUser, fe.Op)
	})
}

func TestCreateUser(t *testing.T) {
	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new@x.com", body["email"])
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "email": body["email"]})
	})
	u, err := c.CreateUser(context.Background(), "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "new@x.com", u.Email)
}

func TestListExpenses(t *testing.T) {
	userID := uuid.New()

	t.Run("decodes records", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/expenses", r.URL.Path)
			assert.Equal(t, userID.String(), r.URL.Query().Get("user_id"))
			_, _ = w.Write([]byte(`[{"id":"` + uuid.NewString() + `","user_id":"` + userID.String() + `","title":"Market","amount":150.5,"currency":"TRY","category":"Yiyecek","created_at":"2025-01-15T10:00:00Z"}]`))
		})
		got, err := c.ListExpenses(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Market", got[0].Title)
		assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("150.5")))
	})

	t.Run("null body is an empty list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		})
		got, err := c.ListExpenses(context.Background(), userID)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("non-2xx fails", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		_, err := c.ListExpenses(context.Background(), userID)
		assert.EqualError(t, err, "API Error: Bad Request")
	})
}

func TestCreateExpenseSendsNumericAmount(t *testing.T) {
	userID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 150.5, body["amount"])
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, "Yiyecek", body["category"])
		body["id"] = uuid.NewString()
		_ = json.NewEncoder(w).Encode(body)
	})
	e, err := c.CreateExpense(context.Background(), core.CreateExpenseRequest{
		UserID:   userID,
		Title:    "Market",
		Amount:   decimal.RequireFromString("150.50"),
		Currency: "TRY",
		Category: "Yiyecek",
	})
	require.NoError(t, err)
	assert.Equal(t, "Market", e.Title)
}

func TestCreateSubscriptionSendsRFC3339(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	next := time.Date(2025, 2, 1, 0, 0, 0, 0, loc)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025-02-01T00:00:00+03:00", body["next_billing_at"])
		assert.Equal(t, "monthly", body["billing_period"])
		body["id"] = uuid.NewString()
		body["active"] = true
		_ = json.NewEncoder(w).Encode(body)
	})
	s, err := c.CreateSubscription(context.Background(), core.CreateSubscriptionRequest{
		UserID:        uuid.New(),
		Title:         "Netflix",
		Amount:        decimal.NewFromInt(100),
		Currency:      "TRY",
		BillingPeriod: core.Monthly,
		NextBillingAt: next,
	})
	require.NoError(t, err)
	assert.True(t, s.Active)
	assert.True(t, s.NextBillingAt.Equal(next))
}

func TestListSubscriptionsNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	got, err := c.ListSubscriptions(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"okey"}`))
	})
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "okey", h.Status)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(base, nil, WithLogger(log.Discard()))
	_, err := c.ListExpenses(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.False(t, IsNotFound(err))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.StatusCode)
	assert.NotNil(t, fe.Err)
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListSubscriptions(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
}
