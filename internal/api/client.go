// Package api talks to the REST service that owns users, expenses and
// subscriptions.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"harcama/internal/core"
	"harcama/internal/log"
	"harcama/internal/metrics"
)

const (
	opLookupUser         = "lookup_user"
	opCreateUser         = "create_user"
	opListExpenses       = "list_expenses"
	opCreateExpense      = "create_expense"
	opListSubscriptions  = "list_subscriptions"
	opCreateSubscription = "create_subscription"
	opHealth             = "health"
)

// Client issues one HTTP request per call. It does not retry, time out on
// its own or cache; cancellation comes from the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentAPI) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient returns a client for the service at baseURL. A nil httpClient
// means a plain &http.Client{} without timeout.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     log.New(log.DefaultConfig()).WithComponent(log.ComponentAPI),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createUserBody struct {
	Email string `json:"email"`
}

type createExpenseBody struct {
	UserID   string  `json:"user_id"`
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Category string  `json:"category"`
}

type createSubscriptionBody struct {
	UserID        string  `json:"user_id"`
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	BillingPeriod string  `json:"billing_period"`
	NextBillingAt string  `json:"next_billing_at"`
}

// LookupUser finds a user by email. A 404 yields NotFound; any other
// failure is returned as a *FetchError.
func (c *Client) LookupUser(ctx context.Context, email string) (UserLookup, error) {
	var u core.User
	err := c.do(ctx, opLookupUser, http.MethodGet, "/users", url.Values{"email": {email}}, nil, &u)
	if err != nil {
		if IsNotFound(err) {
			return UserLookup{Status: NotFound}, nil
		}
		return UserLookup{}, err
	}
	return UserLookup{Status: Found, User: u}, nil
}

func (c *Client) CreateUser(ctx context.Context, email string) (core.User, error) {
	var u core.User
	if err := c.do(ctx, opCreateUser, http.MethodPost, "/users", nil, createUserBody{Email: email}, &u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (c *Client) ListExpenses(ctx context.Context, userID uuid.UUID) ([]core.Expense, error) {
	var out []core.Expense
	if err := c.do(ctx, opListExpenses, http.MethodGet, "/expenses", url.Values{"user_id": {userID.String()}}, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Expense{}
	}
	return out, nil
}

func (c *Client) CreateExpense(ctx context.Context, req core.CreateExpenseRequest) (core.Expense, error) {
	body := createExpenseBody{
		UserID:   req.UserID.String(),
		Title:    req.Title,
		Amount:   req.Amount.InexactFloat64(),
		Currency: req.Currency,
		Category: req.Category,
	}
	var e core.Expense
	if err := c.do(ctx, opCreateExpense, http.MethodPost, "/expenses", nil, body, &e); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (c *Client) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]core.Subscription, error) {
	var out []core.Subscription
	if err := c.do(ctx, opListSubscriptions, http.MethodGet, "/subscriptions", url.Values{"user_id": {userID.String()}}, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Subscription{}
	}
	return out, nil
}

func (c *Client) CreateSubscription(ctx context.Context, req core.CreateSubscriptionRequest) (core.Subscription, error) {
	body := createSubscriptionBody{
		UserID:        req.UserID.String(),
		Title:         req.Title,
		Amount:        req.Amount.InexactFloat64(),
		Currency:      req.Currency,
		BillingPeriod: string(req.BillingPeriod),
		NextBillingAt: req.NextBillingAt.Format(time.RFC3339),
	}
	var s core.Subscription
	if err := c.do(ctx, opCreateSubscription, http.MethodPost, "/subscriptions", nil, body, &s); err != nil {
		return core.Subscription{}, err
	}
	return s, nil
}

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var h HealthStatus
	if err := c.do(ctx, opHealth, http.MethodGet, "/health", nil, nil, &h); err != nil {
		return HealthStatus{}, err
	}
	return h, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveAPI(op, time.Since(start), err)
		if err != nil {
			c.logger.DebugContext(ctx, "API call failed",
				log.FieldOperation, op,
				log.FieldDuration, time.Since(start).Milliseconds(),
				log.FieldError, err.Error())
			return
		}
		c.logger.DebugContext(ctx, "API call completed",
			log.FieldOperation, op,
			log.FieldDuration, time.Since(start).Milliseconds())
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, mErr := json.Marshal(in)
		if mErr != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("encode request: %w", mErr)}
		}
		body = bytes.NewReader(buf)
	}

	req, rErr := http.NewRequestWithContext(ctx, method, endpoint, body)
	if rErr != nil {
		return &FetchError{Op: op, Err: rErr}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, dErr := c.httpClient.Do(req)
	if dErr != nil {
		return &FetchError{Op: op, Err: dErr}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &FetchError{Op: op, StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, StatusCode: resp.StatusCode, StatusText: statusText(resp), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// statusText returns the reason phrase of resp, e.g. "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
