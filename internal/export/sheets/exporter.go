// Package sheets copies a user's expenses and subscriptions into a Google
// spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"harcama/internal/api"
	"harcama/internal/core"
	"harcama/internal/format"
	"harcama/internal/log"
)

// RowAppender appends rows to a named tab.
type RowAppender interface {
	AppendRows(ctx context.Context, sheet string, rows [][]any) (updatedRange string, err error)
}

// Result reports what one export wrote.
type Result struct {
	Expenses           int
	Subscriptions      int
	ExpensesRange      string
	SubscriptionsRange string
}

// Exporter reads records from the REST service and appends them as rows.
type Exporter struct {
	expenses           api.ExpenseStore
	subscriptions      api.SubscriptionStore
	appender           RowAppender
	formatter          *format.Formatter
	expensesSheet      string
	subscriptionsSheet string
	header             bool
	logger             *log.Logger
}

// Option tweaks an Exporter.
type Option func(*Exporter)

// WithHeader prepends a header row to each tab's batch.
func WithHeader() Option {
	return func(e *Exporter) { e.header = true }
}

func NewExporter(expenses api.ExpenseStore, subscriptions api.SubscriptionStore, appender RowAppender, f *format.Formatter, cfg Config, logger *log.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = log.Discard()
	}
	e := &Exporter{
		expenses:           expenses,
		subscriptions:      subscriptions,
		appender:           appender,
		formatter:          f,
		expensesSheet:      cfg.ExpensesSheet,
		subscriptionsSheet: cfg.SubscriptionsSheet,
		logger:             logger.WithComponent(log.ComponentExport),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export fetches both lists for userID and appends them. Nothing is
// written unless both fetches succeed.
func (e *Exporter) Export(ctx context.Context, userID uuid.UUID) (Result, error) {
	var (
		expenses []core.Expense
		subs     []core.Subscription
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = e.expenses.ListExpenses(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = e.subscriptions.ListSubscriptions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("fetch records: %w", err)
	}

	var res Result

	rows := e.withHeader(ExpenseHeader, ExpenseRows(expenses, e.formatter))
	rng, err := e.appender.AppendRows(ctx, e.expensesSheet, rows)
	if err != nil {
		return res, fmt.Errorf("export expenses: %w", err)
	}
	res.Expenses, res.ExpensesRange = len(expenses), rng

	rows = e.withHeader(SubscriptionHeader, SubscriptionRows(subs, e.formatter))
	rng, err = e.appender.AppendRows(ctx, e.subscriptionsSheet, rows)
	if err != nil {
		return res, fmt.Errorf("export subscriptions: %w", err)
	}
	res.Subscriptions, res.SubscriptionsRange = len(subs), rng

	e.logger.InfoContext(ctx, "Export finished",
		log.FieldOperation, log.OpExport,
		log.FieldUserID, userID.String(),
		"expenses", res.Expenses,
		"subscriptions", res.Subscriptions)

	return res, nil
}

func (e *Exporter) withHeader(header []any, rows [][]any) [][]any {
	if !e.header || len(rows) == 0 {
		return rows
	}
	return append([][]any{header}, rows...)
}
