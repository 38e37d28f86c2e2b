package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"harcama/internal/api"
	"harcama/internal/core"
	"harcama/internal/log"
	"harcama/internal/metrics"
)

// ExpensesView is the expenses page: the active category filter and the
// matching expenses grouped by category, newest first within each group.
type ExpensesView struct {
	Category   string
	Categories []string
	Groups     []core.CategoryGroup
	Count      int
	// Empty is true when the user has no expenses at all, as opposed to
	// none in the selected category.
	Empty bool
}

// ExpenseService lists and creates expenses through the REST service.
type ExpenseService struct {
	store   api.ExpenseStore
	logger  *log.StructuredLogger
	metrics *metrics.Metrics
}

func NewExpenseService(store api.ExpenseStore, logger *log.Logger, m *metrics.Metrics) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExpenseService{
		store:   store,
		logger:  log.NewStructuredLogger(logger.WithComponent(log.ComponentAPI)),
		metrics: m,
	}
}

// View loads the user's expenses and applies the category filter. An
// empty category or "all" shows every category.
func (s *ExpenseService) View(ctx context.Context, userID uuid.UUID, category string) (ExpensesView, error) {
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return ExpensesView{}, fmt.Errorf("list expenses: %w", err)
	}

	if category == string(core.FilterAll) {
		category = ""
	}
	filtered := core.FilterByCategory(expenses, category)
	groups := core.GroupByCategory(filtered)
	for i := range groups {
		groups[i].Expenses = core.SortByNewest(groups[i].Expenses)
	}

	return ExpensesView{
		Category:   category,
		Categories: core.Categories,
		Groups:     groups,
		Count:      len(filtered),
		Empty:      len(expenses) == 0,
	}, nil
}

// Create submits a validated request.
func (s *ExpenseService) Create(ctx context.Context, req core.CreateExpenseRequest) (core.Expense, error) {
	e, err := s.store.CreateExpense(ctx, req)
	s.metrics.EntryCreated("expense", err)

	fields := log.NewFields().
		WithUserID(req.UserID.String()).
		WithExpense(req.Title, req.Amount.String(), req.Currency, req.Category)
	if err != nil {
		s.logger.LogError(ctx, "Failed to create expense", err, log.ErrorTypeUpstream, log.OpCreate, fields)
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.logger.LogEntryCreated(ctx, e.ID.String(), fields)
	return e, nil
}
