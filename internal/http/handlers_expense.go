package http

import (
	"net/http"

	"harcama/internal/core"
	"harcama/internal/forms"
)

const (
	msgExpenseCreated = "Gider eklendi"
	msgExpenseFailed  = "Gider eklenirken bir hata oluştu"
)

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	if res := RequireMethod(r, http.MethodGet, http.MethodHead, http.MethodPost); res != nil {
		res.Write(w)
		return
	}

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		s.createExpense(w, r, user)
		return
	}

	params := ParseListParams(r.URL.Query())
	s.respondExpensesPage(w, r, NewHTMXResponse(), user, params.Category, s.expenseForm(forms.DefaultExpenseForm(), params.Category))
}

// handleExpenseList renders the list fragment the page refetches after a
// create.
func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	if res := RequireMethod(r, http.MethodGet); res != nil {
		res.Write(w)
		return
	}

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	params := ParseListParams(r.URL.Query())
	view, err := s.deps.Expenses.View(r.Context(), user.ID, params.Category)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondPartial(w, r, NewHTMXResponse(), "expense_list", view)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request, user core.User) {
	if res := ParseFormOrFail(r); res != nil {
		res.Write(w)
		return
	}

	params := ParseListParams(r.URL.Query())
	form := forms.DecodeExpense(sanitizedForm(r.PostForm))
	data := s.expenseForm(form, params.Category)
	data.Open = true

	req, errs := s.deps.Validator.Expense(form, user.ID)
	if len(errs) > 0 {
		data.Errors = errs
		s.respondExpenseForm(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), user, data)
		return
	}

	if _, err := s.deps.Expenses.Create(r.Context(), req); err != nil {
		data.Error = msgExpenseFailed
		res := NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerErrorNotification(msgExpenseFailed)
		s.respondExpenseForm(w, r, res, user, data)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, listURL("/expenses", "category", params.Category), http.StatusSeeOther)
		return
	}

	res := NewHTMXResponse().
		TriggerExpenseCreated().
		TriggerFormReset().
		TriggerSuccessNotification(msgExpenseCreated)
	s.respondPartial(w, r, res, "expense_form", s.expenseForm(forms.DefaultExpenseForm(), params.Category))
}

// respondExpenseForm answers a rejected create: the form fragment for htmx,
// the whole page under the active category otherwise.
func (s *Server) respondExpenseForm(w http.ResponseWriter, r *http.Request, res *HTMXResponseBuilder, user core.User, data expenseFormData) {
	if isHTMX(r) {
		s.respondPartial(w, r, res, "expense_form", data)
		return
	}
	s.respondExpensesPage(w, r, res, user, data.Category, data)
}

func (s *Server) respondExpensesPage(w http.ResponseWriter, r *http.Request, res *HTMXResponseBuilder, user core.User, category string, form expenseFormData) {
	view, err := s.deps.Expenses.View(r.Context(), user.ID, category)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondPageWith(w, r, res, "expenses", "Giderler", expensesData{View: view, Form: form})
}

func (s *Server) expenseForm(form forms.ExpenseForm, category string) expenseFormData {
	return expenseFormData{
		Form:       form,
		Category:   category,
		Categories: core.Categories,
		Currencies: core.Currencies,
	}
}
