package http

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"harcama/internal/api"
	"harcama/internal/core"
	"harcama/internal/format"
	"harcama/internal/forms"
	"harcama/internal/log"
	"harcama/internal/services"
)

var pageNames = []string{"dashboard", "expenses", "subscriptions", "login", "loading", "error"}

// views holds one template set per page, each a clone of the layout plus
// partials, so every page can define its own "content".
type views struct {
	pages    map[string]*template.Template
	partials *template.Template
}

func templateFuncs(f *format.Formatter) template.FuncMap {
	return template.FuncMap{
		"money":     f.Currency,
		"longDate":  f.LongDate,
		"shortDate": f.ShortDate,
		"relative":  f.Relative,
		"period":    format.BillingPeriodLabel,
	}
}

func parseViews(fsys fs.FS, f *format.Formatter) (*views, error) {
	base, err := template.New("base").
		Funcs(templateFuncs(f)).
		ParseFS(fsys, "templates/layout.html", "templates/partial_*.html")
	if err != nil {
		return nil, err
	}

	v := &views{pages: make(map[string]*template.Template, len(pageNames)), partials: base}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, "templates/page_"+name+".html"); err != nil {
			return nil, fmt.Errorf("page %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

func (v *views) page(name string, data pageData) (string, error) {
	t, ok := v.pages[name]
	if !ok {
		return "", fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (v *views) partial(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := v.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type pageData struct {
	Title string
	Nav   string
	User  *core.User
	Data  any
}

type dashboardData struct {
	Dashboard services.Dashboard
	Currency  string
}

type expenseFormData struct {
	Form       forms.ExpenseForm
	Category   string
	Errors     forms.FieldErrors
	Error      string
	Open       bool
	Categories []string
	Currencies []string
}

type expensesData struct {
	View services.ExpensesView
	Form expenseFormData
}

type subscriptionFormData struct {
	Form       forms.SubscriptionForm
	Filter     string
	Errors     forms.FieldErrors
	Error      string
	Open       bool
	Periods    []core.BillingPeriod
	Currencies []string
}

type subscriptionListData struct {
	View     services.SubscriptionsView
	Currency string
}

type subscriptionsData struct {
	List subscriptionListData
	Form subscriptionFormData
}

type loginData struct {
	Form   forms.LoginForm
	Errors forms.FieldErrors
	Error  string
}

type errorData struct {
	Message string
}

// respondPage renders a full page inside the layout.
func (s *Server) respondPage(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	s.respondPageWith(w, r, NewHTMXResponse().Status(status), name, title, data)
}

func (s *Server) respondPageWith(w http.ResponseWriter, r *http.Request, res *HTMXResponseBuilder, name, title string, data any) {
	pd := pageData{Title: title, Nav: name, Data: data}
	if s.deps.Session != nil && !s.deps.Session.Loading() {
		if u, ok := s.deps.Session.User(); ok {
			pd.User = &u
		}
	}
	body, err := s.views.page(name, pd)
	if err != nil {
		s.templateFailed(w, r, name, err)
		return
	}
	res.BodyHTML(body).Write(w)
}

// respondPartial renders a named fragment with the given builder's status
// and triggers.
func (s *Server) respondPartial(w http.ResponseWriter, r *http.Request, res *HTMXResponseBuilder, name string, data any) {
	body, err := s.views.partial(name, data)
	if err != nil {
		s.templateFailed(w, r, name, err)
		return
	}
	res.BodyHTML(body).Write(w)
}

func (s *Server) templateFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
		log.FieldOperation, name,
		log.FieldErrorType, log.ErrorTypeInternal,
		log.FieldError, err.Error())
	InternalServerError("Sayfa oluşturulamadı").Write(w)
}

// respondError shows the error state: the whole page for navigations, the
// error fragment for htmx swaps. Nothing of the failed view is rendered.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	errorType := log.ErrorTypeInternal
	if errors.Is(err, api.ErrFetch) {
		status = http.StatusBadGateway
		errorType = log.ErrorTypeUpstream
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "View failed",
		log.FieldPath, r.URL.Path,
		log.FieldErrorType, errorType,
		log.FieldError, err.Error())

	data := errorData{Message: errorMessage(err)}
	if isHTMX(r) {
		s.respondPartial(w, r, NewHTMXResponse().Status(status), "error_state", data)
		return
	}
	s.respondPage(w, r, status, "error", "Hata", data)
}

// errorMessage prefers the service-facing message of a fetch error over the
// wrapped chain.
func errorMessage(err error) string {
	var fe *api.FetchError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return err.Error()
}
