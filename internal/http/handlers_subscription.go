package http

import (
	"net/http"

	"harcama/internal/core"
	"harcama/internal/forms"
)

const (
	msgSubscriptionCreated = "Abonelik eklendi"
	msgSubscriptionFailed  = "Abonelik eklenirken bir hata oluştu"
)

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	if res := RequireMethod(r, http.MethodGet, http.MethodHead, http.MethodPost); res != nil {
		res.Write(w)
		return
	}

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		s.createSubscription(w, r, user)
		return
	}

	params := ParseListParams(r.URL.Query())
	s.respondSubscriptionsPage(w, r, NewHTMXResponse(), user, params.Filter, s.subscriptionForm(s.defaultSubscriptionForm(), params.Filter))
}

func (s *Server) handleSubscriptionList(w http.ResponseWriter, r *http.Request) {
	if res := RequireMethod(r, http.MethodGet); res != nil {
		res.Write(w)
		return
	}

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	params := ParseListParams(r.URL.Query())
	view, err := s.deps.Subscriptions.View(r.Context(), user.ID, params.Filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondPartial(w, r, NewHTMXResponse(), "subscription_list", subscriptionListData{
		View:     view,
		Currency: s.deps.DisplayCurrency,
	})
}

func (s *Server) createSubscription(w http.ResponseWriter, r *http.Request, user core.User) {
	if res := ParseFormOrFail(r); res != nil {
		res.Write(w)
		return
	}

	params := ParseListParams(r.URL.Query())
	form := forms.DecodeSubscription(sanitizedForm(r.PostForm))
	data := s.subscriptionForm(form, params.Filter)
	data.Open = true

	req, errs := s.deps.Validator.Subscription(form, user.ID)
	if len(errs) > 0 {
		data.Errors = errs
		s.respondSubscriptionForm(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), user, data)
		return
	}

	if _, err := s.deps.Subscriptions.Create(r.Context(), req); err != nil {
		data.Error = msgSubscriptionFailed
		res := NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerErrorNotification(msgSubscriptionFailed)
		s.respondSubscriptionForm(w, r, res, user, data)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, listURL("/subscriptions", "filter", data.Filter), http.StatusSeeOther)
		return
	}

	res := NewHTMXResponse().
		TriggerSubscriptionCreated().
		TriggerFormReset().
		TriggerSuccessNotification(msgSubscriptionCreated)
	s.respondPartial(w, r, res, "subscription_form", s.subscriptionForm(s.defaultSubscriptionForm(), params.Filter))
}

func (s *Server) respondSubscriptionForm(w http.ResponseWriter, r *http.Request, res *HTMXResponseBuilder, user core.User, data subscriptionFormData) {
	if isHTMX(r) {
		s.respondPartial(w, r, res, "subscription_form", data)
		return
	}
	s.respondSubscriptionsPage(w, r, res, user, core.ParseSubscriptionFilter(data.Filter), data)
}

func (s *Server) respondSubscriptionsPage(w http.ResponseWriter, r *http.Request, res *HTMXResponseBuilder, user core.User, filter core.SubscriptionFilter, form subscriptionFormData) {
	view, err := s.deps.Subscriptions.View(r.Context(), user.ID, filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondPageWith(w, r, res, "subscriptions", "Abonelikler", subscriptionsData{
		List: subscriptionListData{View: view, Currency: s.deps.DisplayCurrency},
		Form: form,
	})
}

func (s *Server) defaultSubscriptionForm() forms.SubscriptionForm {
	return forms.DefaultSubscriptionForm(s.deps.Formatter.Now())
}

// subscriptionForm carries the active list filter so a plain form post
// comes back to the same view. The default filter is left out of URLs.
func (s *Server) subscriptionForm(form forms.SubscriptionForm, filter core.SubscriptionFilter) subscriptionFormData {
	f := string(filter)
	if filter == core.FilterAll {
		f = ""
	}
	return subscriptionFormData{
		Form:       form,
		Filter:     f,
		Periods:    core.BillingPeriods,
		Currencies: core.Currencies,
	}
}
