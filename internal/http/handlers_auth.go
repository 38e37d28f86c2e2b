package http

import (
	"net/http"

	"harcama/internal/forms"
	"harcama/internal/log"
)

// handleLogin looks the email up, creating the account when the service
// does not know it, and stores the user in the session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if res := RequirePOST(r); res != nil {
		res.Write(w)
		return
	}
	if s.deps.Session.Loading() {
		s.respondPage(w, r, http.StatusOK, "loading", "Yükleniyor", nil)
		return
	}
	if res := ParseFormOrFail(r); res != nil {
		res.Write(w)
		return
	}

	form := forms.DecodeLogin(sanitizedForm(r.PostForm))
	email, errs := s.deps.Validator.Login(form)
	if len(errs) > 0 {
		s.respondLogin(w, r, http.StatusUnprocessableEntity, loginData{Form: form, Errors: errs})
		return
	}

	if _, err := s.deps.Login.Login(r.Context(), email); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Login failed",
			log.FieldErrorType, log.ErrorTypeUpstream,
			log.FieldError, err.Error())
		s.respondLogin(w, r, http.StatusBadGateway, loginData{Form: form, Error: errorMessage(err)})
		return
	}

	s.redirectHome(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if res := RequirePOST(r); res != nil {
		res.Write(w)
		return
	}

	if err := s.deps.Login.Logout(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Logout could not clear stored session",
			log.FieldErrorType, log.ErrorTypeDatabase,
			log.FieldError, err.Error())
	}
	s.redirectHome(w, r)
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
