package http

import (
	"net/http"

	"harcama/internal/core"
	"harcama/internal/forms"
)

// requireUser gates every view on the session. While the store hydrates
// the loading page is shown; without a user the login form replaces the
// requested page at the same URL. htmx requests without a user are sent
// to the root instead of swapping a login page into a fragment.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (core.User, bool) {
	if s.deps.Session.Loading() {
		s.respondPage(w, r, http.StatusOK, "loading", "Yükleniyor", nil)
		return core.User{}, false
	}

	user, ok := s.deps.Session.User()
	if ok {
		return user, true
	}

	if isHTMX(r) {
		NewHTMXResponse().Redirect("/").Write(w)
		return core.User{}, false
	}
	s.respondLogin(w, r, http.StatusOK, loginData{Form: forms.LoginForm{}})
	return core.User{}, false
}

func (s *Server) respondLogin(w http.ResponseWriter, r *http.Request, status int, data loginData) {
	s.respondPage(w, r, status, "login", "Giriş", data)
}
