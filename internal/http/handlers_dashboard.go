package http

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Sayfa bulunamadı").Write(w)
		return
	}
	if res := RequireMethod(r, http.MethodGet, http.MethodHead); res != nil {
		res.Write(w)
		return
	}

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	dash, err := s.deps.Dashboard.Build(r.Context(), user.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondPage(w, r, http.StatusOK, "dashboard", "Dashboard", dashboardData{
		Dashboard: dash,
		Currency:  s.deps.DisplayCurrency,
	})
}
