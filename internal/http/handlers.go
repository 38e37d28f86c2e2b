package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady reports ready when templates are parsed, the session store
// has hydrated, local storage answers a ping and the REST service answers
// its health check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)
	fail := func(name, reason string) {
		checks[name] = "failed: " + reason
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.views == nil || len(s.views.pages) != len(pageNames) {
		fail("templates", "templates not loaded")
	} else {
		checks["templates"] = "ok"
	}

	if s.deps.Session == nil || s.deps.Session.Loading() {
		fail("session", "session not hydrated")
	} else {
		checks["session"] = "ok"
	}

	if s.deps.Storage != nil {
		if err := s.deps.Storage.Ping(ctx); err != nil {
			fail("storage", err.Error())
		} else {
			checks["storage"] = "ok"
		}
	}

	if s.deps.Health == nil {
		fail("api", "not configured")
	} else if h, err := s.deps.Health.Health(ctx); err != nil {
		fail("api", err.Error())
	} else {
		checks["api"] = h.Status
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}
	checks["suspicious_requests"] = s.detector.SuspiciousCount()

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}
