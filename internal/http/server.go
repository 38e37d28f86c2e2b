package http

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"harcama/internal/api"
	"harcama/internal/core"
	"harcama/internal/format"
	"harcama/internal/forms"
	"harcama/internal/log"
	"harcama/internal/metrics"
	"harcama/internal/middleware/ratelimit"
	"harcama/internal/middleware/security"
	"harcama/internal/middleware/trace"
	"harcama/internal/services"
	appweb "harcama/web"
)

// SessionReader is the read side of the session store used by the guard.
type SessionReader interface {
	Loading() bool
	User() (core.User, bool)
}

// Pinger reports whether local storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators a Server renders views with.
type Dependencies struct {
	Session       SessionReader
	Login         *services.LoginService
	Dashboard     *services.DashboardService
	Expenses      *services.ExpenseService
	Subscriptions *services.SubscriptionService
	Health        api.HealthChecker
	Storage       Pinger
	Validator     *forms.Validator
	Formatter     *format.Formatter
	Logger        *log.Logger
	Metrics       *metrics.Metrics

	DisplayCurrency    string
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	deps     Dependencies
	logger   *log.Logger
	views    *views
	limiter  *ratelimit.Limiter
	detector *security.Detector
	started  time.Time
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(addr string, deps Dependencies) (*Server, error) {
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.DisplayCurrency == "" {
		deps.DisplayCurrency = core.DefaultCurrency
	}
	if deps.Formatter == nil {
		deps.Formatter = format.New(time.Local, time.Now)
	}
	if deps.Validator == nil {
		deps.Validator = forms.NewValidator(deps.Formatter.Location())
	}

	views, err := parseViews(appweb.TemplatesFS, deps.Formatter)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := deps.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector(logger)
	for _, cidr := range deps.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		deps:     deps,
		logger:   logger,
		views:    views,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector: detector,
		started:  time.Now(),
	}

	mux := http.NewServeMux()

	staticFS, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	mux.Handle("/static/", security.StaticAssetMiddleware(86400)(static))

	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/expenses", s.handleExpenses)
	mux.HandleFunc("/ui/expenses", s.handleExpenseList)
	mux.HandleFunc("/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("/ui/subscriptions", s.handleSubscriptionList)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", deps.Metrics.Handler())

	s.Addr = addr
	s.Handler = s.middleware(mux)
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 60 * time.Second

	return s, nil
}

// middleware builds the chain, outermost first: trace, logger in context,
// security headers, request screening, write rate limiting.
func (s *Server) middleware(next http.Handler) http.Handler {
	extractIP := s.detector.ExtractClientIP

	limited := s.limiter.Middleware(extractIP, func(w http.ResponseWriter, r *http.Request) {
		s.deps.Metrics.RateLimited()
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, extractIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			TriggerErrorNotification("Çok fazla istek. Lütfen biraz bekleyin.").
			BodyString("Çok fazla istek").
			Write(w)
	})(next)

	h := s.detector.Middleware(limited)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestID)(h)
	h = log.Middleware(s.logger)(h)
	h = trace.NewMiddleware(extractIP, s.logger, s.deps.Metrics).Middleware(h)
	return h
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
