package dashboard

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zombor/paydesk/internal/agent"
	"github.com/zombor/paydesk/internal/alert"
	"github.com/zombor/paydesk/internal/auth"
	"github.com/zombor/paydesk/internal/chart"
	"github.com/zombor/paydesk/internal/nav"
	"github.com/zombor/paydesk/internal/qrcode"
	"github.com/zombor/paydesk/internal/revenue"
	"github.com/zombor/paydesk/internal/scanning"
)

// Deps are the components the dashboard composes
type Deps struct {
	Agents   *agent.Service
	Sessions auth.SessionStore
	Resolver *auth.Resolver
	QRCodes  *qrcode.Generator
	Scanner  *scanning.Scanner
	Revenue  *revenue.Widget
	Notifier *alert.Notifier
	Routes   []nav.Route
	Theme    chart.Theme
}

// Server handles HTTP requests for the dashboard
type Server struct {
	Deps
	basicAuth  BasicAuth
	mux        *http.ServeMux
	mu         sync.Mutex
	httpServer *http.Server
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(deps Deps, basicAuth BasicAuth) *Server {
	return NewServerWithMux(deps, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(deps Deps, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	if deps.Routes == nil {
		deps.Routes = nav.DefaultRoutes
	}
	if deps.Theme.Name == "" {
		deps.Theme = chart.Light
	}
	s := &Server{
		Deps:      deps,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers and answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Paydesk"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all routes, most specific first
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /static/app.css", s.requireAuth(s.handleStaticCSS))

	// agents
	s.mux.HandleFunc("GET /api/agents/{id}/qrcode/url", s.requireAuth(s.handleAgentQRCodeURL))
	s.mux.HandleFunc("GET /api/agents/{id}/qrcode", s.requireAuth(s.handleAgentQRCode))
	s.mux.HandleFunc("GET /api/agents/{id}", s.requireAuth(s.handleGetAgent))
	s.mux.HandleFunc("DELETE /api/agents/{id}", s.requireAuth(s.handleDeactivateAgent))
	s.mux.HandleFunc("GET /api/agents", s.requireAuth(s.handleListAgents))
	s.mux.HandleFunc("POST /api/agents", s.requireAuth(s.handleCreateAgent))

	// revenue
	s.mux.HandleFunc("GET /api/revenue/chart.png", s.requireAuth(s.handleRevenueChart))
	s.mux.HandleFunc("GET /api/revenue", s.requireAuth(s.handleRevenue))

	// scanner
	s.mux.HandleFunc("GET /api/scan", s.requireAuth(s.handleLastScan))
	s.mux.HandleFunc("POST /api/scan", s.requireAuth(s.handleScanUpload))

	// session
	s.mux.HandleFunc("GET /api/session", s.requireAuth(s.handleGetSession))
	s.mux.HandleFunc("PUT /api/session", s.requireAuth(s.handleSaveSession))

	// alerts and navigation
	s.mux.HandleFunc("GET /api/alerts", s.requireAuth(s.handleListAlerts))
	s.mux.HandleFunc("DELETE /api/alerts/{id}", s.requireAuth(s.handleDismissAlert))
	s.mux.HandleFunc("GET /api/routes", s.requireAuth(s.handleRoutes))

	// HTML dashboard (catch-all, last)
	s.mux.HandleFunc("GET /", s.requireAuth(s.handleIndex))
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.corsMiddleware(s.mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(s.mux).ServeHTTP(w, r)
}
