// Package web serves the liquefaction calculator over HTTP: a small HTML
// dashboard and a JSON API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/liquefy/internal/config"
	"github.com/JonMunkholm/liquefy/internal/core"
	"github.com/JonMunkholm/liquefy/internal/web/middleware"
)

// Server is the HTTP server of the liquefaction service.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
	reg     *prometheus.Registry
}

// NewServer wires the middleware stack and routes. Request metrics are
// registered with reg, which is also served on /metrics; nil creates a
// private registry.
func NewServer(service *core.Service, cfg *config.Config, reg *prometheus.Registry) *Server {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		reg:     reg,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.NewHTTPMetrics(s.reg).Handler)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/results/{pointID}", s.handleResultPage)
	s.router.Get("/results/{pointID}/chart.png", s.handleChartPNG)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))

		r.Get("/defaults", s.handleDefaults)
		r.Get("/fields", s.handleFields)
		r.Get("/measures", s.handleMeasure)

		r.Post("/calculate", s.handleCalculate)

		r.Post("/import", s.handleImport)
		r.Get("/import/{importID}", s.handleImportPreview)
		r.Post("/import/{importID}/calculate", s.handleCalculateImport)
		r.Delete("/import/{importID}", s.handleDiscardImport)

		r.Get("/results", s.handleListResults)
		r.Get("/results/export", s.handleExportResults)
		r.Delete("/results", s.handleClearResults)
		r.Get("/results/{pointID}", s.handleGetResult)
		r.Delete("/results/{pointID}", s.handleDeleteResult)
		r.Get("/results/{pointID}/report", s.handleReport)
		r.Get("/results/{pointID}/chart.png", s.handleChartPNG)
		r.Get("/results/{pointID}/chart", s.handleChartHTML)
	})
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router, for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

const contentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline' https://go-echarts.github.io; " +
	"style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v with the given status. Encoding failures are only
// logged since the header is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "json encode", "error", err, "request_id", chimw.GetReqID(r.Context()))
	}
}
