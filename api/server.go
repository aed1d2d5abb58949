/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the admin frontend
  5. Metrics:    Request count and latency per route pattern

RATE LIMITING:
  POST /api/compute and POST /api/payroll/runs do the real work and are
  limited per client IP. Everything else is cheap reads and config edits.

ROUTE GROUPS:
  /healthz              Liveness and database check
  /metrics              Prometheus (when enabled)
  /api/configs/*        Deduction config management
  /api/compute          One-off computation
  /api/employees/*      Employee earnings
  /api/payroll/runs/*   Payroll runs and their reports
  /api/presets/*        Statutory preset catalog

SECURITY NOTE:
  No authentication middleware. Deploy behind the payroll gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	// CORSOrigins defaults to the local frontend dev servers.
	CORSOrigins []string

	// RateLimitPerMinute applies to the compute and payroll run endpoints.
	// Zero disables limiting.
	RateLimitPerMinute int

	// MetricsEnabled mounts /metrics and the metrics middleware.
	MetricsEnabled bool
}

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))
	if opts.MetricsEnabled {
		r.Use(h.Metrics.Middleware)
		r.Handle("/metrics", h.Metrics.Handler())
	}

	r.Get("/healthz", h.Health)

	limit := rateLimiter(opts.RateLimitPerMinute)

	r.Route("/api", func(r chi.Router) {
		// Config routes
		r.Route("/configs", func(r chi.Router) {
			r.Get("/", h.ListConfigs)
			r.Post("/", h.CreateConfig)
			r.Get("/{id}", h.GetConfig)
			r.Delete("/{id}", h.DeleteConfig)
			r.Get("/{id}/warnings", h.ConfigWarnings)
		})

		r.With(limit).Post("/compute", h.Compute)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/statement", h.GetStatement)
		})

		// Payroll routes
		r.Route("/payroll/runs", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.With(limit).Post("/", h.CreateRun)
			r.Get("/{id}", h.GetRun)
			r.Get("/{id}/remittance.csv", h.RemittanceCSV)
			r.Get("/{id}/remittance.pdf", h.RemittancePDF)
			r.Get("/{id}/payslips/{employeeID}", h.PayslipPDF)
		})

		// Preset routes
		r.Route("/presets", func(r chi.Router) {
			r.Get("/", h.ListPresets)
			r.Post("/load", h.LoadPresets)
		})
	})

	return r
}

// rateLimiter limits requests per client IP. perMinute <= 0 disables it.
func rateLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded", nil)
		}),
	)
}
