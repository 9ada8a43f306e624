// Package apiserver provides the pantry JSON API HTTP server
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PantryAPIServer represents the pantry JSON API HTTP server
type PantryAPIServer struct {
	config         *config.Config
	logger         *zap.Logger
	server         *http.Server
	router         *chi.Mux
	service        inbound.PantryService
	metrics        *monitoring.MetricsCollector
	health         *healthcheck.HealthCheck
	openAPIHandler *OpenAPIHandler
}

// NewPantryAPIServer creates a new API server instance. metrics may be nil.
func NewPantryAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	service inbound.PantryService,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
) *PantryAPIServer {
	server := &PantryAPIServer{
		config:         cfg,
		logger:         log.Named("api-server"),
		service:        service,
		metrics:        metrics,
		health:         health,
		openAPIHandler: NewOpenAPIHandler(log),
	}

	server.router = server.setupRoutes()

	var handler http.Handler = server.router
	if cfg.Monitoring.EnableTracing {
		handler = otelhttp.NewHandler(server.router, "pantry-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}

	server.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return server
}

// setupRoutes configures the API routes
func (s *PantryAPIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware for API
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}

	timeout := s.config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	r.Use(chimiddleware.Timeout(timeout))
	r.Use(chimiddleware.Compress(5))

	// Operational endpoints
	if s.health != nil {
		r.Get(s.config.Monitoring.HealthCheckPath, s.health.Handler())
		r.Get(s.config.Monitoring.ReadinessPath, s.health.ReadinessHandler())
		r.Get("/live", s.health.LivenessHandler())
	}
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}
	r.Get("/api/v1/openapi.yaml", s.openAPIHandler.ServeOpenAPISpec)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JSONOnly())
		if s.config.Server.RateLimitRPS > 0 {
			burst := max(s.config.Server.RateLimitBurst, 1)
			r.Use(middleware.RateLimit(rate.NewLimiter(rate.Limit(s.config.Server.RateLimitRPS), burst)))
		}
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *PantryAPIServer) setupAPIV1Routes(r chi.Router) {
	h := handlers.NewPantryHandlers(s.service, s.logger)

	r.Get("/pantry", h.GetPantry)
	r.Post("/transfers", h.Transfer)

	r.Route("/locations", func(r chi.Router) {
		r.Get("/", h.ListLocations)

		r.Route("/{location}", func(r chi.Router) {
			r.Get("/items", h.ListItems)
			r.Post("/items", h.AddItems)
			r.Delete("/items", h.ClearItems)
			r.Put("/items/{index}", h.UpdateItem)
			r.Delete("/items/{index}", h.RemoveItem)

			r.Post("/selection/toggle", h.ToggleSelection)
			r.Delete("/selection", h.ClearSelection)

			r.Get("/categories", h.GetCategories)
			r.Delete("/categories", h.ClearCategories)
			r.Post("/categories/{category}/toggle", h.ToggleCategory)
		})
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Put("/location", h.SwitchLocation)
		r.Put("/filter", h.SetFilter)
		r.Post("/selection", h.SelectAll)
		r.Get("/selection/entries", h.SelectedEntries)
		r.Post("/transfer", h.TransferSelected)
		r.Post("/categorize", h.Categorize)
	})
}

// Start starts the API HTTP server
func (s *PantryAPIServer) Start() error {
	s.logger.Info("Starting pantry API server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	return s.server.ListenAndServe()
}

// Handler returns the root handler, for tests and embedding
func (s *PantryAPIServer) Handler() http.Handler {
	return s.server.Handler
}

// Server returns the underlying HTTP server instance
func (s *PantryAPIServer) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the API server
func (s *PantryAPIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down pantry API server")
	return s.server.Shutdown(ctx)
}
