package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"customer-engine/internal/api/handler"
	mw "customer-engine/internal/api/middleware"
	"customer-engine/internal/config"
	"customer-engine/internal/domain/customer"

	_ "customer-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const requestTimeout = 60 * time.Second

// SetupRouter wires the HTTP surface. ctx bounds background work started by
// middleware, such as the rate limiter sweeper.
func SetupRouter(ctx context.Context, customerService customer.CustomerService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(ctx, router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupCustomerRoutes(router, customerService, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(ctx context.Context, router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(mw.NewRateLimiterMiddleware(ctx, cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupCustomerRoutes(router chi.Router, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	router.Route("/api/v1/customers", func(r chi.Router) {
		r.Get("/", h.ListCustomers)
		r.Post("/", h.CreateCustomer)

		r.Get("/pro-members", h.ListProMembers)
		r.Get("/non-pro-members", h.ListNonProMembers)

		r.Route("/search", func(r chi.Router) {
			r.Get("/name", h.FindCustomersByName)
			r.Get("/email/{email}", h.FindCustomerByEmail)
			r.Get("/dob/{dob}", h.FindCustomersByDob)
			r.Get("/age/{age}", h.FindCustomersByAge)
		})

		r.Route("/sorted", func(r chi.Router) {
			r.Get("/dob", h.SortCustomersByDob)
			r.Get("/name", h.SortCustomersByName)
		})

		r.Route("/count", func(r chi.Router) {
			r.Get("/", h.CountCustomers)
			r.Get("/pro-members", h.CountProMembers)
			r.Get("/non-pro-members", h.CountNonProMembers)
		})

		r.Delete("/by-email/{email}", h.DeleteCustomerByEmail)

		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Patch("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
		})
	})
}
