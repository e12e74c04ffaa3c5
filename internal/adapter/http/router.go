package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/fxwallet/internal/adapter/http/handler"
	"github.com/iho/fxwallet/internal/adapter/http/middleware"
	"github.com/iho/fxwallet/internal/infrastructure/auth"
	"github.com/iho/fxwallet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler      *handler.WalletHandler
	TransactionHandler *handler.TransactionHandler
	RateHandler        *handler.RateHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	JWTManager         *auth.JWTManager
	Logger             zerolog.Logger
	AuthEnabled        bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthEnabled && cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(middleware.HeaderAuth)
		}

		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Wallet
		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", cfg.WalletHandler.Get)
			r.Post("/fund", cfg.WalletHandler.Fund)
			r.Post("/convert", cfg.WalletHandler.Convert)
			r.Post("/trade", cfg.WalletHandler.Trade)
		})

		// Journal
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/stats", cfg.TransactionHandler.Stats)
			r.Get("/{id}", cfg.TransactionHandler.Get)
		})

		// FX rates
		r.Route("/fx", func(r chi.Router) {
			r.Get("/rates", cfg.RateHandler.GetMany)
			r.Get("/rates/historical/{base}/{target}", cfg.RateHandler.GetHistorical)
			r.Get("/rates/{base}/{target}", cfg.RateHandler.GetPair)
		})
	})

	return r
}
