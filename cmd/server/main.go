package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/fxwallet/internal/adapter/fxprovider"
	httpAdapter "github.com/iho/fxwallet/internal/adapter/http"
	"github.com/iho/fxwallet/internal/adapter/http/handler"
	postgresRepo "github.com/iho/fxwallet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fxwallet/internal/adapter/repository/redis"
	"github.com/iho/fxwallet/internal/infrastructure/auth"
	"github.com/iho/fxwallet/internal/infrastructure/config"
	"github.com/iho/fxwallet/internal/infrastructure/logger"
	"github.com/iho/fxwallet/internal/infrastructure/metrics"
	"github.com/iho/fxwallet/internal/infrastructure/postgres"
	"github.com/iho/fxwallet/internal/infrastructure/redis"
	"github.com/iho/fxwallet/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(log, cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(log)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	rateRepo := postgresRepo.NewRateRepository(pool, retrier)
	rateCache := redisRepo.NewRateCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	provider := fxprovider.NewExchangeRateAPI(cfg.FXAPIURL, cfg.FXAPIKey, cfg.FXProviderTimeout)

	// Use cases
	rateUC := usecase.NewRateUseCase(
		rateCache,
		provider,
		rateRepo,
		idGen,
		m,
		log,
		cfg.FXCacheTTL,
		cfg.FXProviderTimeout,
		cfg.FXSupportedCurrencies,
	)
	walletUC := usecase.NewWalletUseCase(
		txManager,
		walletRepo,
		balanceRepo,
		txnRepo,
		rateUC,
		idGen,
		m,
		cfg.FXSupportedCurrencies,
	)
	txnUC := usecase.NewTransactionUseCase(txnRepo)

	// Background rate refresh
	if cfg.FXRefreshEnabled {
		scheduler := usecase.NewRateRefreshScheduler(rateUC, m, log, cfg.FXRefreshInterval)
		schedulerCtx, cancelScheduler := context.WithCancel(ctx)
		scheduler.Start(schedulerCtx)
		defer func() {
			cancelScheduler()
			scheduler.Stop()
		}()
		log.Info().Dur("interval", cfg.FXRefreshInterval).Msg("rate refresh scheduler started")
	}

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	// Handlers
	walletHandler := handler.NewWalletHandler(walletUC)
	transactionHandler := handler.NewTransactionHandler(txnUC)
	rateHandler := handler.NewRateHandler(rateUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:      walletHandler,
		TransactionHandler: transactionHandler,
		RateHandler:        rateHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		JWTManager:         jwtManager,
		Logger:             log,
		AuthEnabled:        cfg.AuthEnabled,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
