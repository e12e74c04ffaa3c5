package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/adapter/http/handler"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

type stubWalletService struct{}

func (stubWalletService) GetWallet(_ context.Context, userID string) (*usecase.WalletView, error) {
	return &usecase.WalletView{WalletID: "wallet-" + userID}, nil
}

func (stubWalletService) Fund(context.Context, usecase.FundInput) (*usecase.FundResult, error) {
	return &usecase.FundResult{
		Transaction: &domain.Transaction{ID: "txn-1", Status: domain.TransactionStatusCompleted},
		NewBalance:  decimal.NewFromInt(100),
	}, nil
}

func (stubWalletService) Convert(context.Context, usecase.ExchangeInput) (*usecase.ExchangeResult, error) {
	return &usecase.ExchangeResult{Transaction: &domain.Transaction{ID: "txn-2"}}, nil
}

func (stubWalletService) Trade(context.Context, usecase.ExchangeInput) (*usecase.ExchangeResult, error) {
	return &usecase.ExchangeResult{Transaction: &domain.Transaction{ID: "txn-3"}}, nil
}

type stubTransactionService struct{}

func (stubTransactionService) History(context.Context, domain.TransactionFilter) (*usecase.HistoryResult, error) {
	return &usecase.HistoryResult{Page: 1, Limit: 20}, nil
}

func (stubTransactionService) Stats(context.Context, string) ([]*domain.TransactionStat, error) {
	return nil, nil
}

func (stubTransactionService) GetByID(context.Context, string, string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: "txn-1"}, nil
}

type stubRateService struct{}

func (stubRateService) GetRate(_ context.Context, base, target string) (*domain.RateSample, error) {
	return &domain.RateSample{
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           decimal.NewFromInt(2),
		Source:         "stub",
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (stubRateService) GetManyRates(_ context.Context, base string, _ []string) (*usecase.RatesView, error) {
	return &usecase.RatesView{Base: base, Rates: map[string]decimal.Decimal{}}, nil
}

func (stubRateService) GetHistoricalRates(context.Context, string, string, int) ([]*domain.RateSample, error) {
	return nil, nil
}

type stubIdempotencyStore struct {
	checkCalls int
	cached     []byte
}

func (s *stubIdempotencyStore) CheckAndSet(_ context.Context, _ string, _ []byte, _ time.Duration) (bool, []byte, error) {
	s.checkCalls++
	if s.cached != nil {
		return true, s.cached, nil
	}
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(_ context.Context, _ string, response []byte, _ time.Duration) error {
	s.cached = response
	return nil
}

func newRouterConfig(overrides ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		WalletHandler:      handler.NewWalletHandler(stubWalletService{}),
		TransactionHandler: handler.NewTransactionHandler(stubTransactionService{}),
		RateHandler:        handler.NewRateHandler(stubRateService{}),
		HealthHandler:      handler.NewHealthHandler(nil, nil),
		Logger:             zerolog.Nop(),
	}

	for _, override := range overrides {
		override(&cfg)
	}

	return cfg
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_APIRequiresIdentity(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	req.Header.Set("X-User-ID", "user-1")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with identity header, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_IdempotencyReplaysCachedResponse(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := []byte(`{"currency":"USD","amount":"100"}`)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/fund", bytes.NewReader(body))
	first.Header.Set("X-User-ID", "user-1")
	first.Header.Set("Idempotency-Key", "key-1")
	firstRec := httptest.NewRecorder()
	router.ServeHTTP(firstRec, first)

	if firstRec.Code != http.StatusCreated {
		t.Fatalf("expected first request to return 201, got %d: %s", firstRec.Code, firstRec.Body.String())
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/fund", bytes.NewReader(body))
	second.Header.Set("X-User-ID", "user-1")
	second.Header.Set("Idempotency-Key", "key-1")
	secondRec := httptest.NewRecorder()
	router.ServeHTTP(secondRec, second)

	if secondRec.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatalf("expected second request to be replayed from the idempotency store")
	}
	if secondRec.Body.String() != firstRec.Body.String() {
		t.Fatalf("expected replayed body to match the original response")
	}
	if store.checkCalls != 2 {
		t.Fatalf("expected 2 store checks, got %d", store.checkCalls)
	}
}

func TestNewRouter_RateRoutesWired(t *testing.T) {
	router := NewRouter(newRouterConfig())

	for _, target := range []string{
		"/api/v1/fx/rates",
		"/api/v1/fx/rates/NGN/USD",
		"/api/v1/fx/rates/historical/NGN/USD",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("X-User-ID", "user-1")
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected %s to return 200, got %d: %s", target, rec.Code, rec.Body.String())
		}
	}
}
