package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	CreateTx(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx Transaction, userID string) (*domain.Wallet, error)
}

// BalanceRepository defines data access for per-currency balances.
type BalanceRepository interface {
	CreateTx(ctx context.Context, tx Transaction, balance *domain.Balance) error
	ListByWallet(ctx context.Context, walletID string) ([]*domain.Balance, error)
	GetForUpdate(ctx context.Context, tx Transaction, walletID, currency string) (*domain.Balance, error)
	UpdateAmount(ctx context.Context, tx Transaction, id string, amount decimal.Decimal, updatedAt time.Time) error
}

// TransactionRepository defines data access for the journal. Entries are
// append-only; there is no update method.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id, userID string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	Stats(ctx context.Context, userID string) ([]*domain.TransactionStat, error)
}

// RateSampleRepository defines data access for the rate time series.
type RateSampleRepository interface {
	Insert(ctx context.Context, sample *domain.RateSample) error
	GetLatest(ctx context.Context, base, target string) (*domain.RateSample, error)
	ListByPair(ctx context.Context, base, target string, limit int) ([]*domain.RateSample, error)
}

// RateCache is the short-TTL tier of the rate fallback chain. A miss is
// reported via ok=false, not an error.
type RateCache interface {
	GetRate(ctx context.Context, base, target string) (decimal.Decimal, bool, error)
	SetRate(ctx context.Context, base, target string, rate decimal.Decimal, ttl time.Duration) error
}

// RateProvider fetches a live quote from an external pricing source.
type RateProvider interface {
	Name() string
	FetchRate(ctx context.Context, base, target string) (*domain.RateSample, error)
}

// RateResolver resolves a rate through the cache/live/persisted fallback
// chain. Implemented by RateUseCase; consumed by the wallet engine.
type RateResolver interface {
	GetRate(ctx context.Context, base, target string) (*domain.RateSample, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
