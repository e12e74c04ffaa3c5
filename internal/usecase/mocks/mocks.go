package mocks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// MockWalletRepository is an in-memory WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet // keyed by user ID

	CreateTxFunc             func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
	GetByUserIDFunc          func(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{wallets: make(map[string]*domain.Wallet)}
}

func (m *MockWalletRepository) Seed(wallet *domain.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.UserID] = wallet
}

func (m *MockWalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, wallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[wallet.UserID]; !ok {
		m.wallets[wallet.UserID] = wallet
	}
	return nil
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[userID]; ok {
		copied := *w
		return &copied, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDForUpdateFunc != nil {
		return m.GetByUserIDForUpdateFunc(ctx, tx, userID)
	}
	return m.GetByUserID(ctx, userID)
}

// MockBalanceRepository is an in-memory BalanceRepository.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]*domain.Balance // keyed by balance ID

	CreateTxFunc     func(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error
	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction, walletID, currency string) (*domain.Balance, error)
	UpdateAmountFunc func(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, updatedAt time.Time) error
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{balances: make(map[string]*domain.Balance)}
}

func (m *MockBalanceRepository) Seed(balance *domain.Balance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balance.ID] = balance
}

// Amount returns the current amount held for a wallet/currency pair.
func (m *MockBalanceRepository) Amount(walletID, currency string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.balances {
		if b.WalletID == walletID && b.Currency == currency {
			return b.Amount
		}
	}
	return decimal.Zero
}

func (m *MockBalanceRepository) CreateTx(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.balances {
		if b.WalletID == balance.WalletID && b.Currency == balance.Currency {
			return nil
		}
	}
	m.balances[balance.ID] = balance
	return nil
}

func (m *MockBalanceRepository) ListByWallet(ctx context.Context, walletID string) ([]*domain.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Balance
	for _, b := range m.balances {
		if b.WalletID == walletID {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (m *MockBalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, walletID, currency string) (*domain.Balance, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, walletID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.balances {
		if b.WalletID == walletID && b.Currency == currency {
			copied := *b
			return &copied, nil
		}
	}
	return nil, domain.ErrNoBalanceForCurrency
}

func (m *MockBalanceRepository) UpdateAmount(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateAmountFunc != nil {
		return m.UpdateAmountFunc(ctx, tx, id, amount, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.balances[id]; ok {
		b.Amount = amount
		b.UpdatedAt = updatedAt
	}
	return nil
}

// MockTransactionRepository is an in-memory journal.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns []*domain.Transaction

	CreateFunc func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, len(m.txns))
	copy(out, m.txns)
	return out
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, txn)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id, userID string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.ID == id && txn.UserID == userID {
			return txn, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*domain.Transaction
	for _, txn := range m.txns {
		if txn.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.Currency != "" && txn.FromCurrency != filter.Currency && txn.ToCurrency != filter.Currency {
			continue
		}
		matched = append(matched, txn)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MockTransactionRepository) Stats(ctx context.Context, userID string) ([]*domain.TransactionStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := make(map[domain.TransactionType]*domain.TransactionStat)
	for _, txn := range m.txns {
		if txn.UserID != userID || !txn.IsCompleted() {
			continue
		}
		stat, ok := byType[txn.Type]
		if !ok {
			stat = &domain.TransactionStat{Type: txn.Type, TotalAmount: decimal.Zero}
			byType[txn.Type] = stat
		}
		stat.Count++
		amount := txn.FromAmount
		if txn.Type == domain.TransactionTypeFunding {
			amount = txn.ToAmount
		}
		stat.TotalAmount = stat.TotalAmount.Add(amount)
	}

	stats := make([]*domain.TransactionStat, 0, len(byType))
	for _, s := range byType {
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Type < stats[j].Type })
	return stats, nil
}

// MockTransactionManager serializes transactions with a mutex, mirroring
// the row-lock discipline of the real store closely enough for concurrency
// tests: a second Begin blocks until the first commits or rolls back.
type MockTransactionManager struct {
	mu sync.Mutex

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	return &MockTransaction{release: m.mu.Unlock}, nil
}

// MockTransaction tracks commit/rollback calls.
type MockTransaction struct {
	once       sync.Once
	release    func()
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	t.done()
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	t.done()
	return nil
}

func (t *MockTransaction) done() {
	t.once.Do(func() {
		if t.release != nil {
			t.release()
		}
	})
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + strconv.Itoa(m.counter)
}

// MockRateResolver resolves rates from a fixed table.
type MockRateResolver struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal // keyed "BASE/TARGET"

	GetRateFunc func(ctx context.Context, base, target string) (*domain.RateSample, error)
}

func NewMockRateResolver() *MockRateResolver {
	return &MockRateResolver{rates: make(map[string]decimal.Decimal)}
}

func (m *MockRateResolver) SetRate(base, target string, rate decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[base+"/"+target] = rate
}

func (m *MockRateResolver) GetRate(ctx context.Context, base, target string) (*domain.RateSample, error) {
	if m.GetRateFunc != nil {
		return m.GetRateFunc(ctx, base, target)
	}
	if base == target {
		return domain.IdentityRate(base), nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rate, ok := m.rates[base+"/"+target]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrRateUnavailable, base, target)
	}
	return &domain.RateSample{
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           rate,
		Source:         "mock",
		CreatedAt:      time.Now().UTC(),
	}, nil
}
