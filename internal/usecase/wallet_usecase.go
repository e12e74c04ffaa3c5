package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/metrics"
)

// USDCurrency is the valuation currency for wallet reads.
const USDCurrency = "USD"

// WalletUseCase is the wallet ledger engine: fund, convert, trade, read.
// Every mutation is a single store transaction with exclusive row locks on
// the wallet and each balance it touches.
type WalletUseCase struct {
	txManager   TransactionManager
	walletRepo  WalletRepository
	balanceRepo BalanceRepository
	txnRepo     TransactionRepository
	rates       RateResolver
	idGen       IDGenerator
	metrics     *metrics.Metrics
	supported   []string
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	balanceRepo BalanceRepository,
	txnRepo TransactionRepository,
	rates RateResolver,
	idGen IDGenerator,
	m *metrics.Metrics,
	supportedCurrencies []string,
) *WalletUseCase {
	return &WalletUseCase{
		txManager:   txManager,
		walletRepo:  walletRepo,
		balanceRepo: balanceRepo,
		txnRepo:     txnRepo,
		rates:       rates,
		idGen:       idGen,
		metrics:     m,
		supported:   supportedCurrencies,
	}
}

// FundInput represents input for funding a wallet.
type FundInput struct {
	UserID      string
	Currency    string
	Description string
	Amount      decimal.Decimal
}

// FundResult is the outcome of a funding operation.
type FundResult struct {
	Transaction *domain.Transaction
	NewBalance  decimal.Decimal
}

// Fund credits amount to the user's balance in currency, creating the wallet
// and the balance row if they do not exist yet.
func (uc *WalletUseCase) Fund(ctx context.Context, input FundInput) (*FundResult, error) {
	currency := domain.NormalizeCurrency(input.Currency)

	if err := domain.ValidateSupportedCurrency(currency, uc.supported); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	amount := input.Amount.Truncate(domain.BalancePrecision)
	start := time.Now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	wallet, err := uc.ensureWalletForUpdate(ctx, tx, input.UserID, now)
	if err != nil {
		return nil, err
	}

	balance, err := uc.ensureBalanceForUpdate(ctx, tx, wallet.ID, currency, now)
	if err != nil {
		return nil, err
	}

	newBalance := balance.ApplyCredit(amount)
	if err := uc.balanceRepo.UpdateAmount(ctx, tx, balance.ID, newBalance, now); err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Funded wallet with %s", currency)
	}

	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		UserID:      input.UserID,
		WalletID:    wallet.ID,
		Type:        domain.TransactionTypeFunding,
		ToCurrency:  currency,
		ToAmount:    amount,
		Status:      domain.TransactionStatusCompleted,
		Description: description,
		CreatedAt:   now,
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.LedgerOperations.WithLabelValues(string(domain.TransactionTypeFunding)).Inc()
	uc.metrics.OperationDuration.WithLabelValues(string(domain.TransactionTypeFunding)).Observe(time.Since(start).Seconds())

	return &FundResult{Transaction: txn, NewBalance: newBalance}, nil
}

// ExchangeInput represents input for a conversion or trade.
type ExchangeInput struct {
	UserID       string
	FromCurrency string
	ToCurrency   string
	Description  string
	Amount       decimal.Decimal
}

// ExchangeResult is the outcome of a conversion or trade.
type ExchangeResult struct {
	Transaction *domain.Transaction
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// Convert exchanges amount from one currency into another at the resolved
// market rate and records a CONVERSION journal entry.
func (uc *WalletUseCase) Convert(ctx context.Context, input ExchangeInput) (*ExchangeResult, error) {
	return uc.applyExchange(ctx, input, domain.TransactionTypeConversion)
}

// Trade is behaviorally identical to Convert but the journal entry is typed
// TRADE and may carry a caller-supplied description.
func (uc *WalletUseCase) Trade(ctx context.Context, input ExchangeInput) (*ExchangeResult, error) {
	return uc.applyExchange(ctx, input, domain.TransactionTypeTrade)
}

// applyExchange is the single atomic unit behind Convert and Trade. The
// entry type is an input, so no second re-labeling write ever happens: a
// crash can never leave a trade journaled as a conversion.
func (uc *WalletUseCase) applyExchange(ctx context.Context, input ExchangeInput, entryType domain.TransactionType) (*ExchangeResult, error) {
	from := domain.NormalizeCurrency(input.FromCurrency)
	to := domain.NormalizeCurrency(input.ToCurrency)

	if err := domain.ValidateSupportedCurrency(from, uc.supported); err != nil {
		return nil, err
	}

	if err := domain.ValidateSupportedCurrency(to, uc.supported); err != nil {
		return nil, err
	}

	if from == to {
		return nil, domain.ErrSameCurrencyConversion
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	amount := input.Amount.Truncate(domain.BalancePrecision)
	start := time.Now()

	// The rate is a point-in-time input resolved before the mutating
	// transaction opens; it is not re-validated mid-transaction.
	rate, err := uc.rates.GetRate(ctx, from, to)
	if err != nil {
		uc.metrics.LedgerErrors.WithLabelValues("rate_unavailable").Inc()
		return nil, err
	}

	toAmount := rate.Convert(amount)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	wallet, err := uc.walletRepo.GetByUserIDForUpdate(ctx, tx, input.UserID)
	if err != nil {
		uc.countDomainError(err)
		return nil, err
	}

	if !wallet.IsActive {
		return nil, domain.ErrWalletInactive
	}

	// Balance locks are acquired in lexicographic currency order regardless
	// of transfer direction, so opposite-pair conversions cannot deadlock.
	var fromBalance, toBalance *domain.Balance

	for _, currency := range orderCurrencies(from, to) {
		switch currency {
		case from:
			fromBalance, err = uc.balanceRepo.GetForUpdate(ctx, tx, wallet.ID, from)
			if err != nil {
				uc.countDomainError(err)
				return nil, err
			}
		case to:
			toBalance, err = uc.ensureBalanceForUpdate(ctx, tx, wallet.ID, to, now)
			if err != nil {
				return nil, err
			}
		}
	}

	if !fromBalance.CanDebit(amount) {
		uc.metrics.LedgerErrors.WithLabelValues("insufficient_balance").Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientBalance, from)
	}

	newFromBalance := fromBalance.ApplyDebit(amount)
	if err := uc.balanceRepo.UpdateAmount(ctx, tx, fromBalance.ID, newFromBalance, now); err != nil {
		return nil, err
	}

	newToBalance := toBalance.ApplyCredit(toAmount)
	if err := uc.balanceRepo.UpdateAmount(ctx, tx, toBalance.ID, newToBalance, now); err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		verb := "Converted"
		if entryType == domain.TransactionTypeTrade {
			verb = "Traded"
		}
		description = fmt.Sprintf("%s %s %s to %s", verb, amount, from, to)
	}

	txn := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		UserID:       input.UserID,
		WalletID:     wallet.ID,
		Type:         entryType,
		FromCurrency: from,
		ToCurrency:   to,
		FromAmount:   amount,
		ToAmount:     toAmount,
		Rate:         rate.Rate,
		Status:       domain.TransactionStatusCompleted,
		Description:  description,
		CreatedAt:    now,
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.LedgerOperations.WithLabelValues(string(entryType)).Inc()
	uc.metrics.OperationDuration.WithLabelValues(string(entryType)).Observe(time.Since(start).Seconds())
	uc.metrics.ConversionAmount.Observe(amount.InexactFloat64())

	return &ExchangeResult{
		Transaction: txn,
		FromBalance: newFromBalance,
		ToBalance:   newToBalance,
	}, nil
}

// BalanceView is one balance in a wallet read, with its USD valuation.
// BalanceUSD is nil when the USD rate could not be resolved.
type BalanceView struct {
	Currency   string
	Balance    decimal.Decimal
	BalanceUSD *decimal.Decimal
}

// WalletView is the read model returned by GetWallet.
type WalletView struct {
	WalletID        string
	Balances        []BalanceView
	TotalBalanceUSD decimal.Decimal
}

// GetWallet returns the user's balances with per-balance USD valuation. A
// balance whose USD rate is unavailable is returned without a valuation and
// excluded from the total; the read itself never fails on valuation.
func (uc *WalletUseCase) GetWallet(ctx context.Context, userID string) (*WalletView, error) {
	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	balances, err := uc.balanceRepo.ListByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	view := &WalletView{
		WalletID:        wallet.ID,
		Balances:        make([]BalanceView, 0, len(balances)),
		TotalBalanceUSD: decimal.Zero,
	}

	for _, balance := range balances {
		bv := BalanceView{Currency: balance.Currency, Balance: balance.Amount}

		if balance.Currency == USDCurrency {
			usd := balance.Amount
			bv.BalanceUSD = &usd
		} else if rate, rateErr := uc.rates.GetRate(ctx, balance.Currency, USDCurrency); rateErr == nil {
			usd := balance.Amount.Mul(rate.Rate).Round(2)
			bv.BalanceUSD = &usd
		}

		if bv.BalanceUSD != nil {
			view.TotalBalanceUSD = view.TotalBalanceUSD.Add(*bv.BalanceUSD)
		}

		view.Balances = append(view.Balances, bv)
	}

	view.TotalBalanceUSD = view.TotalBalanceUSD.Round(2)

	return view, nil
}

// ensureWalletForUpdate loads the user's wallet under an exclusive lock,
// creating it first if absent. The insert is conflict-tolerant, so two
// first-funders racing each other both end up locking the same row.
func (uc *WalletUseCase) ensureWalletForUpdate(ctx context.Context, tx Transaction, userID string, now time.Time) (*domain.Wallet, error) {
	wallet, err := uc.walletRepo.GetByUserIDForUpdate(ctx, tx, userID)
	if err == nil {
		if !wallet.IsActive {
			return nil, domain.ErrWalletInactive
		}
		return wallet, nil
	}

	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, err
	}

	created := &domain.Wallet{
		ID:        uc.idGen.Generate(),
		UserID:    userID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.walletRepo.CreateTx(ctx, tx, created); err != nil {
		return nil, err
	}

	return uc.walletRepo.GetByUserIDForUpdate(ctx, tx, userID)
}

// ensureBalanceForUpdate loads a balance row under an exclusive lock,
// creating it at zero if the currency has never been held.
func (uc *WalletUseCase) ensureBalanceForUpdate(ctx context.Context, tx Transaction, walletID, currency string, now time.Time) (*domain.Balance, error) {
	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx, walletID, currency)
	if err == nil {
		return balance, nil
	}

	if !errors.Is(err, domain.ErrNoBalanceForCurrency) {
		return nil, err
	}

	created := &domain.Balance{
		ID:        uc.idGen.Generate(),
		WalletID:  walletID,
		Currency:  currency,
		Amount:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.balanceRepo.CreateTx(ctx, tx, created); err != nil {
		return nil, err
	}

	return uc.balanceRepo.GetForUpdate(ctx, tx, walletID, currency)
}

func (uc *WalletUseCase) countDomainError(err error) {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound):
		uc.metrics.LedgerErrors.WithLabelValues("wallet_not_found").Inc()
	case errors.Is(err, domain.ErrNoBalanceForCurrency):
		uc.metrics.LedgerErrors.WithLabelValues("no_balance").Inc()
	}
}

// orderCurrencies returns the two codes in lexicographic order.
func orderCurrencies(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}

	return [2]string{b, a}
}
