package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
	"github.com/iho/fxwallet/internal/usecase/mocks"
	"github.com/iho/fxwallet/tests/testutil"
)

func TestConvert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	rates := mocks.NewMockRateResolver()
	rates.SetRate("NGN", "USD", decimal.RequireFromString("0.00065"))
	rates.SetRate("USD", "NGN", decimal.RequireFromString("1538.46"))

	walletUC, walletRepo, txnRepo := newWalletUseCase(testDB, rates)

	t.Run("convert debits source and credits target at truncated rate", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		wallet := testDB.CreateTestWallet(ctx, "user-1")
		testDB.CreateTestBalance(ctx, wallet.ID, "NGN", decimal.NewFromInt(10000))

		result, err := walletUC.Convert(ctx, usecase.ExchangeInput{
			UserID:       "user-1",
			FromCurrency: "NGN",
			ToCurrency:   "USD",
			Amount:       decimal.NewFromInt(3333),
		})
		if err != nil {
			t.Fatalf("convert failed: %v", err)
		}

		// 3333 * 0.00065 = 2.16645, already within 8 decimal places.
		if !result.ToBalance.Equal(decimal.RequireFromString("2.16645")) {
			t.Errorf("expected USD balance 2.16645, got %s", result.ToBalance)
		}
		if !result.FromBalance.Equal(decimal.NewFromInt(6667)) {
			t.Errorf("expected NGN balance 6667, got %s", result.FromBalance)
		}

		txn, err := txnRepo.GetByID(ctx, result.Transaction.ID, "user-1")
		if err != nil {
			t.Fatalf("journal lookup failed: %v", err)
		}
		if txn.Type != domain.TransactionTypeConversion {
			t.Errorf("expected CONVERSION entry, got %s", txn.Type)
		}
		if !txn.Rate.Equal(decimal.RequireFromString("0.00065")) {
			t.Errorf("expected recorded rate 0.00065, got %s", txn.Rate)
		}
	})

	t.Run("trade records a TRADE entry", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		wallet := testDB.CreateTestWallet(ctx, "user-1")
		testDB.CreateTestBalance(ctx, wallet.ID, "USD", decimal.NewFromInt(100))

		result, err := walletUC.Trade(ctx, usecase.ExchangeInput{
			UserID:       "user-1",
			FromCurrency: "USD",
			ToCurrency:   "NGN",
			Amount:       decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("trade failed: %v", err)
		}

		txn, err := txnRepo.GetByID(ctx, result.Transaction.ID, "user-1")
		if err != nil {
			t.Fatalf("journal lookup failed: %v", err)
		}
		if txn.Type != domain.TransactionTypeTrade {
			t.Errorf("expected TRADE entry, got %s", txn.Type)
		}
	})

	t.Run("insufficient balance leaves state unchanged", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		wallet := testDB.CreateTestWallet(ctx, "user-1")
		testDB.CreateTestBalance(ctx, wallet.ID, "NGN", decimal.NewFromInt(100))

		_, err := walletUC.Convert(ctx, usecase.ExchangeInput{
			UserID:       "user-1",
			FromCurrency: "NGN",
			ToCurrency:   "USD",
			Amount:       decimal.NewFromInt(500),
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected insufficient balance error, got %v", err)
		}

		amount := testDB.BalanceAmount(ctx, wallet.ID, "NGN")
		if !amount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected NGN balance unchanged at 100, got %s", amount)
		}

		history, err := usecase.NewTransactionUseCase(txnRepo).History(ctx, domain.TransactionFilter{UserID: "user-1"})
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if history.Total != 0 {
			t.Errorf("expected no journal entries after failed convert, got %d", history.Total)
		}
	})

	t.Run("same currency rejected before any write", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		_, err := walletUC.Convert(ctx, usecase.ExchangeInput{
			UserID:       "user-1",
			FromCurrency: "USD",
			ToCurrency:   "usd",
			Amount:       decimal.NewFromInt(10),
		})
		if !errors.Is(err, domain.ErrSameCurrencyConversion) {
			t.Fatalf("expected same currency error, got %v", err)
		}

		if _, err := walletRepo.GetByUserID(ctx, "user-1"); !errors.Is(err, domain.ErrWalletNotFound) {
			t.Errorf("expected no wallet to be created, got %v", err)
		}
	})

	t.Run("missing source balance rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		wallet := testDB.CreateTestWallet(ctx, "user-1")
		testDB.CreateTestBalance(ctx, wallet.ID, "USD", decimal.NewFromInt(100))

		_, err := walletUC.Convert(ctx, usecase.ExchangeInput{
			UserID:       "user-1",
			FromCurrency: "NGN",
			ToCurrency:   "USD",
			Amount:       decimal.NewFromInt(10),
		})
		if !errors.Is(err, domain.ErrNoBalanceForCurrency) {
			t.Fatalf("expected no balance error, got %v", err)
		}
	})
}
