package integration

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	postgresRepo "github.com/iho/fxwallet/internal/adapter/repository/postgres"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/metrics"
	"github.com/iho/fxwallet/internal/usecase"
	"github.com/iho/fxwallet/internal/usecase/mocks"
	"github.com/iho/fxwallet/tests/testutil"
)

var supportedCurrencies = []string{"NGN", "USD", "EUR", "GBP"}

func newWalletUseCase(testDB *testutil.TestDB, rates usecase.RateResolver) (*usecase.WalletUseCase, *postgresRepo.WalletRepository, *postgresRepo.TransactionRepository) {
	pool := testDB.Pool
	walletRepo := postgresRepo.NewWalletRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	txManager := postgresRepo.NewTxManager(pool)
	idGen := postgresRepo.NewULIDGenerator()
	m := metrics.New(prometheus.NewRegistry())

	uc := usecase.NewWalletUseCase(txManager, walletRepo, balanceRepo, txnRepo, rates, idGen, m, supportedCurrencies)
	return uc, walletRepo, txnRepo
}

func TestFund(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	walletUC, walletRepo, txnRepo := newWalletUseCase(testDB, mocks.NewMockRateResolver())

	t.Run("first fund creates wallet and balance", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		result, err := walletUC.Fund(ctx, usecase.FundInput{
			UserID:   "user-1",
			Currency: "ngn",
			Amount:   decimal.NewFromInt(5000),
		})
		if err != nil {
			t.Fatalf("fund failed: %v", err)
		}

		if !result.NewBalance.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("expected new balance 5000, got %s", result.NewBalance)
		}

		wallet, err := walletRepo.GetByUserID(ctx, "user-1")
		if err != nil {
			t.Fatalf("wallet lookup failed: %v", err)
		}

		amount := testDB.BalanceAmount(ctx, wallet.ID, "NGN")
		if !amount.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("expected stored balance 5000, got %s", amount)
		}

		txn, err := txnRepo.GetByID(ctx, result.Transaction.ID, "user-1")
		if err != nil {
			t.Fatalf("journal lookup failed: %v", err)
		}
		if txn.Type != domain.TransactionTypeFunding {
			t.Errorf("expected FUNDING entry, got %s", txn.Type)
		}
		if txn.Status != domain.TransactionStatusCompleted {
			t.Errorf("expected COMPLETED status, got %s", txn.Status)
		}
	})

	t.Run("second fund adds to existing balance", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		if _, err := walletUC.Fund(ctx, usecase.FundInput{
			UserID:   "user-1",
			Currency: "USD",
			Amount:   decimal.NewFromInt(100),
		}); err != nil {
			t.Fatalf("first fund failed: %v", err)
		}

		result, err := walletUC.Fund(ctx, usecase.FundInput{
			UserID:   "user-1",
			Currency: "USD",
			Amount:   decimal.RequireFromString("0.5"),
		})
		if err != nil {
			t.Fatalf("second fund failed: %v", err)
		}

		if !result.NewBalance.Equal(decimal.RequireFromString("100.5")) {
			t.Errorf("expected balance 100.5, got %s", result.NewBalance)
		}
	})

	t.Run("unsupported currency rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		_, err := walletUC.Fund(ctx, usecase.FundInput{
			UserID:   "user-1",
			Currency: "XXX",
			Amount:   decimal.NewFromInt(10),
		})
		if err == nil {
			t.Fatal("expected unsupported currency to be rejected")
		}
	})
}

func TestGetWalletValuation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	rates := mocks.NewMockRateResolver()
	rates.SetRate("NGN", "USD", decimal.RequireFromString("0.00065"))

	walletUC, _, _ := newWalletUseCase(testDB, rates)

	testDB.TruncateAll(ctx)

	wallet := testDB.CreateTestWallet(ctx, "user-1")
	testDB.CreateTestBalance(ctx, wallet.ID, "NGN", decimal.NewFromInt(10000))
	testDB.CreateTestBalance(ctx, wallet.ID, "USD", decimal.NewFromInt(25))
	testDB.CreateTestBalance(ctx, wallet.ID, "EUR", decimal.NewFromInt(50))

	view, err := walletUC.GetWallet(ctx, "user-1")
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}

	if len(view.Balances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(view.Balances))
	}

	// NGN valued at 6.5 USD, USD at face value, EUR has no rate and is
	// excluded from the total.
	if !view.TotalBalanceUSD.Equal(decimal.RequireFromString("31.5")) {
		t.Errorf("expected total 31.5 USD, got %s", view.TotalBalanceUSD)
	}

	for _, b := range view.Balances {
		if b.Currency == "EUR" && b.BalanceUSD != nil {
			t.Errorf("expected EUR valuation to be absent, got %s", b.BalanceUSD)
		}
	}
}
