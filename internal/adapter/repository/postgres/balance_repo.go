package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// CreateTx inserts a zero-or-seeded balance row inside an open transaction.
// The unique (wallet_id, currency) pair tolerates a concurrent insert; the
// caller re-reads under lock afterwards.
func (r *BalanceRepository) CreateTx(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	query := `
		INSERT INTO wallet_balances (id, wallet_id, currency, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (wallet_id, currency) DO NOTHING
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		balance.ID,
		balance.WalletID,
		balance.Currency,
		decimalToNumeric(balance.Amount),
		timeToPgTimestamptz(balance.CreatedAt),
		timeToPgTimestamptz(balance.UpdatedAt),
	)

	return err
}

// ListByWallet retrieves all currency balances of a wallet, ordered by
// currency so wallet views are stable.
func (r *BalanceRepository) ListByWallet(ctx context.Context, walletID string) ([]*domain.Balance, error) {
	query := `
		SELECT id, wallet_id, currency, amount, created_at, updated_at
		FROM wallet_balances
		WHERE wallet_id = $1
		ORDER BY currency
	`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, balance)
	}

	return balances, rows.Err()
}

// GetForUpdate retrieves one currency balance with a FOR UPDATE lock.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, walletID, currency string) (*domain.Balance, error) {
	query := `
		SELECT id, wallet_id, currency, amount, created_at, updated_at
		FROM wallet_balances
		WHERE wallet_id = $1 AND currency = $2
		FOR UPDATE
	`

	balance, err := scanBalance(tx.(*Tx).PgxTx().QueryRow(ctx, query, walletID, currency))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoBalanceForCurrency
	}

	return balance, err
}

// UpdateAmount writes the post-operation amount for one balance row.
func (r *BalanceRepository) UpdateAmount(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE wallet_balances
		SET amount = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		id,
		decimalToNumeric(amount),
		timeToPgTimestamptz(updatedAt),
	)

	return err
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var (
		balance domain.Balance
		amount  pgtype.Numeric
	)

	err := row.Scan(
		&balance.ID,
		&balance.WalletID,
		&balance.Currency,
		&amount,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	balance.Amount = numericToDecimal(amount)

	return &balance, nil
}
