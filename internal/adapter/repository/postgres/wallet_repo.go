package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// CreateTx inserts a wallet inside an open transaction. The insert tolerates
// a concurrent creation of the same user's wallet: the caller re-reads under
// lock afterwards.
func (r *WalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.IsActive,
		timeToPgTimestamptz(wallet.CreatedAt),
		timeToPgTimestamptz(wallet.UpdatedAt),
	)

	return err
}

// GetByUserID retrieves a user's wallet.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `
		SELECT id, user_id, is_active, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	return scanWallet(r.pool.QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate retrieves a user's wallet with a FOR UPDATE lock.
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error) {
	query := `
		SELECT id, user_id, is_active, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`

	return scanWallet(tx.(*Tx).PgxTx().QueryRow(ctx, query, userID))
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := row.Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.IsActive,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}

	if err != nil {
		return nil, err
	}

	return &wallet, nil
}
