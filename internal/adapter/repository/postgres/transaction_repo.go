package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. The journal
// is append-only: entries are inserted in the same database transaction as
// the balance writes they describe and are never updated afterwards.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create appends a journal entry inside an open transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	var metadataJSON []byte
	if txn.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(txn.Metadata)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO transactions (
			id, user_id, wallet_id, type, status,
			from_currency, to_currency, from_amount, to_amount, rate,
			description, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.WalletID,
		string(txn.Type),
		string(txn.Status),
		txn.FromCurrency,
		txn.ToCurrency,
		decimalToNumeric(txn.FromAmount),
		decimalToNumeric(txn.ToAmount),
		decimalToNumeric(txn.Rate),
		txn.Description,
		metadataJSON,
		timeToPgTimestamptz(txn.CreatedAt),
	)

	return err
}

// GetByID retrieves one journal entry scoped to its owner.
func (r *TransactionRepository) GetByID(ctx context.Context, id, userID string) (*domain.Transaction, error) {
	query := `
		SELECT id, user_id, wallet_id, type, status,
		       from_currency, to_currency, from_amount, to_amount, rate,
		       description, metadata, created_at
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}

	return txn, err
}

// List retrieves a page of the user's journal, newest first, with the total
// match count for pagination. The currency filter matches either leg.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	where := ` WHERE user_id = $1`
	args := []any{filter.UserID}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}

	if filter.Currency != "" {
		args = append(args, filter.Currency)
		where += fmt.Sprintf(` AND (from_currency = $%d OR to_currency = $%d)`, len(args), len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, (filter.Page-1)*filter.Limit)
	offsetPos := len(args)

	query := `
		SELECT id, user_id, wallet_id, type, status,
		       from_currency, to_currency, from_amount, to_amount, rate,
		       description, metadata, created_at
		FROM transactions` + where + `
		ORDER BY created_at DESC` + fmt.Sprintf(`
		LIMIT $%d OFFSET $%d`, limitPos, offsetPos)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, txn)
	}

	return txns, total, rows.Err()
}

// Stats aggregates the user's COMPLETED entries per type. Funding sums the
// credited amount; every other type sums the debited amount.
func (r *TransactionRepository) Stats(ctx context.Context, userID string) ([]*domain.TransactionStat, error) {
	query := `
		SELECT type,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN type = $2 THEN to_amount ELSE from_amount END), 0)
		FROM transactions
		WHERE user_id = $1 AND status = $3
		GROUP BY type
		ORDER BY type
	`

	rows, err := r.pool.Query(ctx, query,
		userID,
		string(domain.TransactionTypeFunding),
		string(domain.TransactionStatusCompleted),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*domain.TransactionStat
	for rows.Next() {
		var (
			stat  domain.TransactionStat
			total pgtype.Numeric
		)

		if err := rows.Scan(&stat.Type, &stat.Count, &total); err != nil {
			return nil, err
		}

		stat.TotalAmount = numericToDecimal(total)
		stats = append(stats, &stat)
	}

	return stats, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn          domain.Transaction
		fromAmount   pgtype.Numeric
		toAmount     pgtype.Numeric
		rate         pgtype.Numeric
		metadataJSON []byte
	)

	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.WalletID,
		&txn.Type,
		&txn.Status,
		&txn.FromCurrency,
		&txn.ToCurrency,
		&fromAmount,
		&toAmount,
		&rate,
		&txn.Description,
		&metadataJSON,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.FromAmount = numericToDecimal(fromAmount)
	txn.ToAmount = numericToDecimal(toAmount)
	txn.Rate = numericToDecimal(rate)

	if metadataJSON != nil {
		_ = json.Unmarshal(metadataJSON, &txn.Metadata)
	}

	return &txn, nil
}
