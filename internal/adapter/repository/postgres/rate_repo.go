package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fxwallet/internal/domain"
)

// RateRepository implements usecase.RateSampleRepository. Sample inserts run
// under the retrier because the refresh sweep writes many rows back to back
// and a transient failure must not poison the fallback store.
type RateRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool, retrier *Retrier) *RateRepository {
	return &RateRepository{pool: pool, retrier: retrier}
}

// Insert appends one observed rate sample to the time series.
func (r *RateRepository) Insert(ctx context.Context, sample *domain.RateSample) error {
	var metadataJSON []byte
	if sample.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(sample.Metadata)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO fx_rates (id, base_currency, target_currency, rate, source, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			sample.ID,
			sample.BaseCurrency,
			sample.TargetCurrency,
			decimalToNumeric(sample.Rate),
			sample.Source,
			metadataJSON,
			timeToPgTimestamptz(sample.CreatedAt),
		)

		return err
	})
}

// GetLatest retrieves the most recent persisted sample for a pair.
func (r *RateRepository) GetLatest(ctx context.Context, base, target string) (*domain.RateSample, error) {
	query := `
		SELECT id, base_currency, target_currency, rate, source, metadata, created_at
		FROM fx_rates
		WHERE base_currency = $1 AND target_currency = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	sample, err := scanRateSample(r.pool.QueryRow(ctx, query, base, target))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRateUnavailable
	}

	return sample, err
}

// ListByPair retrieves up to limit samples for a pair, newest first.
func (r *RateRepository) ListByPair(ctx context.Context, base, target string, limit int) ([]*domain.RateSample, error) {
	query := `
		SELECT id, base_currency, target_currency, rate, source, metadata, created_at
		FROM fx_rates
		WHERE base_currency = $1 AND target_currency = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, base, target, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*domain.RateSample
	for rows.Next() {
		sample, err := scanRateSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}

func scanRateSample(row pgx.Row) (*domain.RateSample, error) {
	var (
		sample       domain.RateSample
		rate         pgtype.Numeric
		metadataJSON []byte
	)

	err := row.Scan(
		&sample.ID,
		&sample.BaseCurrency,
		&sample.TargetCurrency,
		&rate,
		&sample.Source,
		&metadataJSON,
		&sample.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sample.Rate = numericToDecimal(rate)

	if metadataJSON != nil {
		_ = json.Unmarshal(metadataJSON, &sample.Metadata)
	}

	return &sample, nil
}
