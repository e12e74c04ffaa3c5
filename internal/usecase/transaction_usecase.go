package usecase

import (
	"context"

	"github.com/iho/fxwallet/internal/domain"
)

// TransactionUseCase serves journal read queries.
type TransactionUseCase struct {
	txnRepo TransactionRepository
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(txnRepo TransactionRepository) *TransactionUseCase {
	return &TransactionUseCase{txnRepo: txnRepo}
}

// HistoryResult is one page of journal entries.
type HistoryResult struct {
	Data       []*domain.Transaction
	Page       int
	Limit      int
	Total      int64
	TotalPages int64
}

// History returns the user's journal entries newest-first, optionally
// filtered by entry type and by currency on either leg. Page and limit are
// silently normalized, never rejected.
func (uc *TransactionUseCase) History(ctx context.Context, filter domain.TransactionFilter) (*HistoryResult, error) {
	filter.Page, filter.Limit = domain.ClampPagination(filter.Page, filter.Limit)
	filter.Currency = domain.NormalizeCurrency(filter.Currency)

	data, total, err := uc.txnRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		totalPages++
	}

	return &HistoryResult{
		Data:       data,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Stats returns per-type count and total over the user's COMPLETED entries.
func (uc *TransactionUseCase) Stats(ctx context.Context, userID string) ([]*domain.TransactionStat, error) {
	return uc.txnRepo.Stats(ctx, userID)
}

// GetByID returns one journal entry scoped to its owner.
func (uc *TransactionUseCase) GetByID(ctx context.Context, id, userID string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id, userID)
}
