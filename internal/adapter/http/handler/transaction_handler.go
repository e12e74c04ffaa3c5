package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
	"github.com/iho/fxwallet/internal/adapter/http/middleware"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	History(ctx context.Context, filter domain.TransactionFilter) (*usecase.HistoryResult, error)
	Stats(ctx context.Context, userID string) ([]*domain.TransactionStat, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Transaction, error)
}

// TransactionHandler handles journal-related HTTP requests.
type TransactionHandler struct {
	txnUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnUC TransactionService) *TransactionHandler {
	return &TransactionHandler{txnUC: txnUC}
}

// List returns a page of the caller's journal, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	filter := domain.TransactionFilter{
		UserID:   userID,
		Type:     domain.TransactionType(r.URL.Query().Get("type")),
		Currency: r.URL.Query().Get("currency"),
		Page:     parseIntQuery(r, "page", 1),
		Limit:    parseIntQuery(r, "limit", 20),
	}

	result, err := h.txnUC.History(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromResult(result))
}

// Stats returns per-type aggregates over the caller's settled entries.
func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	stats, err := h.txnUC.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute stats", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromDomain(stats))
}

// Get returns one of the caller's journal entries.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	txn, err := h.txnUC.GetByID(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}
