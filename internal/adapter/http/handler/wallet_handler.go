package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
	"github.com/iho/fxwallet/internal/adapter/http/middleware"
	"github.com/iho/fxwallet/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	GetWallet(ctx context.Context, userID string) (*usecase.WalletView, error)
	Fund(ctx context.Context, input usecase.FundInput) (*usecase.FundResult, error)
	Convert(ctx context.Context, input usecase.ExchangeInput) (*usecase.ExchangeResult, error)
	Trade(ctx context.Context, input usecase.ExchangeInput) (*usecase.ExchangeResult, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	walletUC WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// Get returns the caller's wallet with USD valuations.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	view, err := h.walletUC.GetWallet(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromView(view))
}

// Fund credits the caller's balance in one currency.
func (h *WalletHandler) Fund(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.FundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.walletUC.Fund(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to fund wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.FundFromResult(result))
}

// Convert exchanges between two of the caller's balances at the market rate.
func (h *WalletHandler) Convert(w http.ResponseWriter, r *http.Request) {
	h.exchange(w, r, h.walletUC.Convert, "failed to convert currency")
}

// Trade is a conversion recorded as a TRADE journal entry.
func (h *WalletHandler) Trade(w http.ResponseWriter, r *http.Request) {
	h.exchange(w, r, h.walletUC.Trade, "failed to trade currency")
}

func (h *WalletHandler) exchange(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, input usecase.ExchangeInput) (*usecase.ExchangeResult, error),
	failureMessage string,
) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := op(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeError(w, mapDomainError(err), failureMessage, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExchangeFromResult(result))
}
