package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// RateService defines the behavior needed by RateHandler.
type RateService interface {
	GetRate(ctx context.Context, base, target string) (*domain.RateSample, error)
	GetManyRates(ctx context.Context, base string, targets []string) (*usecase.RatesView, error)
	GetHistoricalRates(ctx context.Context, base, target string, limit int) ([]*domain.RateSample, error)
}

// RateHandler handles FX rate HTTP requests.
type RateHandler struct {
	rateUC RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateUC RateService) *RateHandler {
	return &RateHandler{rateUC: rateUC}
}

// GetMany returns many target rates against one base. Without targets the
// supported set is used.
func (h *RateHandler) GetMany(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		base = "USD"
	}

	var targets []string
	if raw := r.URL.Query().Get("targets"); raw != "" {
		targets = strings.Split(raw, ",")
	}

	view, err := h.rateUC.GetManyRates(r.Context(), base, targets)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get rates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RatesFromView(view))
}

// GetPair resolves one currency pair, including the inverse rate.
func (h *RateHandler) GetPair(w http.ResponseWriter, r *http.Request) {
	base := chi.URLParam(r, "base")
	target := chi.URLParam(r, "target")

	sample, err := h.rateUC.GetRate(r.Context(), base, target)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get rate", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RateFromDomain(sample))
}

// GetHistorical returns persisted rate observations for a pair, newest first.
func (h *RateHandler) GetHistorical(w http.ResponseWriter, r *http.Request) {
	base := chi.URLParam(r, "base")
	target := chi.URLParam(r, "target")
	limit := parseIntQuery(r, "limit", 0)

	samples, err := h.rateUC.GetHistoricalRates(r.Context(), base, target, limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get historical rates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RateSamplesFromDomain(samples))
}
