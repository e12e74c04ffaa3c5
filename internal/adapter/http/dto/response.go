package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// BalanceResponse represents one currency balance in API responses. The USD
// valuation is omitted when no rate was available for the currency.
type BalanceResponse struct {
	Currency   string           `json:"currency"`
	Balance    decimal.Decimal  `json:"balance"`
	BalanceUSD *decimal.Decimal `json:"balance_usd,omitempty"`
}

// WalletResponse represents a wallet view in API responses.
type WalletResponse struct {
	WalletID        string            `json:"wallet_id"`
	Balances        []BalanceResponse `json:"balances"`
	TotalBalanceUSD decimal.Decimal   `json:"total_balance_usd"`
}

// WalletFromView converts a wallet view to a response.
func WalletFromView(view *usecase.WalletView) *WalletResponse {
	balances := make([]BalanceResponse, len(view.Balances))
	for i, b := range view.Balances {
		balances[i] = BalanceResponse{
			Currency:   b.Currency,
			Balance:    b.Balance,
			BalanceUSD: b.BalanceUSD,
		}
	}

	return &WalletResponse{
		WalletID:        view.WalletID,
		Balances:        balances,
		TotalBalanceUSD: view.TotalBalanceUSD,
	}
}

// TransactionResponse represents a journal entry in API responses.
type TransactionResponse struct {
	ID           string          `json:"id"`
	WalletID     string          `json:"wallet_id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`
	Rate         decimal.Decimal `json:"rate"`
	Description  string          `json:"description,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain journal entry to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:           t.ID,
		WalletID:     t.WalletID,
		Type:         string(t.Type),
		Status:       string(t.Status),
		FromCurrency: t.FromCurrency,
		ToCurrency:   t.ToCurrency,
		FromAmount:   t.FromAmount,
		ToAmount:     t.ToAmount,
		Rate:         t.Rate,
		Description:  t.Description,
		Metadata:     t.Metadata,
		CreatedAt:    t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain journal entries to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// FundResponse represents the outcome of a funding operation.
type FundResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	NewBalance  decimal.Decimal      `json:"new_balance"`
}

// FundFromResult converts a funding result to a response.
func FundFromResult(result *usecase.FundResult) *FundResponse {
	return &FundResponse{
		Transaction: TransactionFromDomain(result.Transaction),
		NewBalance:  result.NewBalance,
	}
}

// ExchangeResponse represents the outcome of a conversion or trade.
type ExchangeResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	FromBalance decimal.Decimal      `json:"from_balance"`
	ToBalance   decimal.Decimal      `json:"to_balance"`
}

// ExchangeFromResult converts an exchange result to a response.
func ExchangeFromResult(result *usecase.ExchangeResult) *ExchangeResponse {
	return &ExchangeResponse{
		Transaction: TransactionFromDomain(result.Transaction),
		FromBalance: result.FromBalance,
		ToBalance:   result.ToBalance,
	}
}

// HistoryResponse represents a page of the journal.
type HistoryResponse struct {
	Data       []*TransactionResponse `json:"data"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	TotalPages int64                  `json:"total_pages"`
}

// HistoryFromResult converts a history result to a response.
func HistoryFromResult(result *usecase.HistoryResult) *HistoryResponse {
	return &HistoryResponse{
		Data:       TransactionsFromDomain(result.Data),
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	}
}

// TransactionStatResponse represents per-type journal aggregates.
type TransactionStatResponse struct {
	Type        string          `json:"type"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// StatsFromDomain converts domain stats to responses.
func StatsFromDomain(stats []*domain.TransactionStat) []*TransactionStatResponse {
	result := make([]*TransactionStatResponse, len(stats))
	for i, s := range stats {
		result[i] = &TransactionStatResponse{
			Type:        string(s.Type),
			Count:       s.Count,
			TotalAmount: s.TotalAmount,
		}
	}
	return result
}

// RateResponse represents one resolved rate in API responses.
type RateResponse struct {
	BaseCurrency   string          `json:"base_currency"`
	TargetCurrency string          `json:"target_currency"`
	Rate           decimal.Decimal `json:"rate"`
	InverseRate    decimal.Decimal `json:"inverse_rate"`
	Source         string          `json:"source"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// RateFromDomain converts a rate sample to a response.
func RateFromDomain(s *domain.RateSample) *RateResponse {
	return &RateResponse{
		BaseCurrency:   s.BaseCurrency,
		TargetCurrency: s.TargetCurrency,
		Rate:           s.Rate,
		InverseRate:    s.Inverse(),
		Source:         s.Source,
		Metadata:       s.Metadata,
		Timestamp:      s.CreatedAt,
	}
}

// RatesResponse represents many target rates against one base.
type RatesResponse struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	Timestamp time.Time                  `json:"timestamp"`
}

// RatesFromView converts an aggregate rates view to a response.
func RatesFromView(view *usecase.RatesView) *RatesResponse {
	return &RatesResponse{
		Base:      view.Base,
		Rates:     view.Rates,
		Timestamp: view.Timestamp,
	}
}

// RateSampleResponse represents one persisted rate observation.
type RateSampleResponse struct {
	ID             string          `json:"id"`
	BaseCurrency   string          `json:"base_currency"`
	TargetCurrency string          `json:"target_currency"`
	Rate           decimal.Decimal `json:"rate"`
	Source         string          `json:"source"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RateSamplesFromDomain converts persisted samples to responses.
func RateSamplesFromDomain(samples []*domain.RateSample) []*RateSampleResponse {
	result := make([]*RateSampleResponse, len(samples))
	for i, s := range samples {
		result[i] = &RateSampleResponse{
			ID:             s.ID,
			BaseCurrency:   s.BaseCurrency,
			TargetCurrency: s.TargetCurrency,
			Rate:           s.Rate,
			Source:         s.Source,
			CreatedAt:      s.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
