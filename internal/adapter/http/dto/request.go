package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/usecase"
)

// FundRequest represents a request to fund a wallet.
type FundRequest struct {
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *FundRequest) ToUseCaseInput(userID string) usecase.FundInput {
	return usecase.FundInput{
		UserID:      userID,
		Currency:    r.Currency,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// ExchangeRequest represents a request to convert or trade between
// currencies.
type ExchangeRequest struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ExchangeRequest) ToUseCaseInput(userID string) usecase.ExchangeInput {
	return usecase.ExchangeInput{
		UserID:       userID,
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		Amount:       r.Amount,
		Description:  r.Description,
	}
}
