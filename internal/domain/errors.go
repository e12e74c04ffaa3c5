package domain

import "errors"

var (
	// Wallet errors
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrWalletInactive       = errors.New("wallet is not active")
	ErrNoBalanceForCurrency = errors.New("no balance held in currency")
	ErrInsufficientBalance  = errors.New("insufficient balance")

	// Exchange errors
	ErrSameCurrencyConversion = errors.New("cannot convert to the same currency")
	ErrRateUnavailable        = errors.New("exchange rate unavailable")
	ErrInvalidRate            = errors.New("rate must be positive")

	// Validation errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// Journal errors
	ErrTransactionNotFound = errors.New("transaction not found")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
