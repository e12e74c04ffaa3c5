package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxDescriptionLength = 500
	MaxMetadataSize      = 10240 // 10KB
	MaxOperationAmount   = "1000000000000"
)

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency checks that currency is a well-formed 3-letter code.
func ValidateCurrency(currency string) error {
	currency = NormalizeCurrency(currency)

	if len(currency) != 3 {
		return fmt.Errorf("%w: %q is not a 3-letter currency code", ErrUnsupportedCurrency, currency)
	}

	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: %q is not a 3-letter currency code", ErrUnsupportedCurrency, currency)
		}
	}

	return nil
}

// ValidateSupportedCurrency checks the code against the configured set.
func ValidateSupportedCurrency(currency string, supported []string) error {
	if err := ValidateCurrency(currency); err != nil {
		return err
	}

	currency = NormalizeCurrency(currency)
	for _, s := range supported {
		if NormalizeCurrency(s) == currency {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currency)
}

// ValidateAmount checks an operation amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxOperationAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxOperationAmount)
	}

	return nil
}

// ValidateDescription bounds free-text descriptions.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", MaxDescriptionLength)
	}

	return nil
}

// ClampPagination normalizes page/limit. Invalid values are silently
// corrected rather than rejected.
func ClampPagination(page, limit int) (int, int) {
	const (
		defaultLimit = 20
		maxLimit     = 100
	)

	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}
