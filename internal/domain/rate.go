package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Well-known rate sample sources. Live samples carry the provider's own name.
const (
	RateSourceCache    = "cache"
	RateSourceFallback = "database-fallback"
	RateSourceIdentity = "identity"
)

// RateSample is an observed exchange rate between two currencies at a point
// in time. Samples are append-only and form a time series per pair.
type RateSample struct {
	CreatedAt      time.Time
	Metadata       map[string]any
	ID             string
	BaseCurrency   string
	TargetCurrency string
	Source         string
	Rate           decimal.Decimal
}

// IdentityRate returns the synthetic rate-1 sample for a same-currency pair.
// Identity samples are never persisted.
func IdentityRate(currency string) *RateSample {
	return &RateSample{
		BaseCurrency:   currency,
		TargetCurrency: currency,
		Rate:           decimal.NewFromInt(1),
		Source:         RateSourceIdentity,
		CreatedAt:      time.Now().UTC(),
	}
}

// Convert applies the rate to amount, truncated to the ledger precision.
// Truncation rather than rounding so conversion never manufactures value.
func (s *RateSample) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(s.Rate).Truncate(BalancePrecision)
}

// Inverse returns 1/rate truncated to the ledger precision, or zero for a
// zero rate.
func (s *RateSample) Inverse() decimal.Decimal {
	if s.Rate.IsZero() {
		return decimal.Zero
	}

	return decimal.NewFromInt(1).DivRound(s.Rate, BalancePrecision+1).Truncate(BalancePrecision)
}

// Validate rejects samples that must never enter the store.
func (s *RateSample) Validate() error {
	if s.Rate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	if s.BaseCurrency == s.TargetCurrency {
		return ErrSameCurrencyConversion
	}

	return nil
}
