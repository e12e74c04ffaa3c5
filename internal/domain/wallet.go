package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalancePrecision is the number of fractional digits carried by every
// monetary amount in the ledger.
const BalancePrecision = 8

// Wallet is a user's custodial account. Each user has exactly one wallet,
// created lazily on first funding.
type Wallet struct {
	ID        string
	UserID    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Balance is a per-currency holding inside a wallet. The (WalletID, Currency)
// pair is unique and the amount is never negative.
type Balance struct {
	ID        string
	WalletID  string
	Currency  string
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanDebit checks whether the balance covers amount. Comparison is exact
// decimal comparison, never epsilon-based.
func (b *Balance) CanDebit(amount decimal.Decimal) bool {
	return b.Amount.GreaterThanOrEqual(amount)
}

// ApplyDebit returns the balance after subtracting amount.
func (b *Balance) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return b.Amount.Sub(amount).Truncate(BalancePrecision)
}

// ApplyCredit returns the balance after adding amount.
func (b *Balance) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return b.Amount.Add(amount).Truncate(BalancePrecision)
}
