package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a journal entry.
type TransactionType string

const (
	TransactionTypeFunding    TransactionType = "FUNDING"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeConversion TransactionType = "CONVERSION"
	TransactionTypeTrade      TransactionType = "TRADE"
)

// TransactionStatus is the lifecycle state of a journal entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusReversed  TransactionStatus = "REVERSED"
)

// Transaction is an immutable journal entry recording a balance-affecting
// event. Entries are append-only; once written they are never updated.
type Transaction struct {
	CreatedAt    time.Time
	Metadata     map[string]any
	ID           string
	UserID       string
	WalletID     string
	Type         TransactionType
	Status       TransactionStatus
	FromCurrency string
	ToCurrency   string
	Description  string
	FromAmount   decimal.Decimal
	ToAmount     decimal.Decimal
	Rate         decimal.Decimal
}

// IsCompleted reports whether the entry settled successfully.
func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// TransactionFilter narrows journal queries.
type TransactionFilter struct {
	UserID   string
	Type     TransactionType
	Currency string
	Page     int
	Limit    int
}

// TransactionStat aggregates completed entries of one type.
type TransactionStat struct {
	Type        TransactionType
	Count       int64
	TotalAmount decimal.Decimal
}
