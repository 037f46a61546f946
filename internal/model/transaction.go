package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord represents a parsed bank export row.
type TransactionRecord struct {
	CompletedDate time.Time // settlement date (UTC)
	Description   string
	OrigCurrency  string          // ISO code as recorded by the bank ("GBP", "EUR", ...)
	OrigAmount    decimal.Decimal // true magnitude in OrigCurrency; sign may be inconsistent
	Amount        decimal.Decimal // USD equivalent (GBP when OrigCurrency is GBP); negative = debit
	Balance       decimal.Decimal // running balance as reported by the bank
}

// NormalizedRecord is one row of the GBP-normalized output statement.
type NormalizedRecord struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	AmountGBP   decimal.Decimal
}
