package ledger

import (
	"github.com/northtrade/backend/internal/domain/period"
	"github.com/shopspring/decimal"
)

// Aggregate is the derived outstanding balance for one customer in one
// period, recomputed on demand from the invoice rows. It is never persisted
// as a cache of truth.
type Aggregate struct {
	CustomerID   int64
	Period       period.Code
	InvoiceCount int64
	Outstanding  decimal.Decimal
}

// CustomerPeriod is the composite lookup key for pair-wise aggregation.
type CustomerPeriod struct {
	CustomerID int64
	Period     period.Code
}

// ZeroAggregate is the permissive default for a customer with no invoice
// rows in the period: zero count, zero outstanding, not auto-closed.
func ZeroAggregate(customerID int64, code period.Code) Aggregate {
	return Aggregate{
		CustomerID:  customerID,
		Period:      code,
		Outstanding: decimal.Zero,
	}
}

// RoundedOutstanding rounds the raw fractional sum to the nearest integer
// currency unit (half away from zero). The auto-lock rule compares this
// rounded value, not the raw sum, so floating-point residue near zero cannot
// produce false negatives.
func (a Aggregate) RoundedOutstanding() int64 {
	return a.Outstanding.Round(0).IntPart()
}

// AutoClosed reports the derived lock state: at least one non-canceled
// invoice with nothing left outstanding.
func (a Aggregate) AutoClosed() bool {
	return a.InvoiceCount > 0 && a.RoundedOutstanding() <= 0
}
