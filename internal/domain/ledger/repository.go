package ledger

import (
	"context"

	"github.com/northtrade/backend/internal/domain/period"
)

// Repository aggregates invoice rows per customer and period. Only
// non-canceled invoices participate; canceled rows never count toward either
// the invoice count or the outstanding sum.
//
// The grouped batch forms exist for the list-screen hot path. Their contract
// is semantic equivalence to calling AggregateByCustomer once per input, not
// any particular grouping technique.
type Repository interface {
	// AggregateByCustomer returns the aggregate for one customer and
	// period. Zero matching rows yield the zero aggregate, not an error.
	AggregateByCustomer(ctx context.Context, customerID int64, code period.Code) (Aggregate, error)

	// AggregateByCustomers returns aggregates for the given customers in
	// one period. Customers with no rows are absent from the result.
	AggregateByCustomers(ctx context.Context, customerIDs []int64, code period.Code) ([]Aggregate, error)

	// AggregateByPairs returns aggregates for arbitrary (customer, period)
	// pairs. Pairs with no rows are absent from the result.
	AggregateByPairs(ctx context.Context, pairs []CustomerPeriod) ([]Aggregate, error)
}
