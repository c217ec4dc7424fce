package ledger

import (
	"context"

	"github.com/northtrade/backend/internal/domain/period"
)

// BalanceEvaluator computes outstanding-balance aggregates used to derive
// automatic lock state. It fills in the permissive zero aggregate wherever
// the repository has no rows, so batch results always match the naive
// one-query-per-customer form exactly.
type BalanceEvaluator struct {
	repo Repository
}

// NewBalanceEvaluator creates a BalanceEvaluator over the given repository.
func NewBalanceEvaluator(repo Repository) *BalanceEvaluator {
	return &BalanceEvaluator{repo: repo}
}

// Aggregate returns the aggregate for one customer and period. A
// non-positive customer id or the zero Code resolve to the zero aggregate
// without touching the repository.
func (e *BalanceEvaluator) Aggregate(ctx context.Context, customerID int64, code period.Code) (Aggregate, error) {
	if customerID <= 0 || code.IsZero() {
		return ZeroAggregate(customerID, code), nil
	}
	return e.repo.AggregateByCustomer(ctx, customerID, code)
}

// BatchAggregate returns one aggregate per requested customer id, including
// zero aggregates for customers without invoice rows. The result is
// guaranteed to equal calling Aggregate once per id.
func (e *BalanceEvaluator) BatchAggregate(ctx context.Context, customerIDs []int64, code period.Code) (map[int64]Aggregate, error) {
	result := make(map[int64]Aggregate, len(customerIDs))
	valid := make([]int64, 0, len(customerIDs))
	for _, id := range customerIDs {
		result[id] = ZeroAggregate(id, code)
		if id > 0 && !code.IsZero() {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return result, nil
	}
	aggregates, err := e.repo.AggregateByCustomers(ctx, valid, code)
	if err != nil {
		return nil, err
	}
	for _, agg := range aggregates {
		result[agg.CustomerID] = agg
	}
	return result, nil
}

// BatchAggregateByPairs returns one aggregate per requested pair, including
// zero aggregates for pairs without invoice rows.
func (e *BalanceEvaluator) BatchAggregateByPairs(ctx context.Context, pairs []CustomerPeriod) (map[CustomerPeriod]Aggregate, error) {
	result := make(map[CustomerPeriod]Aggregate, len(pairs))
	valid := make([]CustomerPeriod, 0, len(pairs))
	for _, pair := range pairs {
		result[pair] = ZeroAggregate(pair.CustomerID, pair.Period)
		if pair.CustomerID > 0 && !pair.Period.IsZero() {
			valid = append(valid, pair)
		}
	}
	if len(valid) == 0 {
		return result, nil
	}
	aggregates, err := e.repo.AggregateByPairs(ctx, valid)
	if err != nil {
		return nil, err
	}
	for _, agg := range aggregates {
		result[CustomerPeriod{CustomerID: agg.CustomerID, Period: agg.Period}] = agg
	}
	return result, nil
}
