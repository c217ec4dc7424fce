package persistence

import (
	"context"

	"github.com/northtrade/backend/internal/domain/ledger"
	"github.com/northtrade/backend/internal/domain/period"
	"github.com/northtrade/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerRepository implements ledger.Repository using GORM. Aggregation
// happens in the database as a single grouped query per period; the contract
// with the evaluator is semantic equivalence to per-customer queries.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// ledgerAggregateRow is the scan target for grouped aggregation queries.
type ledgerAggregateRow struct {
	CustomerID   int64
	InvoiceCount int64
	Outstanding  decimal.Decimal
}

// AggregateByCustomer returns the aggregate for one customer and period.
func (r *GormLedgerRepository) AggregateByCustomer(ctx context.Context, customerID int64, code period.Code) (ledger.Aggregate, error) {
	var row ledgerAggregateRow
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("customer_id, COUNT(*) AS invoice_count, COALESCE(SUM(balance), 0) AS outstanding").
		Where("customer_id = ? AND semester_period = ? AND status <> ?", customerID, code.String(), models.InvoiceStatusCanceled).
		Group("customer_id").
		Scan(&row).Error
	if err != nil {
		return ledger.Aggregate{}, err
	}
	if row.InvoiceCount == 0 {
		return ledger.ZeroAggregate(customerID, code), nil
	}
	return ledger.Aggregate{
		CustomerID:   customerID,
		Period:       code,
		InvoiceCount: row.InvoiceCount,
		Outstanding:  row.Outstanding,
	}, nil
}

// AggregateByCustomers runs one grouped query for all requested customers in
// a period. Customers with no matching rows are absent from the result.
func (r *GormLedgerRepository) AggregateByCustomers(ctx context.Context, customerIDs []int64, code period.Code) ([]ledger.Aggregate, error) {
	if len(customerIDs) == 0 {
		return nil, nil
	}
	var rows []ledgerAggregateRow
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("customer_id, COUNT(*) AS invoice_count, COALESCE(SUM(balance), 0) AS outstanding").
		Where("customer_id IN ? AND semester_period = ? AND status <> ?", customerIDs, code.String(), models.InvoiceStatusCanceled).
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	aggregates := make([]ledger.Aggregate, len(rows))
	for i, row := range rows {
		aggregates[i] = ledger.Aggregate{
			CustomerID:   row.CustomerID,
			Period:       code,
			InvoiceCount: row.InvoiceCount,
			Outstanding:  row.Outstanding,
		}
	}
	return aggregates, nil
}

// AggregateByPairs groups the requested pairs by period and runs one grouped
// query per distinct period, filtering down to the exact pairs asked for.
func (r *GormLedgerRepository) AggregateByPairs(ctx context.Context, pairs []ledger.CustomerPeriod) ([]ledger.Aggregate, error) {
	byPeriod := make(map[period.Code][]int64)
	wanted := make(map[ledger.CustomerPeriod]struct{}, len(pairs))
	for _, pair := range pairs {
		if _, dup := wanted[pair]; dup {
			continue
		}
		wanted[pair] = struct{}{}
		byPeriod[pair.Period] = append(byPeriod[pair.Period], pair.CustomerID)
	}

	var aggregates []ledger.Aggregate
	for code, customerIDs := range byPeriod {
		rows, err := r.AggregateByCustomers(ctx, customerIDs, code)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, rows...)
	}
	return aggregates, nil
}
