package ledger

import (
	"context"

	"github.com/northtrade/backend/internal/domain/period"
	"github.com/shopspring/decimal"
)

// LockState is the combined lock decision for one subject in one period.
// Manual reflects an explicit administrator close; Auto is derived from the
// ledger aggregate; Locked is the OR of both.
type LockState struct {
	Manual       bool            `json:"manual"`
	Auto         bool            `json:"auto"`
	Locked       bool            `json:"locked"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	InvoiceCount int64           `json:"invoice_count"`
}

// NewLockState combines a manual flag with a ledger aggregate.
func NewLockState(manual bool, agg Aggregate) LockState {
	auto := agg.AutoClosed()
	return LockState{
		Manual:       manual,
		Auto:         auto,
		Locked:       manual || auto,
		Outstanding:  agg.Outstanding,
		InvoiceCount: agg.InvoiceCount,
	}
}

// ManualLockSource answers whether an explicit administrator lock exists.
// Satisfied by period.Registry.
type ManualLockSource interface {
	IsSubjectManuallyClosed(ctx context.Context, kind period.SubjectKind, subjectID int64, code period.Code) (bool, error)
}

// LockService combines the manual lock flag from the period registry with
// the automatic flag derived from invoice aggregates. Auto-close applies to
// customers only; supplier locks are purely manual, so a supplier's missing
// aggregate defaults to "not auto-closed".
type LockService struct {
	manual    ManualLockSource
	evaluator *BalanceEvaluator
}

// NewLockService creates a LockService.
func NewLockService(manual ManualLockSource, evaluator *BalanceEvaluator) *LockService {
	return &LockService{manual: manual, evaluator: evaluator}
}

// LockState returns the combined state for one subject.
func (s *LockService) LockState(ctx context.Context, kind period.SubjectKind, subjectID int64, code period.Code) (LockState, error) {
	manual, err := s.manual.IsSubjectManuallyClosed(ctx, kind, subjectID, code)
	if err != nil {
		return LockState{}, err
	}
	agg := ZeroAggregate(subjectID, code)
	if kind == period.SubjectCustomer {
		agg, err = s.evaluator.Aggregate(ctx, subjectID, code)
		if err != nil {
			return LockState{}, err
		}
	}
	return NewLockState(manual, agg), nil
}

// BatchLockStates returns one state per subject id. The result is required
// to be exactly what N calls to LockState would produce; list screens and
// detail screens alternate between the two paths and must agree.
func (s *LockService) BatchLockStates(ctx context.Context, kind period.SubjectKind, subjectIDs []int64, code period.Code) (map[int64]LockState, error) {
	aggregates := make(map[int64]Aggregate, len(subjectIDs))
	if kind == period.SubjectCustomer {
		var err error
		aggregates, err = s.evaluator.BatchAggregate(ctx, subjectIDs, code)
		if err != nil {
			return nil, err
		}
	}
	result := make(map[int64]LockState, len(subjectIDs))
	for _, id := range subjectIDs {
		manual, err := s.manual.IsSubjectManuallyClosed(ctx, kind, id, code)
		if err != nil {
			return nil, err
		}
		agg, ok := aggregates[id]
		if !ok {
			agg = ZeroAggregate(id, code)
		}
		result[id] = NewLockState(manual, agg)
	}
	return result, nil
}

// IsSubjectAutoClosed reports only the derived flag.
func (s *LockService) IsSubjectAutoClosed(ctx context.Context, kind period.SubjectKind, subjectID int64, code period.Code) (bool, error) {
	state, err := s.LockState(ctx, kind, subjectID, code)
	if err != nil {
		return false, err
	}
	return state.Auto, nil
}

// IsSubjectLocked reports the combined manual-or-auto flag.
func (s *LockService) IsSubjectLocked(ctx context.Context, kind period.SubjectKind, subjectID int64, code period.Code) (bool, error) {
	state, err := s.LockState(ctx, kind, subjectID, code)
	if err != nil {
		return false, err
	}
	return state.Locked, nil
}
