package period

import "github.com/northtrade/backend/internal/domain/ledger"

// PeriodRange is the calendar span of a period code.
type PeriodRange struct {
	Code  string `json:"code"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// LockState is the combined lock decision for one subject, shaped for
// controllers. Outstanding keeps the decimal's exact string form.
type LockState struct {
	SubjectID    int64  `json:"subject_id"`
	Manual       bool   `json:"manual"`
	Auto         bool   `json:"auto"`
	Locked       bool   `json:"locked"`
	Outstanding  string `json:"outstanding"`
	InvoiceCount int64  `json:"invoice_count"`
}

func newLockState(subjectID int64, state ledger.LockState) LockState {
	return LockState{
		SubjectID:    subjectID,
		Manual:       state.Manual,
		Auto:         state.Auto,
		Locked:       state.Locked,
		Outstanding:  state.Outstanding.String(),
		InvoiceCount: state.InvoiceCount,
	}
}
