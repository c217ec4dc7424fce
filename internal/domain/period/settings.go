package period

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Settings keys owned by the period engine. Each key holds a single string
// value: a delimiter-separated list with "\r", "\n" or "," accepted as
// separators and items trimmed individually.
const (
	// SettingPeriodOptions lists the configured selectable periods.
	SettingPeriodOptions = "semester_period_options"
	// SettingActivePeriods is the active-period allow-list. An empty list
	// means every period is active; this open-world default inverts the
	// usual allow-list semantics and is a business rule, not an accident.
	SettingActivePeriods = "semester_active_periods"
	// SettingClosedPeriods lists globally closed periods, stored sorted
	// descending by canonical code for deterministic display order.
	SettingClosedPeriods = "closed_semester_periods"
	// SettingClosedCustomerPeriods lists manual customer locks as
	// "{customerId}:{code}" entries.
	SettingClosedCustomerPeriods = "closed_customer_semester_periods"
	// SettingClosedSupplierPeriods lists manual supplier locks as
	// "{supplierId}:{code}" entries.
	SettingClosedSupplierPeriods = "closed_supplier_semester_periods"
)

// SubjectKind identifies the entity a manual lock is scoped to.
type SubjectKind string

const (
	SubjectCustomer SubjectKind = "customer"
	SubjectSupplier SubjectKind = "supplier"
)

// IsValid returns true for a known subject kind.
func (k SubjectKind) IsValid() bool {
	return k == SubjectCustomer || k == SubjectSupplier
}

// String returns the kind as a plain string.
func (k SubjectKind) String() string { return string(k) }

// SettingKey returns the settings key holding this kind's manual locks.
func (k SubjectKind) SettingKey() (string, bool) {
	switch k {
	case SubjectCustomer:
		return SettingClosedCustomerPeriods, true
	case SubjectSupplier:
		return SettingClosedSupplierPeriods, true
	default:
		return "", false
	}
}

var listSplitter = strings.NewReplacer("\r", ",", "\n", ",")

// SplitList breaks a raw settings value into trimmed items, dropping empties.
func SplitList(raw string) []string {
	parts := strings.Split(listSplitter.Replace(raw), ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// JoinList serializes items back into a single comma-separated settings value.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}

// SubjectEntry is the persisted "{id}:{code}" form of a manual lock.
func SubjectEntry(subjectID int64, code Code) string {
	return fmt.Sprintf("%d:%s", subjectID, code.String())
}

// ParseSubjectEntry parses a persisted "{id}:{code}" entry. Entries with a
// non-positive id or an invalid code yield ok=false and are skipped during
// set construction.
func ParseSubjectEntry(raw string) (subjectID int64, code Code, ok bool) {
	idPart, codePart, found := strings.Cut(strings.TrimSpace(raw), ":")
	if !found {
		return 0, Code{}, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		return 0, Code{}, false
	}
	parsed, valid := ParseCode(codePart)
	if !valid {
		return 0, Code{}, false
	}
	return id, parsed, true
}

// SortCodesDescending orders codes descending by canonical string, the
// persisted order of the globally-closed list.
func SortCodesDescending(codes []Code) {
	sort.Slice(codes, func(i, j int) bool {
		return codes[i].String() > codes[j].String()
	})
}
