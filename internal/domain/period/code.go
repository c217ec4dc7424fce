package period

import (
	"fmt"
	"regexp"
	"time"
)

// Code is an immutable semester period value object. The canonical form is
// "S{half}-{YY}{YY}" where half is 1 or 2 and the second two-digit year is
// always (first+1) mod 100, e.g. "S1-2526" or "S2-2627". Two codes are equal
// iff their canonical strings match, which for this representation is plain
// struct equality.
//
// The zero Code is not a valid period; use the ok result of ParseCode/FromDate
// to distinguish absence from a real value.
type Code struct {
	half  int
	start int // two-digit start year of the academic cycle (0-99)
}

var codePattern = regexp.MustCompile(`^S([12])-(\d{2})(\d{2})$`)

// centuryBase anchors two-digit years when converting to calendar dates.
// Period codes were introduced well after 2000, so no 19xx codes exist.
const centuryBase = 2000

// NewCode builds a Code from a half (1 or 2) and a two-digit start year.
// Returns false for out-of-range input.
func NewCode(half, startYear int) (Code, bool) {
	if half != 1 && half != 2 {
		return Code{}, false
	}
	if startYear < 0 || startYear > 99 {
		return Code{}, false
	}
	return Code{half: half, start: startYear}, true
}

// ParseCode normalizes free text into a Code. Input is trimmed and
// uppercased before matching; a second year pair that is not (first+1) mod 100
// is rejected. Malformed input yields ok=false, never an error.
func ParseCode(raw string) (Code, bool) {
	normalized := normalizeRaw(raw)
	m := codePattern.FindStringSubmatch(normalized)
	if m == nil {
		return Code{}, false
	}
	half := int(m[1][0] - '0')
	start := twoDigit(m[2])
	end := twoDigit(m[3])
	if end != (start+1)%100 {
		return Code{}, false
	}
	return Code{half: half, start: start}, true
}

// Half returns 1 or 2.
func (c Code) Half() int { return c.half }

// StartYear returns the two-digit start year of the academic cycle.
func (c Code) StartYear() int { return c.start }

// IsZero reports whether c is the invalid zero value.
func (c Code) IsZero() bool { return c.half == 0 }

// String returns the canonical "S{half}-{YY}{YY}" form, or "" for the zero Code.
func (c Code) String() string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("S%d-%02d%02d", c.half, c.start, (c.start+1)%100)
}

// Previous returns the semester immediately before c: half 2 maps to half 1 of
// the same academic year, half 1 maps to half 2 of the prior academic year.
// Pure function of the input, independent of the current date.
func (c Code) Previous() Code {
	if c.IsZero() {
		return Code{}
	}
	if c.half == 2 {
		return Code{half: 1, start: c.start}
	}
	return Code{half: 2, start: (c.start + 99) % 100}
}

// DateRange returns the inclusive calendar bounds of the period:
// half 1 spans May 1 through Oct 31 of the start year, half 2 spans
// Nov 1 of the start year through Apr 30 of the end year.
// The zero Code yields ok=false.
func (c Code) DateRange() (start, end time.Time, ok bool) {
	if c.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	year := centuryBase + c.start
	if c.half == 1 {
		start = time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, time.October, 31, 0, 0, 0, 0, time.UTC)
		return start, end, true
	}
	start = time.Date(year, time.November, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year+1, time.April, 30, 0, 0, 0, 0, time.UTC)
	return start, end, true
}

// FromTime derives the Code containing the given instant. The academic cycle
// runs May through April: May-Oct fall in half 1 of the cycle starting that
// calendar year, Nov-Dec in half 2 of the same cycle, and Jan-Apr in half 2
// of the cycle that started the previous calendar year.
func FromTime(t time.Time) Code {
	year := t.Year()
	switch {
	case t.Month() >= time.May && t.Month() <= time.October:
		return Code{half: 1, start: year % 100}
	case t.Month() >= time.November:
		return Code{half: 2, start: year % 100}
	default: // January through April
		return Code{half: 2, start: (year - 1) % 100}
	}
}

func twoDigit(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
