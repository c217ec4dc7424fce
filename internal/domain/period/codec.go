package period

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when deriving a period from a raw date string.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
	"2006/01/02",
}

// Codec normalizes and derives semester period codes. Parse results are
// memoized by raw input, so a Codec must be scoped to a single request or
// batch operation: reusing one across requests would keep stale entries
// alive past their intended lifetime.
//
// Codec is not safe for concurrent use; each request builds its own.
type Codec struct {
	memo map[string]memoEntry
	now  func() time.Time
}

type memoEntry struct {
	code Code
	ok   bool
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithClock overrides the time source used by Current. Intended for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a request-scoped Codec.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{
		memo: make(map[string]memoEntry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Normalize parses free text into a Code, memoizing by the raw input.
// Malformed input yields ok=false, never an error.
func (c *Codec) Normalize(raw string) (Code, bool) {
	if entry, hit := c.memo[raw]; hit {
		return entry.code, entry.ok
	}
	code, ok := ParseCode(raw)
	c.memo[raw] = memoEntry{code: code, ok: ok}
	return code, ok
}

// FromDate derives the Code containing the given date string. Unparsable
// input yields ok=false; the caller treats absence as "no constraint" on
// read paths and "ignore this write" on mutation paths.
func (c *Codec) FromDate(raw string) (Code, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Code{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return FromTime(t), true
		}
	}
	return Code{}, false
}

// Current returns the Code for today. Never returns the zero Code: if
// derivation unexpectedly fails it synthesizes half 1 of the current
// calendar year.
func (c *Codec) Current() Code {
	now := c.now()
	code := FromTime(now)
	if code.IsZero() {
		code = Code{half: 1, start: now.Year() % 100}
	}
	return code
}

// Reset drops all memoized entries. Called at request boundaries when a
// Codec is pooled rather than rebuilt.
func (c *Codec) Reset() {
	clear(c.memo)
}

func normalizeRaw(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
