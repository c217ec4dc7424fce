package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	t.Run("accepts canonical codes", func(t *testing.T) {
		code, ok := ParseCode("S1-2526")
		require.True(t, ok)
		assert.Equal(t, 1, code.Half())
		assert.Equal(t, 25, code.StartYear())
		assert.Equal(t, "S1-2526", code.String())
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		code, ok := ParseCode("  s2-2627 ")
		require.True(t, ok)
		assert.Equal(t, "S2-2627", code.String())
	})

	t.Run("rejects non-consecutive year pair", func(t *testing.T) {
		_, ok := ParseCode("S1-2527")
		assert.False(t, ok)
	})

	t.Run("accepts century wrap", func(t *testing.T) {
		code, ok := ParseCode("S1-9900")
		require.True(t, ok)
		assert.Equal(t, 99, code.StartYear())
	})

	t.Run("rejects malformed input without error", func(t *testing.T) {
		for _, raw := range []string{"", "S3-2526", "S1-256", "2526", "S1_2526", "garbage", "S1-25 26"} {
			_, ok := ParseCode(raw)
			assert.False(t, ok, "expected %q to be rejected", raw)
		}
	})

	t.Run("equal codes compare equal", func(t *testing.T) {
		a, _ := ParseCode("s1-2526")
		b, _ := ParseCode("S1-2526")
		assert.Equal(t, a, b)
	})
}

func TestCodePrevious(t *testing.T) {
	t.Run("half 2 maps to half 1 of the same cycle", func(t *testing.T) {
		code, _ := ParseCode("S2-2526")
		assert.Equal(t, "S1-2526", code.Previous().String())
	})

	t.Run("half 1 maps to half 2 of the prior cycle", func(t *testing.T) {
		code, _ := ParseCode("S1-2526")
		assert.Equal(t, "S2-2425", code.Previous().String())
	})

	t.Run("wraps at the century boundary", func(t *testing.T) {
		code, _ := ParseCode("S1-0001")
		assert.Equal(t, "S2-9900", code.Previous().String())
	})

	t.Run("zero code stays zero", func(t *testing.T) {
		assert.True(t, Code{}.Previous().IsZero())
	})
}

func TestCodeDateRange(t *testing.T) {
	t.Run("half 1 spans May through October of the start year", func(t *testing.T) {
		code, _ := ParseCode("S1-2526")
		start, end, ok := code.DateRange()
		require.True(t, ok)
		assert.Equal(t, "2025-05-01", start.Format("2006-01-02"))
		assert.Equal(t, "2025-10-31", end.Format("2006-01-02"))
	})

	t.Run("half 2 spans November through April across the year boundary", func(t *testing.T) {
		code, _ := ParseCode("S2-2627")
		start, end, ok := code.DateRange()
		require.True(t, ok)
		assert.Equal(t, "2026-11-01", start.Format("2006-01-02"))
		assert.Equal(t, "2027-04-30", end.Format("2006-01-02"))
	})

	t.Run("zero code has no range", func(t *testing.T) {
		_, _, ok := Code{}.DateRange()
		assert.False(t, ok)
	})
}

func TestFromTime(t *testing.T) {
	cases := []struct {
		date     string
		expected string
	}{
		{"2026-05-01", "S1-2627"},
		{"2026-10-31", "S1-2627"},
		{"2026-11-15", "S2-2627"},
		{"2026-12-31", "S2-2627"},
		{"2027-01-01", "S2-2627"},
		{"2026-04-30", "S2-2526"},
	}

	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			parsed, err := time.Parse("2006-01-02", tc.date)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, FromTime(parsed).String())
		})
	}
}

func TestCodec(t *testing.T) {
	t.Run("Normalize is idempotent", func(t *testing.T) {
		codec := NewCodec()
		for _, raw := range []string{"s1-2526", "S2-2627", "garbage", ""} {
			first, firstOK := codec.Normalize(raw)
			second, secondOK := codec.Normalize(first.String())
			if firstOK {
				require.True(t, secondOK)
				assert.Equal(t, first, second)
			}
		}
	})

	t.Run("Normalize memoizes by raw input", func(t *testing.T) {
		codec := NewCodec()
		first, ok := codec.Normalize("s1-2526")
		require.True(t, ok)
		second, ok := codec.Normalize("s1-2526")
		require.True(t, ok)
		assert.Equal(t, first, second)
		assert.Len(t, codec.memo, 1)
	})

	t.Run("FromDate handles the May boundary", func(t *testing.T) {
		codec := NewCodec()
		before, ok := codec.FromDate("2026-04-30")
		require.True(t, ok)
		after, ok := codec.FromDate("2026-05-01")
		require.True(t, ok)
		assert.Equal(t, "S2-2526", before.String())
		assert.Equal(t, "S1-2627", after.String())
		assert.NotEqual(t, before.Half(), after.Half())
	})

	t.Run("FromDate rejects unparsable input without error", func(t *testing.T) {
		codec := NewCodec()
		_, ok := codec.FromDate("not a date")
		assert.False(t, ok)
		_, ok = codec.FromDate("")
		assert.False(t, ok)
	})

	t.Run("FromDate accepts timestamp formats", func(t *testing.T) {
		codec := NewCodec()
		code, ok := codec.FromDate("2026-11-15 09:30:00")
		require.True(t, ok)
		assert.Equal(t, "S2-2627", code.String())
	})

	t.Run("Current never returns the zero code", func(t *testing.T) {
		codec := NewCodec(WithClock(func() time.Time {
			return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
		}))
		code := codec.Current()
		require.False(t, code.IsZero())
		assert.Equal(t, "S1-2627", code.String())
	})

	t.Run("Previous of Current matches FromDate six months back", func(t *testing.T) {
		references := []string{"2026-02-10", "2026-08-30", "2026-11-15", "2027-04-01"}
		for _, ref := range references {
			refTime, err := time.Parse("2006-01-02", ref)
			require.NoError(t, err)
			codec := NewCodec(WithClock(func() time.Time { return refTime }))
			shifted := FromTime(refTime.AddDate(0, -6, 0))
			assert.Equal(t, shifted, codec.Current().Previous(), "reference date %s", ref)
		}
	})

	t.Run("Reset clears memoized entries", func(t *testing.T) {
		codec := NewCodec()
		codec.Normalize("S1-2526")
		require.Len(t, codec.memo, 1)
		codec.Reset()
		assert.Empty(t, codec.memo)
	})
}
