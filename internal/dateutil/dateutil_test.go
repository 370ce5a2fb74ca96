package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCoerce(t *testing.T) {
	t.Run("passes through time values", func(t *testing.T) {
		now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
		assert.Equal(t, now, Coerce(now))
		assert.Equal(t, now, Coerce(&now))
	})

	t.Run("parses ISO strings", func(t *testing.T) {
		got := Coerce("2026-03-14T15:09:26Z")
		assert.Equal(t, time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC), got)

		got = Coerce("2026-03-14")
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("distinguishes epoch seconds from milliseconds", func(t *testing.T) {
		ref := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

		got := Coerce(ref.Unix())
		assert.True(t, got.Equal(ref), "epoch seconds: got %v", got)

		got = Coerce(ref.UnixMilli())
		assert.True(t, got.Equal(ref), "epoch milliseconds: got %v", got)
	})

	t.Run("invalid input falls back to now", func(t *testing.T) {
		for _, v := range []any{nil, "", "not a date", 0, -5, time.Time{}, (*time.Time)(nil), []string{"x"}} {
			require.False(t, IsValid(v), "%v should be invalid", v)

			before := time.Now()
			got := Coerce(v)
			after := time.Now()
			assert.False(t, got.Before(before) || got.After(after), "fallback for %v should be the current time, got %v", v, got)
		}
	})
}

func TestDayHelpers(t *testing.T) {
	day := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

	assert.True(t, SameDay(day, day.Add(5*time.Hour)))
	assert.False(t, SameDay(day, day.Add(6*time.Hour)))

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDay(day))
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), StartOfNextDay(day))

	assert.True(t, SameMonth(day, day.AddDate(0, 0, 10)))
	assert.False(t, SameMonth(day, day.AddDate(0, 0, 20)))
}

func TestDaysUntil(t *testing.T) {
	from := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(from, from))
	assert.Equal(t, 1, DaysUntil(from, from.Add(15*time.Minute)))
	assert.Equal(t, 7, DaysUntil(from, from.AddDate(0, 0, 7)))
	assert.Equal(t, -2, DaysUntil(from, from.AddDate(0, 0, -2)))
}

func TestDaysUntilAcrossDSTBoundary(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// The last Sunday of March is 23 hours long in Paris.
	before := time.Date(2026, 3, 28, 12, 0, 0, 0, loc)
	after := time.Date(2026, 3, 30, 12, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysUntil(before, after))
}

func TestCoerceRoundTripsValidStrings(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sec := rapid.Int64Range(1, 4e9).Draw(t, "sec")
		day := time.Unix(sec, 0).UTC()

		formatted := day.Format(time.RFC3339)
		require.True(t, IsValid(formatted))
		assert.True(t, Coerce(formatted).Equal(day))
	})
}
