// Package dateutil is the single conversion boundary for heterogeneous date
// inputs. Everything downstream of it works with time.Time only.
package dateutil

import (
	"math"
	"time"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// Anything above it is interpreted as milliseconds.
const epochMillisThreshold = 1e11

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce normalizes a Date-ish value (time.Time, ISO-8601 string, epoch
// seconds or milliseconds) into a time.Time. Invalid or missing input fails
// soft and yields the current time instead of an error.
func Coerce(v any) time.Time {
	if t, ok := coerce(v); ok {
		return t
	}
	return time.Now()
}

// IsValid is the explicit validity check: it reports whether Coerce would
// succeed without falling back to the current time.
func IsValid(v any) bool {
	_, ok := coerce(v)
	return ok
}

func coerce(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x, true
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return *x, true
	case string:
		return parseString(x)
	case int:
		return fromEpoch(float64(x))
	case int64:
		return fromEpoch(float64(x))
	case float64:
		return fromEpoch(x)
	default:
		return time.Time{}, false
	}
}

func parseString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromEpoch(n float64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	if n > epochMillisThreshold {
		return time.UnixMilli(int64(n)), true
	}
	return time.Unix(int64(n), 0), true
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func IsToday(t time.Time) bool {
	return SameDay(t, time.Now())
}

// IsFuture and IsPast compare instants, not calendar days.
func IsFuture(t time.Time) bool {
	return t.After(time.Now())
}

func IsPast(t time.Time) bool {
	return t.Before(time.Now())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfNextDay is midnight of the calendar day after t.
func StartOfNextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// DaysUntil is the calendar-day distance from `from` to `to`; zero for the
// same day, negative when `to` is earlier. Rounding keeps DST-shortened days
// from being counted twice.
func DaysUntil(from, to time.Time) int {
	return int(math.Round(StartOfDay(to).Sub(StartOfDay(from)).Hours() / 24))
}

// FormatDay renders a calendar day for display.
func FormatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
