package lifecycle

import (
	"time"

	"atelier/internal/dateutil"
	"atelier/internal/entities"
)

// IsPaidEventVisible implements the rolling month-granularity archive used
// by the board view: a paid event stays on the board only for the rest of
// the calendar month of its payment. Non-paid events are always visible.
// List views never apply this filter.
func IsPaidEventVisible(ev entities.Event, now time.Time) bool {
	if ev.Status != entities.StatusPaid {
		return true
	}

	ref := paidReference(ev)
	if ref.IsZero() {
		return true
	}
	return dateutil.SameMonth(ref, now)
}

// paidReference picks the timestamp the cutoff is measured from, in
// priority order: paid date, last update, creation.
func paidReference(ev entities.Event) time.Time {
	if ev.PaidDate != nil && !ev.PaidDate.IsZero() {
		return *ev.PaidDate
	}
	if !ev.UpdatedAt.IsZero() {
		return ev.UpdatedAt
	}
	return ev.CreatedAt
}
