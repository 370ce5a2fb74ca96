// Package lifecycle derives the status an event should have from the clock
// and its staffing, without ever overriding a terminal stored status.
package lifecycle

import (
	"time"

	"atelier/internal/dateutil"
	"atelier/internal/entities"
)

var terminal = map[entities.Status]struct{}{
	entities.StatusCompleted: {},
	entities.StatusCancelled: {},
	entities.StatusInvoiced:  {},
	entities.StatusPaid:      {},
}

// IsTerminal reports whether derivation must leave the stored status alone.
// Completed, cancelled, invoiced and paid are set explicitly and never
// auto-advance.
func IsTerminal(s entities.Status) bool {
	_, ok := terminal[s]
	return ok
}

// DeriveStatus computes the status ev should have at `now`, or returns the
// stored status unchanged when it is terminal. It is deterministic for fixed
// inputs and has no side effects; writing the result back to the store is
// the caller's job.
func DeriveStatus(ev entities.Event, now time.Time) entities.Status {
	if IsTerminal(ev.Status) {
		return ev.Status
	}

	switch {
	case dateutil.DaysUntil(now, ev.Date) > 0:
		// Future day: staffing decides between draft and confirmed.
		if ev.ConfirmedFlorists() < ev.RequiredFlorists {
			return entities.StatusDraft
		}
		return entities.StatusConfirmed

	case dateutil.SameDay(ev.Date, now):
		if ev.HasExplicitEnd() && now.After(ev.EffectiveEnd()) {
			return entities.StatusCompleted
		}
		return entities.StatusInProgress

	default:
		// Scheduled day already passed.
		if ev.HasExplicitEnd() {
			if now.After(ev.EffectiveEnd()) {
				return entities.StatusCompleted
			}
			// Explicit end still ahead (multi-day engagement).
			return entities.StatusInProgress
		}
		if now.After(dateutil.StartOfNextDay(ev.Date)) {
			return entities.StatusCompleted
		}
		return entities.StatusInProgress
	}
}
