// Package florists computes provider availability. The result is derived
// from assignments and unavailability periods on every query; it is never
// persisted as a source of truth.
package florists

import (
	"time"

	"atelier/internal/dateutil"
	"atelier/internal/entities"
)

// Availability resolves a florist's current state:
//   - unavailable inside an active unavailability period,
//   - busy while holding a confirmed assignment on an event scheduled today
//     (or still running) that has not reached a terminal state,
//   - available otherwise.
type Availability struct {
	Status entities.AvailabilityStatus `json:"status"`
	// Reason is set for unavailable florists when the period carries one.
	Reason string `json:"reason,omitempty"`
	// BusyWith lists the event ids causing a busy status.
	BusyWith []string `json:"busy_with,omitempty"`
}

func Compute(florist entities.Florist, events []entities.Event, now time.Time) Availability {
	for _, p := range florist.Unavailability {
		if !p.Active {
			continue
		}
		if !now.Before(p.From) && !now.After(p.To) {
			return Availability{
				Status: entities.AvailabilityUnavailable,
				Reason: p.Reason,
			}
		}
	}

	var busyWith []string
	for _, ev := range events {
		if !confirmedFor(ev, florist.ID) {
			continue
		}
		if occupies(ev, now) {
			busyWith = append(busyWith, ev.ID)
		}
	}
	if len(busyWith) > 0 {
		return Availability{
			Status:   entities.AvailabilityBusy,
			BusyWith: busyWith,
		}
	}

	return Availability{Status: entities.AvailabilityAvailable}
}

func confirmedFor(ev entities.Event, floristID string) bool {
	for _, a := range ev.Florists {
		if a.FloristID == floristID && a.Confirmed {
			return true
		}
	}
	return false
}

func occupies(ev entities.Event, now time.Time) bool {
	switch ev.Status {
	case entities.StatusCompleted, entities.StatusInvoiced, entities.StatusPaid, entities.StatusCancelled:
		return false
	}
	if ev.Status == entities.StatusInProgress {
		return true
	}
	return dateutil.SameDay(ev.Date, now) && now.Before(ev.EffectiveEnd())
}
