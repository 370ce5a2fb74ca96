package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"atelier/internal/entities"
)

var noon = time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

func staffed(n int) []entities.FloristAssignment {
	out := make([]entities.FloristAssignment, n)
	for i := range out {
		out[i] = entities.FloristAssignment{FloristID: "fl", Confirmed: true}
	}
	return out
}

func TestDeriveStatusFutureDay(t *testing.T) {
	tomorrow := noon.AddDate(0, 0, 1)

	t.Run("understaffed stays draft", func(t *testing.T) {
		ev := entities.Event{Date: tomorrow, RequiredFlorists: 2, Florists: staffed(1), Status: entities.StatusDraft}
		assert.Equal(t, entities.StatusDraft, DeriveStatus(ev, noon))
	})

	t.Run("fully staffed confirms", func(t *testing.T) {
		ev := entities.Event{Date: tomorrow, RequiredFlorists: 2, Florists: staffed(2), Status: entities.StatusDraft}
		assert.Equal(t, entities.StatusConfirmed, DeriveStatus(ev, noon))
	})

	t.Run("unconfirmed assignments do not count", func(t *testing.T) {
		ev := entities.Event{
			Date:             tomorrow,
			RequiredFlorists: 1,
			Florists:         []entities.FloristAssignment{{FloristID: "fl-1"}},
			Status:           entities.StatusConfirmed,
		}
		assert.Equal(t, entities.StatusDraft, DeriveStatus(ev, noon))
	})
}

func TestDeriveStatusSameDay(t *testing.T) {
	t.Run("running without explicit end", func(t *testing.T) {
		ev := entities.Event{Date: noon.Add(-3 * time.Hour), Status: entities.StatusConfirmed}
		assert.Equal(t, entities.StatusInProgress, DeriveStatus(ev, noon))
	})

	t.Run("explicit end time passed", func(t *testing.T) {
		ev := entities.Event{Date: noon.Add(-3 * time.Hour), EndTime: "11:00", Status: entities.StatusConfirmed}
		assert.Equal(t, entities.StatusCompleted, DeriveStatus(ev, noon))
	})

	t.Run("explicit end time still ahead", func(t *testing.T) {
		ev := entities.Event{Date: noon.Add(-3 * time.Hour), EndTime: "18:00", Status: entities.StatusConfirmed}
		assert.Equal(t, entities.StatusInProgress, DeriveStatus(ev, noon))
	})
}

func TestDeriveStatusPastDay(t *testing.T) {
	t.Run("grace day without explicit end", func(t *testing.T) {
		// Ran yesterday evening; completion is assumed once the next
		// calendar day after the event has started.
		ev := entities.Event{Date: noon.AddDate(0, 0, -1), Status: entities.StatusInProgress}
		assert.Equal(t, entities.StatusCompleted, DeriveStatus(ev, noon))
	})

	t.Run("multi-day engagement still running", func(t *testing.T) {
		end := noon.AddDate(0, 0, 2)
		ev := entities.Event{Date: noon.AddDate(0, 0, -1), EndDate: &end, Status: entities.StatusConfirmed}
		assert.Equal(t, entities.StatusInProgress, DeriveStatus(ev, noon))
	})

	t.Run("multi-day engagement over", func(t *testing.T) {
		end := noon.Add(-2 * time.Hour)
		ev := entities.Event{Date: noon.AddDate(0, 0, -3), EndDate: &end, Status: entities.StatusConfirmed}
		assert.Equal(t, entities.StatusCompleted, DeriveStatus(ev, noon))
	})
}

func TestDeriveStatusNeverOverridesTerminal(t *testing.T) {
	for _, status := range []entities.Status{
		entities.StatusCompleted,
		entities.StatusCancelled,
		entities.StatusInvoiced,
		entities.StatusPaid,
	} {
		ev := entities.Event{Date: noon.AddDate(0, 0, 5), RequiredFlorists: 3, Status: status}
		assert.Equal(t, status, DeriveStatus(ev, noon), "status %s", status)
	}
}

func TestDeriveStatusDeterministic(t *testing.T) {
	statuses := entities.Statuses()

	rapid.Check(t, func(t *rapid.T) {
		ev := entities.Event{
			Date:             noon.AddDate(0, 0, rapid.IntRange(-30, 30).Draw(t, "offset")),
			RequiredFlorists: rapid.IntRange(0, 4).Draw(t, "required"),
			Florists:         staffed(rapid.IntRange(0, 4).Draw(t, "confirmed")),
			Status:           statuses[rapid.IntRange(0, len(statuses)-1).Draw(t, "status")],
		}

		first := DeriveStatus(ev, noon)
		second := DeriveStatus(ev, noon)
		assert.Equal(t, first, second)

		// A second derivation of its own output is stable too.
		ev.Status = first
		assert.Equal(t, first, DeriveStatus(ev, noon))
	})
}
