package florists

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"atelier/internal/entities"
)

var noon = time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

func TestComputeUnavailable(t *testing.T) {
	florist := entities.Florist{
		ID: "fl-1",
		Unavailability: []entities.UnavailabilityPeriod{
			{From: noon.AddDate(0, 0, -1), To: noon.AddDate(0, 0, 1), Reason: "vacation", Active: true},
		},
	}

	got := Compute(florist, nil, noon)
	assert.Equal(t, entities.AvailabilityUnavailable, got.Status)
	assert.Equal(t, "vacation", got.Reason)
}

func TestComputeInactivePeriodIsIgnored(t *testing.T) {
	florist := entities.Florist{
		ID: "fl-1",
		Unavailability: []entities.UnavailabilityPeriod{
			{From: noon.AddDate(0, 0, -1), To: noon.AddDate(0, 0, 1), Active: false},
		},
	}

	assert.Equal(t, entities.AvailabilityAvailable, Compute(florist, nil, noon).Status)
}

func TestComputeBusy(t *testing.T) {
	florist := entities.Florist{ID: "fl-1"}

	t.Run("confirmed assignment on today's running event", func(t *testing.T) {
		events := []entities.Event{{
			ID:       "ev-1",
			Date:     noon.Add(-2 * time.Hour),
			EndTime:  "18:00",
			Status:   entities.StatusConfirmed,
			Florists: []entities.FloristAssignment{{FloristID: "fl-1", Confirmed: true}},
		}}

		got := Compute(florist, events, noon)
		assert.Equal(t, entities.AvailabilityBusy, got.Status)
		assert.Equal(t, []string{"ev-1"}, got.BusyWith)
	})

	t.Run("unconfirmed assignment does not bind", func(t *testing.T) {
		events := []entities.Event{{
			ID:       "ev-1",
			Date:     noon,
			Status:   entities.StatusConfirmed,
			Florists: []entities.FloristAssignment{{FloristID: "fl-1"}},
		}}

		assert.Equal(t, entities.AvailabilityAvailable, Compute(florist, events, noon).Status)
	})

	t.Run("terminal events release the florist", func(t *testing.T) {
		events := []entities.Event{{
			ID:       "ev-1",
			Date:     noon,
			Status:   entities.StatusCompleted,
			Florists: []entities.FloristAssignment{{FloristID: "fl-1", Confirmed: true}},
		}}

		assert.Equal(t, entities.AvailabilityAvailable, Compute(florist, events, noon).Status)
	})

	t.Run("future events do not bind yet", func(t *testing.T) {
		events := []entities.Event{{
			ID:       "ev-1",
			Date:     noon.AddDate(0, 0, 3),
			Status:   entities.StatusConfirmed,
			Florists: []entities.FloristAssignment{{FloristID: "fl-1", Confirmed: true}},
		}}

		assert.Equal(t, entities.AvailabilityAvailable, Compute(florist, events, noon).Status)
	})

	t.Run("in-progress binds regardless of day", func(t *testing.T) {
		end := noon.AddDate(0, 0, 1)
		events := []entities.Event{{
			ID:       "ev-1",
			Date:     noon.AddDate(0, 0, -1),
			EndDate:  &end,
			Status:   entities.StatusInProgress,
			Florists: []entities.FloristAssignment{{FloristID: "fl-1", Confirmed: true}},
		}}

		assert.Equal(t, entities.AvailabilityBusy, Compute(florist, events, noon).Status)
	})
}

func TestComputeUnavailabilityWinsOverAssignments(t *testing.T) {
	florist := entities.Florist{
		ID: "fl-1",
		Unavailability: []entities.UnavailabilityPeriod{
			{From: noon.Add(-time.Hour), To: noon.Add(time.Hour), Reason: "sick", Active: true},
		},
	}
	events := []entities.Event{{
		ID:       "ev-1",
		Date:     noon,
		Status:   entities.StatusInProgress,
		Florists: []entities.FloristAssignment{{FloristID: "fl-1", Confirmed: true}},
	}}

	got := Compute(florist, events, noon)
	assert.Equal(t, entities.AvailabilityUnavailable, got.Status)
	assert.Empty(t, got.BusyWith)
}
