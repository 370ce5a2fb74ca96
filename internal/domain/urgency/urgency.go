// Package urgency ranks upcoming events for the "needs attention" list.
package urgency

import (
	"sort"
	"time"

	"atelier/internal/dateutil"
	"atelier/internal/entities"
)

const (
	// DefaultLimit caps the ranked list unless the caller asks otherwise.
	DefaultLimit = 3

	// highBudgetThreshold marks events worth an extra attention point.
	highBudgetThreshold = 2000

	maxScore = 5
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type RankedEvent struct {
	Event           entities.Event `json:"event"`
	Score           int            `json:"score"`
	Priority        Priority       `json:"priority"`
	DaysUntil       int            `json:"days_until"`
	MissingFlorists int            `json:"missing_florists"`
}

type Options struct {
	// Limit caps the result; zero or negative means DefaultLimit.
	Limit int
}

// Rank filters out settled or already-finished events, scores the rest, and
// returns the closest ones first. Temporal proximity always dominates the
// score: the score only breaks ties between events on the same day and
// feeds the priority label.
func Rank(events []entities.Event, now time.Time, opts Options) []RankedEvent {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]RankedEvent, 0, len(events))
	for _, ev := range events {
		if excluded(ev, now) {
			continue
		}

		score, missing := score(ev, now)
		ranked = append(ranked, RankedEvent{
			Event:           ev,
			Score:           score,
			Priority:        priorityFor(score),
			DaysUntil:       dateutil.DaysUntil(now, ev.Date),
			MissingFlorists: missing,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DaysUntil != ranked[j].DaysUntil {
			return ranked[i].DaysUntil < ranked[j].DaysUntil
		}
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func excluded(ev entities.Event, now time.Time) bool {
	switch ev.Status {
	case entities.StatusCompleted, entities.StatusPaid, entities.StatusInvoiced, entities.StatusCancelled:
		return true
	}
	return ev.EffectiveEnd().Before(now)
}

func score(ev entities.Event, now time.Time) (int, int) {
	s := 0

	if ev.Status == entities.StatusDraft {
		s += 2
	}

	days := dateutil.DaysUntil(now, ev.Date)
	switch {
	case days <= 0 || ev.Status == entities.StatusInProgress:
		s += 3
	case days == 1:
		s += 2
	case days <= 3:
		s++
	}

	missing := RequiredFlorists(ev) - ev.ConfirmedFlorists()
	if missing < 0 {
		missing = 0
	}
	if missing > 2 {
		s += 2
	} else {
		s += missing
	}

	if ev.Budget > highBudgetThreshold {
		s++
	}

	if s > maxScore {
		s = maxScore
	}
	return s, missing
}

func priorityFor(score int) Priority {
	switch {
	case score >= maxScore:
		return PriorityCritical
	case score >= 4:
		return PriorityHigh
	case score >= 2:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// RequiredFlorists returns the explicit required count, or estimates it from
// the budget when the event does not specify one.
func RequiredFlorists(ev entities.Event) int {
	if ev.RequiredFlorists > 0 {
		return ev.RequiredFlorists
	}
	return EstimateRequiredFlorists(ev.Budget)
}

// EstimateRequiredFlorists maps a budget onto a staffing estimate via fixed
// breakpoints.
func EstimateRequiredFlorists(budget float64) int {
	switch {
	case budget < 500:
		return 1
	case budget < 1500:
		return 2
	case budget < 3000:
		return 3
	default:
		return 4
	}
}
