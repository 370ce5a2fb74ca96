package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/entities"
)

type fakeEventsRepo struct {
	events map[string]entities.Event
}

func newFakeEventsRepo(events ...entities.Event) *fakeEventsRepo {
	r := &fakeEventsRepo{events: map[string]entities.Event{}}
	for _, ev := range events {
		r.events[ev.ID] = ev
	}
	return r
}

func (r *fakeEventsRepo) List(ctx context.Context) ([]entities.Event, error) {
	out := make([]entities.Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev)
	}
	return out, nil
}

func (r *fakeEventsRepo) Mutate(ctx context.Context, id string, fn func(*entities.Event) error) (entities.Event, error) {
	ev, ok := r.events[id]
	if !ok {
		return entities.Event{}, errNotFound
	}
	if err := fn(&ev); err != nil {
		return entities.Event{}, err
	}
	r.events[id] = ev
	return ev, nil
}

var errNotFound = assert.AnError

func newTestUsecase(repo EventsRepo) *Usecase {
	return NewUsecase(repo, nil, zerolog.Nop(), 0)
}

func completedEvent(id string) entities.Event {
	completed := time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)
	return entities.Event{
		ID:               id,
		Budget:           1200,
		RequiredFlorists: 1,
		Florists:         []entities.FloristAssignment{{FloristID: "fl-1", Confirmed: true}},
		Status:           entities.StatusCompleted,
		CompletedDate:    &completed,
	}
}

func TestArchiveAndInvoice(t *testing.T) {
	t.Run("invoices a completed staffed event", func(t *testing.T) {
		repo := newFakeEventsRepo(completedEvent("ev-1"))
		u := newTestUsecase(repo)

		ev, err := u.ArchiveAndInvoice(context.Background(), "ev-1")
		require.NoError(t, err)

		assert.Equal(t, entities.StatusInvoiced, ev.Status)
		assert.True(t, ev.Invoiced)
		assert.True(t, ev.Archived)
		require.NotNil(t, ev.InvoiceDate)
	})

	t.Run("rejects non-completed events", func(t *testing.T) {
		ev := completedEvent("ev-1")
		ev.Status = entities.StatusInProgress
		repo := newFakeEventsRepo(ev)
		u := newTestUsecase(repo)

		_, err := u.ArchiveAndInvoice(context.Background(), "ev-1")
		assert.ErrorIs(t, err, ErrEventNotCompleted)

		got := repo.events["ev-1"]
		assert.Equal(t, entities.StatusInProgress, got.Status)
		assert.False(t, got.Invoiced)
	})

	t.Run("understaffed rejection leaves the event untouched", func(t *testing.T) {
		ev := completedEvent("ev-1")
		ev.RequiredFlorists = 3
		repo := newFakeEventsRepo(ev)
		u := newTestUsecase(repo)

		_, err := u.ArchiveAndInvoice(context.Background(), "ev-1")
		assert.ErrorIs(t, err, ErrUnderstaffed)

		got := repo.events["ev-1"]
		assert.Equal(t, entities.StatusCompleted, got.Status)
		assert.False(t, got.Invoiced)
		assert.False(t, got.Archived)
		assert.Nil(t, got.InvoiceDate)
	})
}

func TestMarkPaid(t *testing.T) {
	invoicedEvent := func() *fakeEventsRepo {
		repo := newFakeEventsRepo(completedEvent("ev-1"))
		u := newTestUsecase(repo)
		_, err := u.ArchiveAndInvoice(context.Background(), "ev-1")
		require.NoError(t, err)
		return repo
	}

	t.Run("settles an invoiced event with the default method", func(t *testing.T) {
		repo := invoicedEvent()
		u := newTestUsecase(repo)

		ev, err := u.MarkPaid(context.Background(), "ev-1", PaymentOptions{})
		require.NoError(t, err)

		assert.Equal(t, entities.StatusPaid, ev.Status)
		assert.Equal(t, DefaultPaymentMethod, ev.PaymentMethod)
		require.NotNil(t, ev.PaidDate)
	})

	t.Run("keeps an explicit payment method", func(t *testing.T) {
		repo := invoicedEvent()
		u := newTestUsecase(repo)

		ev, err := u.MarkPaid(context.Background(), "ev-1", PaymentOptions{PaymentMethod: "cash"})
		require.NoError(t, err)
		assert.Equal(t, "cash", ev.PaymentMethod)
	})

	t.Run("backfills a missing completed date", func(t *testing.T) {
		repo := invoicedEvent()
		ev := repo.events["ev-1"]
		ev.CompletedDate = nil
		repo.events["ev-1"] = ev

		u := newTestUsecase(repo)
		got, err := u.MarkPaid(context.Background(), "ev-1", PaymentOptions{})
		require.NoError(t, err)
		assert.NotNil(t, got.CompletedDate)
	})

	t.Run("rejects events that were never invoiced", func(t *testing.T) {
		repo := newFakeEventsRepo(completedEvent("ev-1"))
		u := newTestUsecase(repo)

		_, err := u.MarkPaid(context.Background(), "ev-1", PaymentOptions{})
		assert.ErrorIs(t, err, ErrEventNotInvoiced)
		assert.Equal(t, entities.StatusCompleted, repo.events["ev-1"].Status)
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	t.Run("overdue and reminder append timestamped notes", func(t *testing.T) {
		repo := newFakeEventsRepo(completedEvent("ev-1"))
		u := newTestUsecase(repo)

		ev, err := u.UpdatePaymentStatus(context.Background(), "ev-1", PaymentStatusOverdue)
		require.NoError(t, err)
		assert.Contains(t, ev.Notes, "payment overdue")

		ev, err = u.UpdatePaymentStatus(context.Background(), "ev-1", PaymentStatusReminder)
		require.NoError(t, err)
		assert.Contains(t, ev.Notes, "payment reminder sent")

		// Each note carries its own minute-granularity timestamp, so two
		// follow-ups on the same day stay distinguishable.
		lines := strings.Split(ev.Notes, "\n")
		require.Len(t, lines, 2)
		for _, line := range lines {
			assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}: `, line)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		repo := newFakeEventsRepo(completedEvent("ev-1"))
		u := newTestUsecase(repo)

		_, err := u.UpdatePaymentStatus(context.Background(), "ev-1", PaymentStatus("refunded"))
		assert.ErrorIs(t, err, ErrUnknownPaymentStatus)
	})
}

func TestCheckOverdue(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -45)
	recent := now.AddDate(0, 0, -5)

	overdue := completedEvent("ev-overdue")
	overdue.Status = entities.StatusInvoiced
	overdue.InvoiceDate = &old

	fresh := completedEvent("ev-fresh")
	fresh.Status = entities.StatusInvoiced
	fresh.InvoiceDate = &recent

	repo := newFakeEventsRepo(overdue, fresh)
	u := newTestUsecase(repo)

	flagged, err := u.CheckOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-overdue"}, flagged)

	// A second sweep still reports it but must not flag it twice.
	flagged, err = u.CheckOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-overdue"}, flagged)
}

func TestStats(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	toInvoice := completedEvent("ev-to-invoice")
	toInvoice.Budget = 1000

	invoicedAt := now.AddDate(0, 0, -10)
	invoiced := completedEvent("ev-invoiced")
	invoiced.Status = entities.StatusInvoiced
	invoiced.Invoiced = true
	invoiced.InvoiceDate = &invoicedAt
	invoiced.Budget = 2000

	overdueAt := now.AddDate(0, 0, -40)
	overdue := completedEvent("ev-overdue")
	overdue.Status = entities.StatusInvoiced
	overdue.Invoiced = true
	overdue.InvoiceDate = &overdueAt
	overdue.Budget = 3000

	completedAt := now.AddDate(0, 0, -20)
	paidInvoicedAt := now.AddDate(0, 0, -16)
	paidAt := now.AddDate(0, 0, -6)
	paid := completedEvent("ev-paid")
	paid.Status = entities.StatusPaid
	paid.Invoiced = true
	paid.CompletedDate = &completedAt
	paid.InvoiceDate = &paidInvoicedAt
	paid.PaidDate = &paidAt
	paid.Budget = 4000

	repo := newFakeEventsRepo(toInvoice, invoiced, overdue, paid)
	u := newTestUsecase(repo)

	stats, err := u.Stats(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, Partition{Count: 1, TotalBudget: 1000}, stats.ToInvoice)
	assert.Equal(t, Partition{Count: 1, TotalBudget: 2000}, stats.Invoiced)
	assert.Equal(t, Partition{Count: 1, TotalBudget: 3000}, stats.Overdue)
	assert.Equal(t, Partition{Count: 1, TotalBudget: 4000}, stats.Paid)

	assert.InDelta(t, 4, stats.AvgDaysToInvoice, 0.01)
	assert.InDelta(t, 10, stats.AvgDaysToPay, 0.01)
}
