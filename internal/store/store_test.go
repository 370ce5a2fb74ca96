package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/entities"
)

func newTestStore(t *testing.T, publisher message.Publisher) *Store {
	t.Helper()
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return NewStore(backend, publisher, zerolog.Nop())
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t, nil)

	date := time.Date(2026, 6, 20, 14, 30, 0, 0, time.UTC)
	invoiced := date.AddDate(0, 0, 3)
	events := []entities.Event{{
		ID:               "ev-1",
		Title:            "Rose wedding",
		ClientID:         "cl-1",
		Budget:           2500,
		Date:             date,
		EndTime:          "18:00",
		RequiredFlorists: 2,
		Florists: []entities.FloristAssignment{
			{FloristID: "fl-1", Confirmed: true},
		},
		Status:      entities.StatusInvoiced,
		Invoiced:    true,
		InvoiceDate: &invoiced,
		Expenses: []entities.Expense{
			{Category: entities.ExpenseFlowers, Amount: 420.50},
		},
		CreatedAt: date.AddDate(0, -1, 0),
		UpdatedAt: invoiced,
	}}

	require.NoError(t, s.SaveEvents(events))

	loaded := s.LoadEvents()
	require.Len(t, loaded, 1)
	got := loaded[0]
	assert.Equal(t, "ev-1", got.ID)
	assert.True(t, got.Date.Equal(date))
	require.NotNil(t, got.InvoiceDate)
	assert.True(t, got.InvoiceDate.Equal(invoiced))
	assert.Nil(t, got.PaidDate)
	assert.Equal(t, events[0].Florists, got.Florists)
	assert.Equal(t, events[0].Expenses, got.Expenses)
}

func TestStoreMissingCollectionReadsEmpty(t *testing.T) {
	s := newTestStore(t, nil)

	assert.Empty(t, s.LoadEvents())
	assert.Empty(t, s.LoadClients())
	assert.Empty(t, s.LoadFlorists())
}

func TestStoreUnparsableCollectionDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := NewStore(backend, nil, zerolog.Nop())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.json"), []byte("{not json"), 0o644))

	assert.Empty(t, s.LoadEvents())
}

func TestStoreSubscribers(t *testing.T) {
	s := newTestStore(t, nil)

	var first, second []Notification
	unsubscribe := s.Subscribe(func(n Notification) { first = append(first, n) })
	s.Subscribe(func(n Notification) { second = append(second, n) })

	require.NoError(t, s.SaveClients([]entities.Client{{ID: "cl-1", FirstName: "Marie"}}))
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, CollectionClients, first[0].Collection)
	assert.Len(t, first[0].Clients, 1)

	unsubscribe()
	require.NoError(t, s.SaveClients(nil))
	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
}

func TestStorePanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	s := newTestStore(t, nil)

	s.Subscribe(func(Notification) { panic("boom") })
	notified := 0
	s.Subscribe(func(Notification) { notified++ })

	require.NoError(t, s.SaveFlorists([]entities.Florist{{ID: "fl-1", Name: "Iris"}}))
	assert.Equal(t, 1, notified)
}

func TestStoreChangeFeed(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	writer := NewStore(backend, pubsub, zerolog.Nop())
	reader := NewStore(backend, pubsub, zerolog.Nop())

	notifications := make(chan Notification, 4)
	reader.Subscribe(func(n Notification) { notifications <- n })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		_ = reader.RunFeed(ctx, pubsub)
	}()

	// gochannel only delivers to already-registered subscriptions.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, writer.SaveEvents([]entities.Event{{ID: "ev-1", Title: "Peony brunch", Date: time.Now()}}))

	select {
	case n := <-notifications:
		assert.Equal(t, CollectionEvents, n.Collection)
		require.Len(t, n.Events, 1)
		assert.Equal(t, "ev-1", n.Events[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification arrived")
	}

	cancel()
	<-feedDone
}

func TestStoreFeedIgnoresOwnMessages(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	s := NewStore(backend, pubsub, zerolog.Nop())

	feedNotifications := make(chan Notification, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		_ = s.RunFeed(ctx, pubsub)
	}()
	time.Sleep(50 * time.Millisecond)

	// Subscribe after the synchronous save notification would have fired,
	// so anything arriving here came through the feed.
	require.NoError(t, s.SaveEvents([]entities.Event{{ID: "ev-1", Date: time.Now()}}))
	s.Subscribe(func(n Notification) { feedNotifications <- n })

	select {
	case <-feedNotifications:
		t.Fatal("feed delivered the store's own change back to it")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	<-feedDone
}
