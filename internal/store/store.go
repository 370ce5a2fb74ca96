// Package store adapts raw key-value persistence into typed collections and
// fans out change notifications: synchronously to in-process subscribers,
// and over a single external change topic to other running instances.
package store

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"atelier/internal/entities"
)

type Collection string

const (
	CollectionEvents   Collection = "events"
	CollectionClients  Collection = "clients"
	CollectionFlorists Collection = "florists"
)

// ChangesTopic carries collection-change messages between instances.
const ChangesTopic = "store.changes"

const (
	metadataCollection = "collection"
	metadataOrigin     = "origin"
)

// Notification is delivered to subscribers after a collection changed.
// Only the field matching Collection is populated.
type Notification struct {
	Collection Collection
	Events     []entities.Event
	Clients    []entities.Client
	Florists   []entities.Florist
}

// Store is constructed once at startup and passed by reference; it holds no
// package-level state.
type Store struct {
	origin    string
	backend   Backend
	publisher message.Publisher
	logger    zerolog.Logger

	mu      sync.Mutex
	subs    map[int]func(Notification)
	nextSub int
}

// NewStore wires a store adapter over the given backend. The publisher may
// be nil, in which case changes are only visible in-process.
func NewStore(backend Backend, publisher message.Publisher, logger zerolog.Logger) *Store {
	return &Store{
		origin:    uuid.NewString(),
		backend:   backend,
		publisher: publisher,
		logger:    logger.With().Str("component", "store").Logger(),
		subs:      map[int]func(Notification){},
	}
}

// Subscribe registers a change callback and returns its unsubscribe
// function. Callbacks are isolated from each other: one panicking does not
// keep the rest from being notified.
func (s *Store) Subscribe(fn func(Notification)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// LoadEvents returns the stored events. A missing or unparsable collection
// degrades to an empty slice; the parse failure is only visible in the logs.
func (s *Store) LoadEvents() []entities.Event {
	data := s.read(CollectionEvents)
	if data == nil {
		return []entities.Event{}
	}
	events, err := decodeEvents(data)
	if err != nil {
		s.logger.Error().Err(err).Str("collection", string(CollectionEvents)).Msg("unparsable collection, treating as empty")
		return []entities.Event{}
	}
	return events
}

func (s *Store) SaveEvents(events []entities.Event) error {
	data, err := encodeEvents(events)
	if err != nil {
		return err
	}
	if err := s.backend.Write(string(CollectionEvents), data); err != nil {
		return err
	}
	s.notify(Notification{Collection: CollectionEvents, Events: events})
	s.publishChange(CollectionEvents, data)
	return nil
}

func (s *Store) LoadClients() []entities.Client {
	data := s.read(CollectionClients)
	if data == nil {
		return []entities.Client{}
	}
	clients, err := decodeClients(data)
	if err != nil {
		s.logger.Error().Err(err).Str("collection", string(CollectionClients)).Msg("unparsable collection, treating as empty")
		return []entities.Client{}
	}
	return clients
}

func (s *Store) SaveClients(clients []entities.Client) error {
	data, err := encodeClients(clients)
	if err != nil {
		return err
	}
	if err := s.backend.Write(string(CollectionClients), data); err != nil {
		return err
	}
	s.notify(Notification{Collection: CollectionClients, Clients: clients})
	s.publishChange(CollectionClients, data)
	return nil
}

func (s *Store) LoadFlorists() []entities.Florist {
	data := s.read(CollectionFlorists)
	if data == nil {
		return []entities.Florist{}
	}
	florists, err := decodeFlorists(data)
	if err != nil {
		s.logger.Error().Err(err).Str("collection", string(CollectionFlorists)).Msg("unparsable collection, treating as empty")
		return []entities.Florist{}
	}
	return florists
}

func (s *Store) SaveFlorists(florists []entities.Florist) error {
	data, err := encodeFlorists(florists)
	if err != nil {
		return err
	}
	if err := s.backend.Write(string(CollectionFlorists), data); err != nil {
		return err
	}
	s.notify(Notification{Collection: CollectionFlorists, Florists: florists})
	s.publishChange(CollectionFlorists, data)
	return nil
}

// RunFeed consumes the external change topic until the context ends.
// Messages published by this instance are acked and ignored; foreign ones
// trigger a re-hydration from the backend before local subscribers are
// notified. Concurrent writers race last-write-wins, by design.
func (s *Store) RunFeed(ctx context.Context, subscriber message.Subscriber) error {
	messages, err := subscriber.Subscribe(ctx, ChangesTopic)
	if err != nil {
		return err
	}

	for msg := range messages {
		if msg.Metadata.Get(metadataOrigin) == s.origin {
			msg.Ack()
			continue
		}

		collection := Collection(msg.Metadata.Get(metadataCollection))
		switch collection {
		case CollectionEvents:
			s.notify(Notification{Collection: collection, Events: s.LoadEvents()})
		case CollectionClients:
			s.notify(Notification{Collection: collection, Clients: s.LoadClients()})
		case CollectionFlorists:
			s.notify(Notification{Collection: collection, Florists: s.LoadFlorists()})
		default:
			s.logger.Warn().Str("collection", string(collection)).Msg("change message for unknown collection")
		}
		msg.Ack()
	}

	return nil
}

func (s *Store) read(collection Collection) []byte {
	data, err := s.backend.Read(string(collection))
	if err != nil {
		s.logger.Error().Err(err).Str("collection", string(collection)).Msg("backend read failed, treating as empty")
		return nil
	}
	return data
}

func (s *Store) notify(n Notification) {
	s.mu.Lock()
	subs := make([]func(Notification), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		s.call(fn, n)
	}
}

func (s *Store) call(fn func(Notification), n Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("store subscriber panicked")
		}
	}()
	fn(n)
}

// publishChange is best-effort: a broker outage must not fail the save that
// already landed on the backend.
func (s *Store) publishChange(collection Collection, payload []byte) {
	if s.publisher == nil {
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(metadataCollection, string(collection))
	msg.Metadata.Set(metadataOrigin, s.origin)

	if err := s.publisher.Publish(ChangesTopic, msg); err != nil {
		s.logger.Error().Err(err).Str("collection", string(collection)).Msg("failed to publish change message")
	}
}
