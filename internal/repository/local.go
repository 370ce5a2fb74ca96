// Local repositories wrap the store adapter's load-modify-save cycle and
// serialize in-process mutations. Records are never hard-deleted; archival
// is a flag on the event.
package repository

import (
	"context"
	"errors"
	"sync"

	"atelier/internal/entities"
	"atelier/internal/store"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrFloristNotFound = errors.New("florist not found")
)

type EventsRepo struct {
	store *store.Store
	mu    sync.Mutex
}

func NewEventsRepo(s *store.Store) *EventsRepo {
	return &EventsRepo{store: s}
}

func (r *EventsRepo) List(ctx context.Context) ([]entities.Event, error) {
	return r.store.LoadEvents(), nil
}

func (r *EventsRepo) Get(ctx context.Context, id string) (entities.Event, error) {
	for _, ev := range r.store.LoadEvents() {
		if ev.ID == id {
			return ev, nil
		}
	}
	return entities.Event{}, ErrEventNotFound
}

func (r *EventsRepo) Create(ctx context.Context, ev entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.store.LoadEvents()
	events = append(events, ev)
	return r.store.SaveEvents(events)
}

func (r *EventsRepo) Update(ctx context.Context, ev entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.store.LoadEvents()
	for i := range events {
		if events[i].ID == ev.ID {
			events[i] = ev
			return r.store.SaveEvents(events)
		}
	}
	return ErrEventNotFound
}

// Mutate runs fn against the stored event under the repo lock and persists
// the result only when fn succeeds, so a failed precondition never leaves a
// partial state change.
func (r *EventsRepo) Mutate(ctx context.Context, id string, fn func(*entities.Event) error) (entities.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.store.LoadEvents()
	for i := range events {
		if events[i].ID != id {
			continue
		}
		if err := fn(&events[i]); err != nil {
			return entities.Event{}, err
		}
		if err := r.store.SaveEvents(events); err != nil {
			return entities.Event{}, err
		}
		return events[i], nil
	}
	return entities.Event{}, ErrEventNotFound
}

type ClientsRepo struct {
	store *store.Store
	mu    sync.Mutex
}

func NewClientsRepo(s *store.Store) *ClientsRepo {
	return &ClientsRepo{store: s}
}

func (r *ClientsRepo) List(ctx context.Context) ([]entities.Client, error) {
	return r.store.LoadClients(), nil
}

func (r *ClientsRepo) Get(ctx context.Context, id string) (entities.Client, error) {
	for _, c := range r.store.LoadClients() {
		if c.ID == id {
			return c, nil
		}
	}
	return entities.Client{}, ErrClientNotFound
}

func (r *ClientsRepo) Create(ctx context.Context, c entities.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients := r.store.LoadClients()
	clients = append(clients, c)
	return r.store.SaveClients(clients)
}

func (r *ClientsRepo) Update(ctx context.Context, c entities.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients := r.store.LoadClients()
	for i := range clients {
		if clients[i].ID == c.ID {
			clients[i] = c
			return r.store.SaveClients(clients)
		}
	}
	return ErrClientNotFound
}

type FloristsRepo struct {
	store *store.Store
	mu    sync.Mutex
}

func NewFloristsRepo(s *store.Store) *FloristsRepo {
	return &FloristsRepo{store: s}
}

func (r *FloristsRepo) List(ctx context.Context) ([]entities.Florist, error) {
	return r.store.LoadFlorists(), nil
}

func (r *FloristsRepo) Get(ctx context.Context, id string) (entities.Florist, error) {
	for _, f := range r.store.LoadFlorists() {
		if f.ID == id {
			return f, nil
		}
	}
	return entities.Florist{}, ErrFloristNotFound
}

func (r *FloristsRepo) Create(ctx context.Context, f entities.Florist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	florists := r.store.LoadFlorists()
	florists = append(florists, f)
	return r.store.SaveFlorists(florists)
}

func (r *FloristsRepo) Update(ctx context.Context, f entities.Florist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	florists := r.store.LoadFlorists()
	for i := range florists {
		if florists[i].ID == f.ID {
			florists[i] = f
			return r.store.SaveFlorists(florists)
		}
	}
	return ErrFloristNotFound
}
