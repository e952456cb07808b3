// Package memory holds in-memory repository implementations honoring
// the same contracts as storage/postgres. They back the service tests
// and keep the draw semantics (atomicity, lock-on-assigned) observable
// without a database.
package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
	"github.com/gravadigital/santa-api/internal/domain/event"
	"github.com/gravadigital/santa-api/internal/domain/participant"
	"github.com/gravadigital/santa-api/internal/domain/user"
	"github.com/gravadigital/santa-api/internal/domain/wishlist"
	"github.com/gravadigital/santa-api/internal/storage"
)

// Store is the shared backing state for the in-memory repositories.
// One mutex covers everything so the Assign transaction semantics
// (status re-check + batch insert + flip, all-or-nothing) hold.
type Store struct {
	mu           sync.Mutex
	events       map[uuid.UUID]*event.Event
	participants map[uuid.UUID][]*participant.Participant // by event, insertion order
	assignments  map[uuid.UUID][]*assignment.Assignment   // by event
	users        map[uuid.UUID]*user.User
	friendships  map[uuid.UUID][]uuid.UUID // adjacency, both directions
	items        map[uuid.UUID]*wishlist.Item
	reservations map[uuid.UUID]*wishlist.Reservation // by wishlist item
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		events:       make(map[uuid.UUID]*event.Event),
		participants: make(map[uuid.UUID][]*participant.Participant),
		assignments:  make(map[uuid.UUID][]*assignment.Assignment),
		users:        make(map[uuid.UUID]*user.User),
		friendships:  make(map[uuid.UUID][]uuid.UUID),
		items:        make(map[uuid.UUID]*wishlist.Item),
		reservations: make(map[uuid.UUID]*wishlist.Reservation),
	}
}

// EventRepository is the in-memory storage.EventRepository
type EventRepository struct {
	store *Store
}

// NewEventRepository creates an event repository over the store
func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

func (r *EventRepository) Create(ev *event.Event, creator *participant.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	copied := *ev
	r.store.events[ev.ID] = &copied

	creator.EventID = ev.ID
	if creator.ID == uuid.Nil {
		creator.ID = uuid.New()
	}
	p := *creator
	r.store.participants[ev.ID] = append(r.store.participants[ev.ID], &p)
	return nil
}

func (r *EventRepository) GetByID(id uuid.UUID) (*event.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ev, exists := r.store.events[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copied := *ev
	return &copied, nil
}

func (r *EventRepository) GetByInviteCode(code string) (*event.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, ev := range r.store.events {
		if ev.InviteCode == code {
			copied := *ev
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *EventRepository) GetByParticipantUser(userID uuid.UUID) ([]*event.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var events []*event.Event
	for eventID, participants := range r.store.participants {
		for _, p := range participants {
			if p.UserID != nil && *p.UserID == userID {
				if ev, exists := r.store.events[eventID]; exists {
					copied := *ev
					events = append(events, &copied)
				}
				break
			}
		}
	}
	slices.SortFunc(events, func(a, b *event.Event) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return events, nil
}

func (r *EventRepository) Update(ev *event.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, exists := r.store.events[ev.ID]
	if !exists {
		return storage.ErrNotFound
	}
	existing.Name = ev.Name
	existing.MinBudget = ev.MinBudget
	existing.MaxBudget = ev.MaxBudget
	existing.EventDate = ev.EventDate
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *EventRepository) Delete(id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.events[id]; !exists {
		return storage.ErrNotFound
	}
	delete(r.store.events, id)
	delete(r.store.participants, id)
	delete(r.store.assignments, id)
	return nil
}

func (r *EventRepository) Assign(eventID uuid.UUID, pairs []assignment.Pair) ([]*assignment.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ev, exists := r.store.events[eventID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	if ev.Status != event.StatusCreated || len(r.store.assignments[eventID]) > 0 {
		return nil, storage.ErrEventLocked
	}

	rows := make([]*assignment.Assignment, len(pairs))
	for i, p := range pairs {
		rows[i] = &assignment.Assignment{
			ID:         uuid.New(),
			EventID:    eventID,
			GiverID:    p.GiverID,
			ReceiverID: p.ReceiverID,
			GiftStatus: assignment.GiftPending,
			CreatedAt:  time.Now(),
		}
	}
	r.store.assignments[eventID] = rows
	ev.Status = event.StatusAssigned

	out := make([]*assignment.Assignment, len(rows))
	for i, row := range rows {
		copied := *row
		out[i] = &copied
	}
	return out, nil
}
