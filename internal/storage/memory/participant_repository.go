package memory

import (
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/domain/participant"
	"github.com/gravadigital/santa-api/internal/storage"
)

// ParticipantRepository is the in-memory storage.ParticipantRepository
type ParticipantRepository struct {
	store *Store
}

// NewParticipantRepository creates a participant repository over the store
func NewParticipantRepository(store *Store) *ParticipantRepository {
	return &ParticipantRepository{store: store}
}

func (r *ParticipantRepository) Add(p *participant.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if p.UserID != nil {
		for _, existing := range r.store.participants[p.EventID] {
			if existing.UserID != nil && *existing.UserID == *p.UserID {
				return storage.ErrDuplicate
			}
		}
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	copied := *p
	r.store.participants[p.EventID] = append(r.store.participants[p.EventID], &copied)
	return nil
}

func (r *ParticipantRepository) ListByEvent(eventID uuid.UUID) ([]*participant.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := r.store.participants[eventID]
	out := make([]*participant.Participant, len(stored))
	for i, p := range stored {
		copied := *p
		out[i] = &copied
	}
	return out, nil
}

func (r *ParticipantRepository) GetByID(id uuid.UUID) (*participant.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, participants := range r.store.participants {
		for _, p := range participants {
			if p.ID == id {
				copied := *p
				return &copied, nil
			}
		}
	}
	return nil, storage.ErrNotFound
}

func (r *ParticipantRepository) GetByEventAndUser(eventID, userID uuid.UUID) (*participant.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.participants[eventID] {
		if p.UserID != nil && *p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}
