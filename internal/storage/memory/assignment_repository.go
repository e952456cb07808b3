package memory

import (
	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
	"github.com/gravadigital/santa-api/internal/storage"
)

// AssignmentRepository is the in-memory storage.AssignmentRepository
type AssignmentRepository struct {
	store *Store
}

// NewAssignmentRepository creates an assignment repository over the store
func NewAssignmentRepository(store *Store) *AssignmentRepository {
	return &AssignmentRepository{store: store}
}

func (r *AssignmentRepository) GetByID(id uuid.UUID) (*assignment.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, assignments := range r.store.assignments {
		for _, a := range assignments {
			if a.ID == id {
				copied := *a
				return &copied, nil
			}
		}
	}
	return nil, storage.ErrNotFound
}

func (r *AssignmentRepository) GetByEventAndGiver(eventID, giverID uuid.UUID) (*assignment.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, a := range r.store.assignments[eventID] {
		if a.GiverID == giverID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *AssignmentRepository) ListByEvent(eventID uuid.UUID) ([]*assignment.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := r.store.assignments[eventID]
	out := make([]*assignment.Assignment, len(stored))
	for i, a := range stored {
		copied := *a
		out[i] = &copied
	}
	return out, nil
}

func (r *AssignmentRepository) UpdateGiftTracking(a *assignment.Assignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, assignments := range r.store.assignments {
		for _, existing := range assignments {
			if existing.ID == a.ID {
				existing.GiftStatus = a.GiftStatus
				existing.GiftPhotoURL = a.GiftPhotoURL
				existing.GiftNote = a.GiftNote
				existing.PurchasedAt = a.PurchasedAt
				existing.DeliveredAt = a.DeliveredAt
				return nil
			}
		}
	}
	return storage.ErrNotFound
}
