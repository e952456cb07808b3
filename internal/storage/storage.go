// Package storage defines the repository contracts the services depend
// on. PostgreSQL implementations live in storage/postgres; in-memory
// implementations used by tests live in storage/memory.
package storage

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
	"github.com/gravadigital/santa-api/internal/domain/event"
	"github.com/gravadigital/santa-api/internal/domain/participant"
	"github.com/gravadigital/santa-api/internal/domain/user"
	"github.com/gravadigital/santa-api/internal/domain/wishlist"
)

// Sentinel errors shared by every repository implementation
var (
	// ErrNotFound signals that the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate signals a unique-constraint violation
	ErrDuplicate = errors.New("duplicate record")

	// ErrEventLocked signals a write that requires the event to still be
	// in the created status. Assign returns it when a concurrent draw
	// won the race.
	ErrEventLocked = errors.New("event is already assigned")
)

// EventRepository persists events and owns the draw transaction
type EventRepository interface {
	// Create stores the event together with its creator participant row
	// in one transaction.
	Create(ev *event.Event, creator *participant.Participant) error
	GetByID(id uuid.UUID) (*event.Event, error)
	GetByInviteCode(code string) (*event.Event, error)
	// GetByParticipantUser lists events where the user has a participant
	// record, newest first.
	GetByParticipantUser(userID uuid.UUID) ([]*event.Event, error)
	// Update persists name/budget/date edits. Status is never written
	// here; only Assign flips it.
	Update(ev *event.Event) error
	// Delete removes the event and cascades to its participants and
	// assignments atomically.
	Delete(id uuid.UUID) error
	// Assign atomically inserts one assignment row per pair and flips
	// the event status created→assigned. It re-checks the status under a
	// row lock inside the transaction and returns ErrEventLocked if the
	// event is no longer in created, leaving the store untouched.
	Assign(eventID uuid.UUID, pairs []assignment.Pair) ([]*assignment.Assignment, error)
}

// ParticipantRepository reads and extends an event's participant list
type ParticipantRepository interface {
	// Add inserts a participant. ErrDuplicate when the linked user is
	// already in the event.
	Add(p *participant.Participant) error
	// ListByEvent returns participants in insertion order, stable across
	// calls absent mutation.
	ListByEvent(eventID uuid.UUID) ([]*participant.Participant, error)
	GetByID(id uuid.UUID) (*participant.Participant, error)
	// GetByEventAndUser resolves a user to their participant record.
	// ErrNotFound when the user is not part of the event.
	GetByEventAndUser(eventID, userID uuid.UUID) (*participant.Participant, error)
}

// AssignmentRepository reads assignments and updates gift tracking
type AssignmentRepository interface {
	GetByID(id uuid.UUID) (*assignment.Assignment, error)
	GetByEventAndGiver(eventID, giverID uuid.UUID) (*assignment.Assignment, error)
	ListByEvent(eventID uuid.UUID) ([]*assignment.Assignment, error)
	// UpdateGiftTracking persists gift status, note, photo and stage
	// timestamps. The giver/receiver edge itself is immutable.
	UpdateGiftTracking(a *assignment.Assignment) error
}

// UserRepository persists accounts, points and the friend graph
type UserRepository interface {
	Create(u *user.User) error
	GetByID(id uuid.UUID) (*user.User, error)
	GetByReferralCode(code string) (*user.User, error)
	// AddPoints atomically increments the balance and returns the new total
	AddPoints(id uuid.UUID, delta int) (int, error)
	SetReferralCode(id uuid.UUID, code string) error
	GrantAchievement(id uuid.UUID, code string) error
	CountReferrals(id uuid.UUID) (int64, error)
	// Leaderboard returns the top users ordered by points descending
	Leaderboard(limit int) ([]*user.User, error)
	// AddFriendship records a mutual friend edge; adding an existing
	// edge is a no-op.
	AddFriendship(userID, friendID uuid.UUID) error
	ListFriends(userID uuid.UUID) ([]*user.User, error)
}

// WishlistRepository persists wishlist items and their reservations
type WishlistRepository interface {
	CreateItem(item *wishlist.Item) error
	GetItem(id uuid.UUID) (*wishlist.Item, error)
	ListByUser(userID uuid.UUID) ([]*wishlist.Item, error)
	DeleteItem(id, userID uuid.UUID) error
	UpdatePrivacy(id, userID uuid.UUID, privacy wishlist.Privacy) error
	// SetImageURL attaches an uploaded image to the owner's own item
	SetImageURL(id, userID uuid.UUID, url string) error
	// Reserve claims an item. ErrDuplicate when it is already claimed.
	Reserve(itemID, userID uuid.UUID) (*wishlist.Reservation, error)
	// Unreserve releases the caller's own claim; ErrNotFound otherwise
	Unreserve(itemID, userID uuid.UUID) error
	GetReservation(itemID uuid.UUID) (*wishlist.Reservation, error)
	ListReservationsByUser(userID uuid.UUID) ([]*wishlist.Reservation, error)
}
