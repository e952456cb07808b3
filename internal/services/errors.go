package services

import (
	"errors"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
)

// Service-level errors. Handlers map these onto HTTP statuses; the
// repositories never leak their own sentinels past this layer.
var (
	// ErrInsufficientParticipants is returned by the draw when the event
	// has fewer than two participants.
	ErrInsufficientParticipants = assignment.ErrInsufficientParticipants

	// ErrEventLocked rejects writes that require the event to still be
	// in the created status (second draw, late joins, edits).
	ErrEventLocked = errors.New("event is locked after the draw")

	// ErrNotAParticipant hides draw results from non-members
	ErrNotAParticipant = errors.New("user is not a participant of this event")

	// ErrNotAuthorized rejects updates to records the caller does not own
	ErrNotAuthorized = errors.New("not authorized to modify this record")

	// ErrInvalidTransition rejects gift status jumps that skip a stage
	ErrInvalidTransition = errors.New("invalid gift status transition")

	// ErrValidation wraps input validation failures so handlers can map
	// them to 400 without enumerating every message.
	ErrValidation = errors.New("validation failed")

	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrItemNotFound         = errors.New("wishlist item not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrNotEventCreator      = errors.New("only the event creator can do this")
	ErrAlreadyParticipating = errors.New("user already participates in this event")
	ErrItemAlreadyReserved  = errors.New("wishlist item is already reserved")
	ErrImageTooLarge        = errors.New("image exceeds the maximum allowed size")
	ErrImageStoreDisabled   = errors.New("image storage is not configured")
)
