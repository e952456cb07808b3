// Package services implements the application use cases on top of the
// repository contracts. Handlers stay thin; everything that must hold
// regardless of transport (authorization, state-machine rules, the draw
// itself) lives here.
package services

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
	"github.com/gravadigital/santa-api/internal/domain/event"
	"github.com/gravadigital/santa-api/internal/domain/participant"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/notifications"
	"github.com/gravadigital/santa-api/internal/storage"
	"github.com/gravadigital/santa-api/internal/storage/objectstore"
	"github.com/gravadigital/santa-api/internal/validation"
)

// Points awarded by exchange activity
const (
	PointsDrawParticipation = 20
	PointsGiftReserved      = 10
	PointsReferral          = 50
)

// Achievement codes granted by exchange milestones
const (
	AchievementOrganizer = "organizer"
	AchievementGifter    = "gifter"
)

// PointsAwarder credits activity points to a user account. Satisfied by
// ProfileService; a separate interface keeps the services decoupled.
type PointsAwarder interface {
	AwardPoints(ctx context.Context, userID uuid.UUID, delta int) (int, error)
}

// SantaService orchestrates events, participants and the name draw
type SantaService struct {
	events       storage.EventRepository
	participants storage.ParticipantRepository
	assignments  storage.AssignmentRepository
	users        storage.UserRepository
	points       PointsAwarder
	notifier     notifications.Notifier
	images       objectstore.ImageStore
	maxImageSize int64
	validator    validation.EventValidation
	log          *log.Logger
}

// NewSantaService creates the exchange service. images may be nil when
// no object storage is configured; gift photo uploads then fail with
// ErrImageStoreDisabled.
func NewSantaService(
	events storage.EventRepository,
	participants storage.ParticipantRepository,
	assignments storage.AssignmentRepository,
	users storage.UserRepository,
	points PointsAwarder,
	notifier notifications.Notifier,
	images objectstore.ImageStore,
	maxImageSize int64,
) *SantaService {
	return &SantaService{
		events:       events,
		participants: participants,
		assignments:  assignments,
		users:        users,
		points:       points,
		notifier:     notifier,
		images:       images,
		maxImageSize: maxImageSize,
		log:          logger.Service("santa"),
	}
}

// EventInput carries the editable fields of an event
type EventInput struct {
	Name      string     `json:"name"`
	MinBudget *int       `json:"min_budget"`
	MaxBudget *int       `json:"max_budget"`
	EventDate *time.Time `json:"event_date"`
}

// EventDetails is an event together with its participant list
type EventDetails struct {
	Event        *event.Event               `json:"event"`
	Participants []*participant.Participant `json:"participants"`
}

// MyAssignment is the caller's own draw result: who they give to and
// how far along the gift is.
type MyAssignment struct {
	Assignment *assignment.Assignment   `json:"assignment"`
	Receiver   *participant.Participant `json:"receiver"`
}

// CreateEvent creates an event and enrolls the creator as its first
// participant in the same transaction.
func (s *SantaService) CreateEvent(ctx context.Context, creatorID uuid.UUID, in EventInput) (*event.Event, error) {
	if err := s.validateEventInput(in); err != nil {
		return nil, err
	}

	creator, err := s.users.GetByID(creatorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	ev := event.NewEvent(in.Name, creatorID, in.MinBudget, in.MaxBudget, in.EventDate, code)
	p := participant.NewMember(ev.ID, creatorID, creator.Name, nil)

	if err := s.events.Create(ev, p); err != nil {
		return nil, err
	}

	s.log.Info("event created", "event_id", ev.ID, "creator_id", creatorID, "name", ev.Name)
	return ev, nil
}

// GetEventByInviteCode resolves an invite link to its event so the
// joining user can see what they are about to enter.
func (s *SantaService) GetEventByInviteCode(code string) (*EventDetails, error) {
	ev, err := s.events.GetByInviteCode(code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	members, err := s.participants.ListByEvent(ev.ID)
	if err != nil {
		return nil, err
	}
	return &EventDetails{Event: ev, Participants: members}, nil
}

// JoinByInviteCode enrolls the user into the event behind the invite
// code and records a friendship with the event creator.
func (s *SantaService) JoinByInviteCode(ctx context.Context, code string, userID uuid.UUID) (*event.Event, error) {
	ev, err := s.events.GetByInviteCode(code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if ev.IsLocked() {
		return nil, ErrEventLocked
	}

	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	p := participant.NewMember(ev.ID, userID, u.Name, &ev.CreatorID)
	if err := s.participants.Add(p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrAlreadyParticipating
		}
		return nil, err
	}

	if err := s.users.AddFriendship(userID, ev.CreatorID); err != nil {
		// joining already succeeded; the friend edge is best effort
		s.log.Warn("failed to record friendship", "user_id", userID, "friend_id", ev.CreatorID, "error", err)
	}
	if s.notifier != nil {
		s.notifier.MemberJoined(ctx, ev.CreatorID, ev.Name, u.Name)
	}

	s.log.Info("user joined event", "event_id", ev.ID, "user_id", userID)
	return ev, nil
}

// MyEvents lists the events the user participates in, newest first
func (s *SantaService) MyEvents(userID uuid.UUID) ([]*event.Event, error) {
	return s.events.GetByParticipantUser(userID)
}

// GetEvent returns an event with its participants. Only participants
// may see the details.
func (s *SantaService) GetEvent(eventID, userID uuid.UUID) (*EventDetails, error) {
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if _, err := s.participants.GetByEventAndUser(eventID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotAParticipant
		}
		return nil, err
	}

	members, err := s.participants.ListByEvent(eventID)
	if err != nil {
		return nil, err
	}
	return &EventDetails{Event: ev, Participants: members}, nil
}

// UpdateEvent edits name/budget/date. Creator only, and only while the
// event has not been drawn.
func (s *SantaService) UpdateEvent(eventID, userID uuid.UUID, in EventInput) (*event.Event, error) {
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !ev.IsCreator(userID) {
		return nil, ErrNotEventCreator
	}
	if ev.IsLocked() {
		return nil, ErrEventLocked
	}
	if err := s.validateEventInput(in); err != nil {
		return nil, err
	}

	ev.Name = in.Name
	ev.MinBudget = in.MinBudget
	ev.MaxBudget = in.MaxBudget
	ev.EventDate = in.EventDate
	if err := s.events.Update(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// DeleteEvent removes the event with its participants and assignments.
// Creator only.
func (s *SantaService) DeleteEvent(eventID, userID uuid.UUID) error {
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if !ev.IsCreator(userID) {
		return ErrNotEventCreator
	}
	if err := s.events.Delete(eventID); err != nil {
		return err
	}
	s.log.Info("event deleted", "event_id", eventID, "creator_id", userID)
	return nil
}

// AddParticipant adds a placeholder entry for someone without an
// account (a relative, a coworker who won't install the app). Creator
// only, and only before the draw.
func (s *SantaService) AddParticipant(eventID, actorID uuid.UUID, name string) (*participant.Participant, error) {
	if err := validation.ValidateRequired(name, "name"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validation.ValidateMaxLength(name, 255, "name"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ev, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !ev.IsCreator(actorID) {
		return nil, ErrNotEventCreator
	}
	if ev.IsLocked() {
		return nil, ErrEventLocked
	}

	p := participant.NewMock(eventID, name)
	if err := s.participants.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// DrawNames runs the draw: every participant is matched to a receiver,
// nobody gets themselves, and the event flips to assigned. The flip is
// terminal; repeating the call returns ErrEventLocked and changes
// nothing. Notifications and points run after the draw is committed and
// never affect its outcome.
func (s *SantaService) DrawNames(ctx context.Context, eventID, actorID uuid.UUID) ([]*assignment.Assignment, error) {
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !ev.IsCreator(actorID) {
		return nil, ErrNotEventCreator
	}
	if ev.IsLocked() {
		return nil, ErrEventLocked
	}

	members, err := s.participants.ListByEvent(eventID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}

	pairs, err := assignment.Draw(ids)
	if err != nil {
		return nil, err
	}

	created, err := s.events.Assign(eventID, pairs)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEventLocked):
			// a concurrent call won the race; their draw stands
			return nil, ErrEventLocked
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	s.log.Info("names drawn", "event_id", eventID, "participants", len(members))
	s.afterDraw(ctx, ev, members, created)
	return created, nil
}

// afterDraw runs the post-commit side effects. Failures are logged and
// swallowed; the draw already succeeded.
func (s *SantaService) afterDraw(ctx context.Context, ev *event.Event, members []*participant.Participant, created []*assignment.Assignment) {
	byID := make(map[uuid.UUID]*participant.Participant, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	for _, a := range created {
		giver, ok := byID[a.GiverID]
		if !ok || giver.IsMock() {
			continue
		}
		receiver := byID[a.ReceiverID]
		if receiver != nil && s.notifier != nil {
			s.notifier.DrawCompleted(ctx, *giver.UserID, ev.Name, receiver.Name)
		}
		if s.points != nil {
			if _, err := s.points.AwardPoints(ctx, *giver.UserID, PointsDrawParticipation); err != nil {
				s.log.Warn("failed to award draw points", "user_id", *giver.UserID, "error", err)
			}
		}
	}

	if err := s.users.GrantAchievement(ev.CreatorID, AchievementOrganizer); err != nil {
		s.log.Warn("failed to grant achievement", "user_id", ev.CreatorID, "error", err)
	}
}

// GetMyAssignment returns the caller's own draw result. Before the draw
// it returns (nil, nil); a giver never sees anyone else's assignment.
func (s *SantaService) GetMyAssignment(eventID, userID uuid.UUID) (*MyAssignment, error) {
	p, err := s.participants.GetByEventAndUser(eventID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotAParticipant
		}
		return nil, err
	}

	a, err := s.assignments.GetByEventAndGiver(eventID, p.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// the draw has not happened yet
			return nil, nil
		}
		return nil, err
	}

	receiver, err := s.participants.GetByID(a.ReceiverID)
	if err != nil {
		return nil, err
	}
	return &MyAssignment{Assignment: a, Receiver: receiver}, nil
}

// GiftUpdateInput carries a gift tracking change
type GiftUpdateInput struct {
	Status   assignment.GiftStatus `json:"status"`
	Note     *string               `json:"note"`
	PhotoURL *string               `json:"photo_url"`
}

// UpdateGiftStatus moves the caller's own assignment one step along
// pending ↔ purchased ↔ delivered. Only the giver may touch it.
func (s *SantaService) UpdateGiftStatus(ctx context.Context, assignmentID, userID uuid.UUID, in GiftUpdateInput) (*assignment.Assignment, error) {
	a, err := s.assignments.GetByID(assignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	giver, err := s.participants.GetByID(a.GiverID)
	if err != nil {
		return nil, err
	}
	if giver.UserID == nil || *giver.UserID != userID {
		return nil, ErrNotAuthorized
	}

	if err := a.ApplyGiftStatus(in.Status, time.Now()); err != nil {
		return nil, ErrInvalidTransition
	}
	if in.Note != nil {
		a.GiftNote = in.Note
	}
	if in.PhotoURL != nil {
		a.GiftPhotoURL = in.PhotoURL
	}

	if err := s.assignments.UpdateGiftTracking(a); err != nil {
		return nil, err
	}

	if in.Status == assignment.GiftDelivered {
		if err := s.users.GrantAchievement(userID, AchievementGifter); err != nil {
			s.log.Warn("failed to grant achievement", "user_id", userID, "error", err)
		}
	}
	return a, nil
}

// UploadGiftPhoto stores a photo of the gift and attaches it to the
// caller's own assignment.
func (s *SantaService) UploadGiftPhoto(ctx context.Context, assignmentID, userID uuid.UUID, filename, contentType string, data []byte) (*assignment.Assignment, error) {
	if s.images == nil {
		return nil, ErrImageStoreDisabled
	}
	if int64(len(data)) > s.maxImageSize {
		return nil, ErrImageTooLarge
	}

	a, err := s.assignments.GetByID(assignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	giver, err := s.participants.GetByID(a.GiverID)
	if err != nil {
		return nil, err
	}
	if giver.UserID == nil || *giver.UserID != userID {
		return nil, ErrNotAuthorized
	}

	key := fmt.Sprintf("gifts/%s/%d_%s", a.EventID, time.Now().UnixMilli(), filename)
	url, err := s.images.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}

	a.GiftPhotoURL = &url
	if err := s.assignments.UpdateGiftTracking(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SantaService) validateEventInput(in EventInput) error {
	if err := s.validator.ValidateEventName(in.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validation.ValidateBudgetRange(in.MinBudget, in.MaxBudget); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validation.ValidateEventDate(in.EventDate); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// generateInviteCode returns 16 hex characters from 8 random bytes
func generateInviteCode() (string, error) {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
