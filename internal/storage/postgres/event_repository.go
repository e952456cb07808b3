package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
	"github.com/gravadigital/santa-api/internal/domain/event"
	"github.com/gravadigital/santa-api/internal/domain/participant"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/storage"
)

// EventRepository implements storage.EventRepository using GORM
type EventRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewEventRepository creates a new PostgreSQL event repository
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		db:  db,
		log: logger.Repository("event"),
	}
}

func (r *EventRepository) Create(ev *event.Event, creator *participant.Participant) error {
	r.log.Debug("creating event", "name", ev.Name, "creator_id", ev.CreatorID)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
		creator.EventID = ev.ID
		return tx.Create(creator).Error
	})
	if err != nil {
		r.log.Error("failed to create event", "error", err)
		return fmt.Errorf("failed to create event: %w", err)
	}

	r.log.Info("event created", "id", ev.ID, "invite_code", ev.InviteCode)
	return nil
}

func (r *EventRepository) GetByID(id uuid.UUID) (*event.Event, error) {
	var ev event.Event
	if err := r.db.First(&ev, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &ev, nil
}

func (r *EventRepository) GetByInviteCode(code string) (*event.Event, error) {
	var ev event.Event
	if err := r.db.First(&ev, "invite_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event by invite code: %w", err)
	}
	return &ev, nil
}

func (r *EventRepository) GetByParticipantUser(userID uuid.UUID) ([]*event.Event, error) {
	var events []*event.Event
	err := r.db.
		Joins("JOIN event_participants ON event_participants.event_id = santa_events.id").
		Where("event_participants.user_id = ?", userID).
		Order("santa_events.created_at DESC").
		Find(&events).Error
	if err != nil {
		r.log.Error("failed to list user events", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list user events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Update(ev *event.Event) error {
	// Solo campos editables mientras el evento sigue en `created`
	result := r.db.Model(&event.Event{}).
		Where("id = ?", ev.ID).
		Updates(map[string]interface{}{
			"name":       ev.Name,
			"min_budget": ev.MinBudget,
			"max_budget": ev.MaxBudget,
			"event_date": ev.EventDate,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(id uuid.UUID) error {
	r.log.Debug("deleting event", "id", id)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&assignment.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&participant.Participant{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&event.Event{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		r.log.Error("failed to delete event", "id", id, "error", err)
		return fmt.Errorf("failed to delete event: %w", err)
	}

	r.log.Info("event deleted", "id", id)
	return nil
}

// Assign is the draw transaction: lock the event row, re-verify it is
// still in `created`, insert the whole assignment batch and flip the
// status. Any failure rolls the whole thing back, so the event never
// ends up with assignments while still reading `created` or vice
// versa. The unique (event_id, giver_id) index backstops the lock.
func (r *EventRepository) Assign(eventID uuid.UUID, pairs []assignment.Pair) ([]*assignment.Assignment, error) {
	var created []*assignment.Assignment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ev event.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ev, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		if ev.Status != event.StatusCreated {
			return storage.ErrEventLocked
		}

		rows := make([]*assignment.Assignment, len(pairs))
		for i, p := range pairs {
			rows[i] = &assignment.Assignment{
				EventID:    eventID,
				GiverID:    p.GiverID,
				ReceiverID: p.ReceiverID,
				GiftStatus: assignment.GiftPending,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return storage.ErrEventLocked
			}
			return err
		}

		result := tx.Model(&event.Event{}).
			Where("id = ? AND status = ?", eventID, event.StatusCreated).
			Update("status", event.StatusAssigned)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return storage.ErrEventLocked
		}

		created = rows
		return nil
	})

	if err != nil {
		if errors.Is(err, storage.ErrEventLocked) || errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		r.log.Error("draw transaction failed", "event_id", eventID, "error", err)
		return nil, fmt.Errorf("draw transaction failed: %w", err)
	}

	r.log.Info("assignments persisted", "event_id", eventID, "count", len(created))
	return created, nil
}
