package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/storage"
)

// AssignmentRepository implements storage.AssignmentRepository using GORM
type AssignmentRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewAssignmentRepository creates a new PostgreSQL assignment repository
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{
		db:  db,
		log: logger.Repository("assignment"),
	}
}

func (r *AssignmentRepository) GetByID(id uuid.UUID) (*assignment.Assignment, error) {
	var a assignment.Assignment
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

func (r *AssignmentRepository) GetByEventAndGiver(eventID, giverID uuid.UUID) (*assignment.Assignment, error) {
	var a assignment.Assignment
	err := r.db.
		Where("event_id = ? AND giver_id = ?", eventID, giverID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment for giver: %w", err)
	}
	return &a, nil
}

func (r *AssignmentRepository) ListByEvent(eventID uuid.UUID) ([]*assignment.Assignment, error) {
	var assignments []*assignment.Assignment
	if err := r.db.Where("event_id = ?", eventID).Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// UpdateGiftTracking writes the gift tracking columns only. Explicit
// Select keeps the giver/receiver edge out of the update set.
func (r *AssignmentRepository) UpdateGiftTracking(a *assignment.Assignment) error {
	result := r.db.Model(&assignment.Assignment{}).
		Where("id = ?", a.ID).
		Select("gift_status", "gift_photo_url", "gift_note", "purchased_at", "delivered_at").
		Updates(map[string]interface{}{
			"gift_status":    a.GiftStatus,
			"gift_photo_url": a.GiftPhotoURL,
			"gift_note":      a.GiftNote,
			"purchased_at":   a.PurchasedAt,
			"delivered_at":   a.DeliveredAt,
		})
	if result.Error != nil {
		r.log.Error("failed to update gift tracking", "assignment_id", a.ID, "error", result.Error)
		return fmt.Errorf("failed to update gift tracking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
