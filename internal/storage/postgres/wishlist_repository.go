package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/santa-api/internal/domain/wishlist"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/storage"
)

// WishlistRepository implements storage.WishlistRepository using GORM
type WishlistRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewWishlistRepository creates a new PostgreSQL wishlist repository
func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{
		db:  db,
		log: logger.Repository("wishlist"),
	}
}

func (r *WishlistRepository) CreateItem(item *wishlist.Item) error {
	if err := r.db.Create(item).Error; err != nil {
		r.log.Error("failed to create wishlist item", "user_id", item.UserID, "error", err)
		return fmt.Errorf("failed to create wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepository) GetItem(id uuid.UUID) (*wishlist.Item, error) {
	var item wishlist.Item
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	return &item, nil
}

func (r *WishlistRepository) ListByUser(userID uuid.UUID) ([]*wishlist.Item, error) {
	var items []*wishlist.Item
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	return items, nil
}

func (r *WishlistRepository) DeleteItem(id, userID uuid.UUID) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&wishlist.Item{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		// la reserva cae junto con el item
		return tx.Where("wishlist_item_id = ?", id).Delete(&wishlist.Reservation{}).Error
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepository) UpdatePrivacy(id, userID uuid.UUID, privacy wishlist.Privacy) error {
	result := r.db.Model(&wishlist.Item{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("privacy", privacy)
	if result.Error != nil {
		return fmt.Errorf("failed to update privacy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *WishlistRepository) SetImageURL(id, userID uuid.UUID, url string) error {
	result := r.db.Model(&wishlist.Item{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("image_url", url)
	if result.Error != nil {
		return fmt.Errorf("failed to set image url: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *WishlistRepository) Reserve(itemID, userID uuid.UUID) (*wishlist.Reservation, error) {
	reservation := &wishlist.Reservation{
		WishlistItemID: itemID,
		ReservedBy:     userID,
	}
	if err := r.db.Create(reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, storage.ErrDuplicate
		}
		r.log.Error("failed to reserve wishlist item", "item_id", itemID, "error", err)
		return nil, fmt.Errorf("failed to reserve wishlist item: %w", err)
	}
	return reservation, nil
}

func (r *WishlistRepository) Unreserve(itemID, userID uuid.UUID) error {
	result := r.db.
		Where("wishlist_item_id = ? AND reserved_by = ?", itemID, userID).
		Delete(&wishlist.Reservation{})
	if result.Error != nil {
		return fmt.Errorf("failed to unreserve wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *WishlistRepository) GetReservation(itemID uuid.UUID) (*wishlist.Reservation, error) {
	var reservation wishlist.Reservation
	if err := r.db.First(&reservation, "wishlist_item_id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *WishlistRepository) ListReservationsByUser(userID uuid.UUID) ([]*wishlist.Reservation, error) {
	var reservations []*wishlist.Reservation
	err := r.db.
		Where("reserved_by = ?", userID).
		Order("created_at DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}
