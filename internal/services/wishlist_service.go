package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/domain/wishlist"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/notifications"
	"github.com/gravadigital/santa-api/internal/storage"
	"github.com/gravadigital/santa-api/internal/storage/objectstore"
	"github.com/gravadigital/santa-api/internal/validation"
)

// WishlistService manages wishlist items and gift reservations
type WishlistService struct {
	wishlists    storage.WishlistRepository
	users        storage.UserRepository
	points       PointsAwarder
	notifier     notifications.Notifier
	images       objectstore.ImageStore
	maxImageSize int64
	validator    validation.WishlistValidation
	log          *log.Logger
}

// NewWishlistService creates the wishlist service. images may be nil
// when no object storage is configured; uploads then fail with
// ErrImageStoreDisabled.
func NewWishlistService(
	wishlists storage.WishlistRepository,
	users storage.UserRepository,
	points PointsAwarder,
	notifier notifications.Notifier,
	images objectstore.ImageStore,
	maxImageSize int64,
) *WishlistService {
	return &WishlistService{
		wishlists:    wishlists,
		users:        users,
		points:       points,
		notifier:     notifier,
		images:       images,
		maxImageSize: maxImageSize,
		log:          logger.Service("wishlist"),
	}
}

// ItemInput carries the fields of a new wishlist item
type ItemInput struct {
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Privacy     wishlist.Privacy `json:"privacy"`
}

// ItemView is an item as seen by a viewer. Reserved is always false for
// the owner: who claimed what stays a surprise.
type ItemView struct {
	Item         *wishlist.Item `json:"item"`
	Reserved     bool           `json:"reserved"`
	ReservedByMe bool           `json:"reserved_by_me"`
}

// ReservationView is a reservation hydrated with its item
type ReservationView struct {
	Reservation *wishlist.Reservation `json:"reservation"`
	Item        *wishlist.Item        `json:"item"`
}

// AddItem creates a wishlist item for the caller
func (s *WishlistService) AddItem(ctx context.Context, userID uuid.UUID, in ItemInput) (*wishlist.Item, error) {
	if err := s.validator.ValidateTitle(in.Title); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	item := &wishlist.Item{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Privacy:     in.Privacy,
		CreatedAt:   time.Now(),
	}
	if err := s.wishlists.CreateItem(item); err != nil {
		return nil, err
	}
	s.log.Info("wishlist item created", "item_id", item.ID, "user_id", userID)
	return item, nil
}

// MyItems lists the caller's own items, newest first
func (s *WishlistService) MyItems(userID uuid.UUID) ([]*wishlist.Item, error) {
	return s.wishlists.ListByUser(userID)
}

// ViewWishlist returns another user's wishlist as the viewer is allowed
// to see it: public items always, friends-only items when the viewer is
// a friend of the owner. Reservation flags are included so the viewer
// does not double-gift.
func (s *WishlistService) ViewWishlist(ownerID, viewerID uuid.UUID) ([]*ItemView, error) {
	items, err := s.wishlists.ListByUser(ownerID)
	if err != nil {
		return nil, err
	}

	isOwner := ownerID == viewerID
	isFriend := false
	if !isOwner {
		friends, err := s.users.ListFriends(ownerID)
		if err != nil {
			return nil, err
		}
		for _, f := range friends {
			if f.ID == viewerID {
				isFriend = true
				break
			}
		}
	}

	views := make([]*ItemView, 0, len(items))
	for _, item := range items {
		if !isOwner && item.Privacy == wishlist.PrivacyFriends && !isFriend {
			continue
		}

		view := &ItemView{Item: item}
		if !isOwner {
			reservation, err := s.wishlists.GetReservation(item.ID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			if reservation != nil {
				view.Reserved = true
				view.ReservedByMe = reservation.ReservedBy == viewerID
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// RemoveItem deletes the caller's own item and any reservation on it
func (s *WishlistService) RemoveItem(userID, itemID uuid.UUID) error {
	if err := s.wishlists.DeleteItem(itemID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

// SetPrivacy changes who can see the caller's own item
func (s *WishlistService) SetPrivacy(userID, itemID uuid.UUID, privacy wishlist.Privacy) error {
	if err := s.wishlists.UpdatePrivacy(itemID, userID, privacy); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

// Reserve claims an item the caller intends to gift. One reservation
// per item; the owner is notified without learning who claimed it in
// the app itself.
func (s *WishlistService) Reserve(ctx context.Context, viewerID, itemID uuid.UUID) (*wishlist.Reservation, error) {
	item, err := s.wishlists.GetItem(itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.UserID == viewerID {
		return nil, ErrNotAuthorized
	}

	reservation, err := s.wishlists.Reserve(itemID, viewerID)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrItemAlreadyReserved
		}
		return nil, err
	}

	s.log.Info("wishlist item reserved", "item_id", itemID, "reserved_by", viewerID)
	s.afterReserve(ctx, item, viewerID)
	return reservation, nil
}

// afterReserve runs the post-commit side effects of a reservation
func (s *WishlistService) afterReserve(ctx context.Context, item *wishlist.Item, viewerID uuid.UUID) {
	if s.points != nil {
		if _, err := s.points.AwardPoints(ctx, viewerID, PointsGiftReserved); err != nil {
			s.log.Warn("failed to award reservation points", "user_id", viewerID, "error", err)
		}
	}
	if s.notifier != nil {
		reserver, err := s.users.GetByID(viewerID)
		name := "someone"
		if err == nil {
			name = reserver.Name
		}
		s.notifier.GiftReserved(ctx, item.UserID, item.Title, name)
	}
}

// Unreserve releases the caller's own reservation
func (s *WishlistService) Unreserve(viewerID, itemID uuid.UUID) error {
	if err := s.wishlists.Unreserve(itemID, viewerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	return nil
}

// MyReservations lists what the caller has claimed, with the items
func (s *WishlistService) MyReservations(viewerID uuid.UUID) ([]*ReservationView, error) {
	reservations, err := s.wishlists.ListReservationsByUser(viewerID)
	if err != nil {
		return nil, err
	}

	views := make([]*ReservationView, 0, len(reservations))
	for _, r := range reservations {
		view := &ReservationView{Reservation: r}
		item, err := s.wishlists.GetItem(r.WishlistItemID)
		if err == nil {
			view.Item = item
		}
		views = append(views, view)
	}
	return views, nil
}

// UploadItemImage stores an image for the caller's own item and
// attaches its URL.
func (s *WishlistService) UploadItemImage(ctx context.Context, userID, itemID uuid.UUID, filename, contentType string, data []byte) (string, error) {
	if s.images == nil {
		return "", ErrImageStoreDisabled
	}
	if int64(len(data)) > s.maxImageSize {
		return "", ErrImageTooLarge
	}

	item, err := s.wishlists.GetItem(itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrItemNotFound
		}
		return "", err
	}
	if item.UserID != userID {
		return "", ErrNotAuthorized
	}

	key := fmt.Sprintf("wishlist/%s/%d_%s", userID, time.Now().UnixMilli(), filename)
	url, err := s.images.Put(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}

	if err := s.wishlists.SetImageURL(itemID, userID, url); err != nil {
		return "", err
	}
	return url, nil
}
