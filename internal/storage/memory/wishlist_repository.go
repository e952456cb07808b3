package memory

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/domain/wishlist"
	"github.com/gravadigital/santa-api/internal/storage"
)

// WishlistRepository is the in-memory storage.WishlistRepository
type WishlistRepository struct {
	store *Store
}

// NewWishlistRepository creates a wishlist repository over the store
func NewWishlistRepository(store *Store) *WishlistRepository {
	return &WishlistRepository{store: store}
}

func (r *WishlistRepository) CreateItem(item *wishlist.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	copied := *item
	r.store.items[item.ID] = &copied
	return nil
}

func (r *WishlistRepository) GetItem(id uuid.UUID) (*wishlist.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, exists := r.store.items[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *WishlistRepository) ListByUser(userID uuid.UUID) ([]*wishlist.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var items []*wishlist.Item
	for _, item := range r.store.items {
		if item.UserID == userID {
			copied := *item
			items = append(items, &copied)
		}
	}
	slices.SortFunc(items, func(a, b *wishlist.Item) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items, nil
}

func (r *WishlistRepository) DeleteItem(id, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, exists := r.store.items[id]
	if !exists || item.UserID != userID {
		return storage.ErrNotFound
	}
	delete(r.store.items, id)
	delete(r.store.reservations, id)
	return nil
}

func (r *WishlistRepository) UpdatePrivacy(id, userID uuid.UUID, privacy wishlist.Privacy) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, exists := r.store.items[id]
	if !exists || item.UserID != userID {
		return storage.ErrNotFound
	}
	item.Privacy = privacy
	return nil
}

func (r *WishlistRepository) SetImageURL(id, userID uuid.UUID, url string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, exists := r.store.items[id]
	if !exists || item.UserID != userID {
		return storage.ErrNotFound
	}
	item.ImageURL = &url
	return nil
}

func (r *WishlistRepository) Reserve(itemID, userID uuid.UUID) (*wishlist.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, claimed := r.store.reservations[itemID]; claimed {
		return nil, storage.ErrDuplicate
	}
	reservation := &wishlist.Reservation{
		ID:             uuid.New(),
		WishlistItemID: itemID,
		ReservedBy:     userID,
		CreatedAt:      time.Now(),
	}
	r.store.reservations[itemID] = reservation
	copied := *reservation
	return &copied, nil
}

func (r *WishlistRepository) Unreserve(itemID, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reservation, exists := r.store.reservations[itemID]
	if !exists || reservation.ReservedBy != userID {
		return storage.ErrNotFound
	}
	delete(r.store.reservations, itemID)
	return nil
}

func (r *WishlistRepository) GetReservation(itemID uuid.UUID) (*wishlist.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reservation, exists := r.store.reservations[itemID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (r *WishlistRepository) ListReservationsByUser(userID uuid.UUID) ([]*wishlist.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var reservations []*wishlist.Reservation
	for _, reservation := range r.store.reservations {
		if reservation.ReservedBy == userID {
			copied := *reservation
			reservations = append(reservations, &copied)
		}
	}
	slices.SortFunc(reservations, func(a, b *wishlist.Reservation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return reservations, nil
}
