package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/santa-api/internal/domain/user"
	"github.com/gravadigital/santa-api/internal/domain/wishlist"
	"github.com/gravadigital/santa-api/internal/notifications"
	"github.com/gravadigital/santa-api/internal/storage"
	"github.com/gravadigital/santa-api/internal/storage/memory"
)

// fakeImageStore records uploads and returns a predictable URL
type fakeImageStore struct {
	keys []string
}

func (f *fakeImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.keys = append(f.keys, key)
	return "https://images.test/" + key, nil
}

type wishlistFixture struct {
	service   *WishlistService
	wishlists *memory.WishlistRepository
	users     *memory.UserRepository
	images    *fakeImageStore
}

func newWishlistFixture(t *testing.T) *wishlistFixture {
	t.Helper()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	wishlists := memory.NewWishlistRepository(store)
	images := &fakeImageStore{}

	profile := NewProfileService(users, nil)
	service := NewWishlistService(wishlists, users, profile, notifications.NewLogNotifier(), images, 1024)

	return &wishlistFixture{service: service, wishlists: wishlists, users: users, images: images}
}

func (f *wishlistFixture) newUser(t *testing.T, name string) *user.User {
	t.Helper()
	u := &user.User{ID: uuid.New(), Name: name}
	require.NoError(t, f.users.Create(u))
	return u
}

func TestAddItemValidation(t *testing.T) {
	f := newWishlistFixture(t)
	owner := f.newUser(t, "Ana")

	_, err := f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	item, err := f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "Libro de cocina"})
	require.NoError(t, err)
	assert.Equal(t, wishlist.PrivacyAll, item.Privacy)
}

func TestViewWishlistPrivacy(t *testing.T) {
	f := newWishlistFixture(t)
	owner := f.newUser(t, "Ana")
	friend := f.newUser(t, "Bruno")
	stranger := f.newUser(t, "Diego")
	require.NoError(t, f.users.AddFriendship(owner.ID, friend.ID))

	_, err := f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "Publico"})
	require.NoError(t, err)
	_, err = f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "Solo amigos", Privacy: wishlist.PrivacyFriends})
	require.NoError(t, err)

	ownerView, err := f.service.ViewWishlist(owner.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, ownerView, 2)

	friendView, err := f.service.ViewWishlist(owner.ID, friend.ID)
	require.NoError(t, err)
	assert.Len(t, friendView, 2)

	strangerView, err := f.service.ViewWishlist(owner.ID, stranger.ID)
	require.NoError(t, err)
	require.Len(t, strangerView, 1)
	assert.Equal(t, "Publico", strangerView[0].Item.Title)
}

func TestReserveFlow(t *testing.T) {
	f := newWishlistFixture(t)
	owner := f.newUser(t, "Ana")
	buyer := f.newUser(t, "Bruno")
	rival := f.newUser(t, "Diego")

	item, err := f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "Bufanda"})
	require.NoError(t, err)

	// nobody reserves their own wish
	_, err = f.service.Reserve(context.Background(), owner.ID, item.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	reservation, err := f.service.Reserve(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, reservation.ReservedBy)

	// reserving awards points
	u, err := f.users.GetByID(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, PointsGiftReserved, u.Points)

	// one claim per item
	_, err = f.service.Reserve(context.Background(), rival.ID, item.ID)
	assert.ErrorIs(t, err, ErrItemAlreadyReserved)

	// the owner never sees the claim; other viewers do
	ownerView, err := f.service.ViewWishlist(owner.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	assert.False(t, ownerView[0].Reserved)

	buyerView, err := f.service.ViewWishlist(owner.ID, buyer.ID)
	require.NoError(t, err)
	require.Len(t, buyerView, 1)
	assert.True(t, buyerView[0].Reserved)
	assert.True(t, buyerView[0].ReservedByMe)

	rivalView, err := f.service.ViewWishlist(owner.ID, rival.ID)
	require.NoError(t, err)
	require.Len(t, rivalView, 1)
	assert.True(t, rivalView[0].Reserved)
	assert.False(t, rivalView[0].ReservedByMe)
}

func TestUnreserve(t *testing.T) {
	f := newWishlistFixture(t)
	owner := f.newUser(t, "Ana")
	buyer := f.newUser(t, "Bruno")
	rival := f.newUser(t, "Diego")

	item, err := f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "Bufanda"})
	require.NoError(t, err)
	_, err = f.service.Reserve(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)

	// only the claimant can release
	err = f.service.Unreserve(rival.ID, item.ID)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	require.NoError(t, f.service.Unreserve(buyer.ID, item.ID))

	_, err = f.service.Reserve(context.Background(), rival.ID, item.ID)
	require.NoError(t, err)
}

func TestMyReservationsHydratesItems(t *testing.T) {
	f := newWishlistFixture(t)
	owner := f.newUser(t, "Ana")
	buyer := f.newUser(t, "Bruno")

	item, err := f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "Bufanda"})
	require.NoError(t, err)
	_, err = f.service.Reserve(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)

	views, err := f.service.MyReservations(buyer.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Item)
	assert.Equal(t, "Bufanda", views[0].Item.Title)
}

func TestRemoveItemClearsReservation(t *testing.T) {
	f := newWishlistFixture(t)
	owner := f.newUser(t, "Ana")
	buyer := f.newUser(t, "Bruno")

	item, err := f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "Bufanda"})
	require.NoError(t, err)
	_, err = f.service.Reserve(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.RemoveItem(owner.ID, item.ID))

	_, err = f.wishlists.GetReservation(item.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	views, err := f.service.MyReservations(buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestUploadItemImage(t *testing.T) {
	f := newWishlistFixture(t)
	owner := f.newUser(t, "Ana")
	other := f.newUser(t, "Bruno")

	item, err := f.service.AddItem(context.Background(), owner.ID, ItemInput{Title: "Bufanda"})
	require.NoError(t, err)

	_, err = f.service.UploadItemImage(context.Background(), owner.ID, item.ID, "big.jpg", "image/jpeg", make([]byte, 2048))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = f.service.UploadItemImage(context.Background(), other.ID, item.ID, "foto.jpg", "image/jpeg", []byte("x"))
	assert.ErrorIs(t, err, ErrNotAuthorized)

	url, err := f.service.UploadItemImage(context.Background(), owner.ID, item.ID, "foto.jpg", "image/jpeg", []byte("x"))
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	require.Len(t, f.images.keys, 1)

	stored, err := f.wishlists.GetItem(item.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ImageURL)
	assert.Equal(t, url, *stored.ImageURL)
}

func TestUploadWithoutImageStore(t *testing.T) {
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	wishlists := memory.NewWishlistRepository(store)
	service := NewWishlistService(wishlists, users, nil, notifications.NewLogNotifier(), nil, 1024)

	_, err := service.UploadItemImage(context.Background(), uuid.New(), uuid.New(), "foto.jpg", "image/jpeg", []byte("x"))
	assert.ErrorIs(t, err, ErrImageStoreDisabled)
}
