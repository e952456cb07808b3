package memory

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/domain/user"
	"github.com/gravadigital/santa-api/internal/storage"
)

// UserRepository is the in-memory storage.UserRepository
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository over the store
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(u *user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.TelegramID != nil {
		for _, existing := range r.store.users {
			if existing.TelegramID != nil && *existing.TelegramID == *u.TelegramID {
				return storage.ErrDuplicate
			}
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	copied := *u
	r.store.users[u.ID] = &copied
	return nil
}

func (r *UserRepository) GetByID(id uuid.UUID) (*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, exists := r.store.users[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *UserRepository) GetByReferralCode(code string) (*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.ReferralCode != nil && *u.ReferralCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *UserRepository) AddPoints(id uuid.UUID, delta int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, exists := r.store.users[id]
	if !exists {
		return 0, storage.ErrNotFound
	}
	u.Points += delta
	return u.Points, nil
}

func (r *UserRepository) SetReferralCode(id uuid.UUID, code string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, exists := r.store.users[id]
	if !exists {
		return storage.ErrNotFound
	}
	for _, existing := range r.store.users {
		if existing.ID != id && existing.ReferralCode != nil && *existing.ReferralCode == code {
			return storage.ErrDuplicate
		}
	}
	u.ReferralCode = &code
	return nil
}

func (r *UserRepository) GrantAchievement(id uuid.UUID, code string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, exists := r.store.users[id]
	if !exists {
		return storage.ErrNotFound
	}
	u.GrantAchievement(code)
	return nil
}

func (r *UserRepository) CountReferrals(id uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, u := range r.store.users {
		if u.ReferredBy != nil && *u.ReferredBy == id {
			count++
		}
	}
	return count, nil
}

func (r *UserRepository) Leaderboard(limit int) ([]*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := make([]*user.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		copied := *u
		users = append(users, &copied)
	}
	slices.SortFunc(users, func(a, b *user.User) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *UserRepository) AddFriendship(userID, friendID uuid.UUID) error {
	if userID == friendID {
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if !slices.Contains(r.store.friendships[userID], friendID) {
		r.store.friendships[userID] = append(r.store.friendships[userID], friendID)
	}
	if !slices.Contains(r.store.friendships[friendID], userID) {
		r.store.friendships[friendID] = append(r.store.friendships[friendID], userID)
	}
	return nil
}

func (r *UserRepository) ListFriends(userID uuid.UUID) ([]*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var friends []*user.User
	for _, friendID := range r.store.friendships[userID] {
		if u, exists := r.store.users[friendID]; exists {
			copied := *u
			friends = append(friends, &copied)
		}
	}
	return friends, nil
}
