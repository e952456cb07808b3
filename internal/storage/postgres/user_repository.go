package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/santa-api/internal/domain/user"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/storage"
)

// UserRepository implements storage.UserRepository using GORM
type UserRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db:  db,
		log: logger.Repository("user"),
	}
}

func (r *UserRepository) Create(u *user.User) error {
	r.log.Debug("creating user", "name", u.Name, "telegram_id", u.TelegramID)

	if err := r.db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return storage.ErrDuplicate
		}
		r.log.Error("failed to create user", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id uuid.UUID) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByReferralCode(code string) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, "referral_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by referral code: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) AddPoints(id uuid.UUID, delta int) (int, error) {
	var total int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&user.User{}).
			Where("id = ?", id).
			Update("points", gorm.Expr("points + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return tx.Model(&user.User{}).
			Where("id = ?", id).
			Pluck("points", &total).Error
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to add points: %w", err)
	}
	return total, nil
}

func (r *UserRepository) SetReferralCode(id uuid.UUID, code string) error {
	result := r.db.Model(&user.User{}).
		Where("id = ?", id).
		Update("referral_code", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to set referral code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GrantAchievement(id uuid.UUID, code string) error {
	// array_append inside a guarded update keeps the grant idempotent
	result := r.db.Model(&user.User{}).
		Where("id = ? AND NOT (? = ANY(COALESCE(achievements, '{}')))", id, code).
		Update("achievements", gorm.Expr("array_append(COALESCE(achievements, '{}'), ?)", code))
	if result.Error != nil {
		return fmt.Errorf("failed to grant achievement: %w", result.Error)
	}
	return nil
}

func (r *UserRepository) CountReferrals(id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&user.User{}).Where("referred_by = ?", id).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

func (r *UserRepository) Leaderboard(limit int) ([]*user.User, error) {
	var users []*user.User
	err := r.db.
		Order("points DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return users, nil
}

func (r *UserRepository) AddFriendship(userID, friendID uuid.UUID) error {
	if userID == friendID {
		return nil
	}

	// Ambas direcciones en un insert; repetir la arista es no-op
	edges := []*user.Friendship{
		{UserID: userID, FriendID: friendID},
		{UserID: friendID, FriendID: userID},
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
	if err != nil {
		return fmt.Errorf("failed to add friendship: %w", err)
	}
	return nil
}

func (r *UserRepository) ListFriends(userID uuid.UUID) ([]*user.User, error) {
	var friends []*user.User
	err := r.db.
		Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Find(&friends).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}
