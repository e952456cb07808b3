package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Points thresholds for profile levels
const (
	LevelNovice = "Novice"
	LevelActive = "Active"

	ActiveThreshold = 500
)

// User is an account backed by the external Telegram auth layer. This
// service never creates sessions; it trusts the identity the request
// layer injects and keeps the profile/gamification state here.
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TelegramID   *int64         `json:"telegram_id" gorm:"uniqueIndex"`
	Name         string         `json:"name" gorm:"not null"`
	Points       int            `json:"points" gorm:"not null;default:0"`
	Achievements pq.StringArray `json:"achievements" gorm:"type:text[]"`
	ReferralCode *string        `json:"referral_code" gorm:"uniqueIndex;size:32"`
	ReferredBy   *uuid.UUID     `json:"referred_by" gorm:"type:uuid"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (User) TableName() string {
	return "users"
}

// BeforeCreate sets a UUID before creating the record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Level derives the profile level from accumulated points
func (u *User) Level() string {
	if u.Points >= ActiveThreshold {
		return LevelActive
	}
	return LevelNovice
}

// HasAchievement reports whether the achievement code was already granted
func (u *User) HasAchievement(code string) bool {
	for _, a := range u.Achievements {
		if a == code {
			return true
		}
	}
	return false
}

// GrantAchievement appends an achievement code once
func (u *User) GrantAchievement(code string) {
	if !u.HasAchievement(code) {
		u.Achievements = append(u.Achievements, code)
	}
}

// Friendship is one direction of a mutual friend edge. Rows are written
// in pairs (a→b and b→a) when a user joins an event through someone's
// invite link.
type Friendship struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_friend"`
	FriendID  uuid.UUID `json:"friend_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_friend"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Friendship) TableName() string {
	return "friendships"
}

// BeforeCreate sets a UUID before creating the record
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
