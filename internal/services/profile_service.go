package services

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	rediscache "github.com/gravadigital/santa-api/internal/cache/redis"
	"github.com/gravadigital/santa-api/internal/domain/user"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/storage"
)

// ProfileService manages accounts, points, referrals and the ranking
type ProfileService struct {
	users storage.UserRepository
	cache *rediscache.LeaderboardCache
	log   *log.Logger
}

// NewProfileService creates the profile service. cache may be nil; the
// ranking then reads straight from the database.
func NewProfileService(users storage.UserRepository, cache *rediscache.LeaderboardCache) *ProfileService {
	return &ProfileService{
		users: users,
		cache: cache,
		log:   logger.Service("profile"),
	}
}

// RegisterInput carries the account sync payload. The identity itself
// (user ID, Telegram ID) comes from the external auth layer; this
// service only materializes the profile row.
type RegisterInput struct {
	TelegramID   *int64  `json:"telegram_id"`
	Name         string  `json:"name"`
	ReferralCode *string `json:"referral_code"`
}

// Profile is an account with its derived gamification fields
type Profile struct {
	User      *user.User `json:"user"`
	Level     string     `json:"level"`
	Referrals int64      `json:"referrals"`
}

// LeaderboardRow is one entry of the points ranking
type LeaderboardRow struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
	Level  string    `json:"level"`
}

// EnsureAccount returns the profile row for the authenticated user,
// creating it on first contact. A referral code on first registration
// links the referrer and awards them points.
func (s *ProfileService) EnsureAccount(ctx context.Context, userID uuid.UUID, in RegisterInput) (*user.User, error) {
	existing, err := s.users.GetByID(userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	u := &user.User{
		ID:         userID,
		TelegramID: in.TelegramID,
		Name:       in.Name,
	}

	if in.ReferralCode != nil && *in.ReferralCode != "" {
		referrer, err := s.users.GetByReferralCode(*in.ReferralCode)
		if err == nil && referrer.ID != userID {
			u.ReferredBy = &referrer.ID
		}
	}

	if err := s.users.Create(u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// a concurrent first request created the row
			return s.users.GetByID(userID)
		}
		return nil, err
	}

	if u.ReferredBy != nil {
		if _, err := s.AwardPoints(ctx, *u.ReferredBy, PointsReferral); err != nil {
			s.log.Warn("failed to award referral points", "referrer_id", *u.ReferredBy, "error", err)
		}
	}

	s.log.Info("account created", "user_id", userID, "referred", u.ReferredBy != nil)
	return u, nil
}

// GetProfile returns the user with level and referral count
func (s *ProfileService) GetProfile(userID uuid.UUID) (*Profile, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	referrals, err := s.users.CountReferrals(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: u, Level: u.Level(), Referrals: referrals}, nil
}

// AwardPoints credits points and keeps the cached ranking in sync
func (s *ProfileService) AwardPoints(ctx context.Context, userID uuid.UUID, delta int) (int, error) {
	total, err := s.users.AddPoints(userID, delta)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetScore(ctx, userID, total); err != nil {
			s.log.Warn("failed to update cached leaderboard", "user_id", userID, "error", err)
		}
	}
	return total, nil
}

// Leaderboard returns the top users by points. The cached sorted set
// serves reads when warm; cold or failing caches fall back to the
// database and rebuild.
func (s *ProfileService) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardRow, error) {
	if s.cache != nil {
		entries, err := s.cache.Top(ctx, limit)
		if err != nil {
			s.log.Warn("leaderboard cache read failed", "error", err)
		} else if len(entries) > 0 {
			rows := make([]*LeaderboardRow, 0, len(entries))
			for _, e := range entries {
				u, err := s.users.GetByID(e.UserID)
				if err != nil {
					continue
				}
				rows = append(rows, &LeaderboardRow{
					UserID: u.ID,
					Name:   u.Name,
					Points: e.Points,
					Level:  u.Level(),
				})
			}
			return rows, nil
		}
	}

	users, err := s.users.Leaderboard(limit)
	if err != nil {
		return nil, err
	}

	rows := make([]*LeaderboardRow, len(users))
	scores := make(map[uuid.UUID]int, len(users))
	for i, u := range users {
		rows[i] = &LeaderboardRow{
			UserID: u.ID,
			Name:   u.Name,
			Points: u.Points,
			Level:  u.Level(),
		}
		scores[u.ID] = u.Points
	}

	if s.cache != nil && len(scores) > 0 {
		if err := s.cache.Rebuild(ctx, scores); err != nil {
			s.log.Warn("leaderboard cache rebuild failed", "error", err)
		}
	}
	return rows, nil
}

// EnsureReferralCode returns the user's referral code, generating one
// on first request.
func (s *ProfileService) EnsureReferralCode(userID uuid.UUID) (string, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if u.ReferralCode != nil {
		return *u.ReferralCode, nil
	}

	// retry on the astronomically unlikely collision
	for attempt := 0; attempt < 3; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		err = s.users.SetReferralCode(userID, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return "", err
		}
	}
	return "", storage.ErrDuplicate
}

// ListFriends returns the user's friend list
func (s *ProfileService) ListFriends(userID uuid.UUID) ([]*user.User, error) {
	return s.users.ListFriends(userID)
}

// generateReferralCode returns a code like SANTA-1A2B3C4D
func generateReferralCode() (string, error) {
	var buf [4]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return "", err
	}
	return "SANTA-" + strings.ToUpper(hex.EncodeToString(buf[:])), nil
}
