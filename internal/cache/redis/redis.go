// Package redis caches the points leaderboard in a sorted set so the
// ranking endpoint does not hit Postgres on every request. The cache is
// optional; when no Redis address is configured the services read the
// ranking straight from the database.
package redis

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gravadigital/santa-api/internal/logger"
)

const leaderboardKey = "santa:leaderboard"

// Open connects to Redis and verifies the connection with a ping
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Entry is one ranked row of the cached leaderboard
type Entry struct {
	UserID uuid.UUID
	Points int
}

// LeaderboardCache maintains user scores in a Redis sorted set
type LeaderboardCache struct {
	client *redis.Client
	log    *log.Logger
}

// NewLeaderboardCache wraps an open Redis client
func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		log:    logger.Cache(),
	}
}

// SetScore writes a user's current point total
func (c *LeaderboardCache) SetScore(ctx context.Context, userID uuid.UUID, points int) error {
	err := c.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(points),
		Member: userID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to update leaderboard score: %w", err)
	}
	return nil
}

// Top returns up to limit entries ordered by points descending. An
// empty result means the cache is cold, not that nobody has points.
func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(member)
		if err != nil {
			c.log.Warn("skipping malformed leaderboard member", "member", member)
			continue
		}
		entries = append(entries, Entry{UserID: id, Points: int(row.Score)})
	}
	return entries, nil
}

// Rebuild replaces the whole sorted set with the given scores
func (c *LeaderboardCache) Rebuild(ctx context.Context, scores map[uuid.UUID]int) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	for id, points := range scores {
		pipe.ZAdd(ctx, leaderboardKey, redis.Z{
			Score:  float64(points),
			Member: id.String(),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	c.log.Debug("leaderboard rebuilt", "entries", len(scores))
	return nil
}
