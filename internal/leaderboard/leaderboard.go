// Package leaderboard mirrors profile XP into a Redis sorted set for cheap
// global ranking reads.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const globalKey = "leaderboard:xp:global"

// Entry is one ranked row.
type Entry struct {
	Rank   int64
	UserID string
	XP     int
}

// Board wraps the Redis sorted set holding per-user XP.
type Board struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Board, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Board{client: client}, nil
}

// Close releases the underlying connection pool.
func (b *Board) Close() error {
	return b.client.Close()
}

// SetXP stores the user's absolute XP total. Writes are idempotent, so
// replays after redelivery converge on the same score.
func (b *Board) SetXP(ctx context.Context, userID string, xp int) error {
	return b.client.ZAdd(ctx, globalKey, redis.Z{Score: float64(xp), Member: userID}).Err()
}

// TopN returns the highest-XP users, best first.
func (b *Board) TopN(ctx context.Context, n int64) ([]Entry, error) {
	zs, err := b.client.ZRevRangeWithScores(ctx, globalKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		entries = append(entries, Entry{
			Rank:   int64(i + 1),
			UserID: z.Member.(string),
			XP:     int(z.Score),
		})
	}
	return entries, nil
}

// Rank returns the user's 1-based position, or (0, nil) when the user has no
// score yet.
func (b *Board) Rank(ctx context.Context, userID string) (Entry, error) {
	pipe := b.client.Pipeline()
	rankCmd := pipe.ZRevRank(ctx, globalKey, userID)
	scoreCmd := pipe.ZScore(ctx, globalKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{UserID: userID}, nil
		}
		return Entry{}, err
	}
	return Entry{
		Rank:   rankCmd.Val() + 1,
		UserID: userID,
		XP:     int(scoreCmd.Val()),
	}, nil
}
