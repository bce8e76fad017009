//go:build integration

package leaderboard

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestBoardRanksUsersByXP(t *testing.T) {
	ctx := context.Background()
	board, cleanup := setupRedis(t, ctx)
	defer cleanup()

	require.NoError(t, board.SetXP(ctx, "user-1", 150))
	require.NoError(t, board.SetXP(ctx, "user-2", 320))
	require.NoError(t, board.SetXP(ctx, "user-3", 90))

	top, err := board.TopN(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, Entry{Rank: 1, UserID: "user-2", XP: 320}, top[0])
	require.Equal(t, Entry{Rank: 2, UserID: "user-1", XP: 150}, top[1])

	entry, err := board.Rank(ctx, "user-3")
	require.NoError(t, err)
	require.Equal(t, Entry{Rank: 3, UserID: "user-3", XP: 90}, entry)
}

func TestBoardSetXPIsIdempotentAndAbsolute(t *testing.T) {
	ctx := context.Background()
	board, cleanup := setupRedis(t, ctx)
	defer cleanup()

	// Replays converge on the same score instead of accumulating.
	require.NoError(t, board.SetXP(ctx, "user-1", 100))
	require.NoError(t, board.SetXP(ctx, "user-1", 100))
	require.NoError(t, board.SetXP(ctx, "user-1", 130))

	entry, err := board.Rank(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 130, entry.XP)
	require.Equal(t, int64(1), entry.Rank)
}

func TestBoardRankUnknownUser(t *testing.T) {
	ctx := context.Background()
	board, cleanup := setupRedis(t, ctx)
	defer cleanup()

	entry, err := board.Rank(ctx, "nobody")
	require.NoError(t, err)
	require.Equal(t, int64(0), entry.Rank)
	require.Equal(t, "nobody", entry.UserID)
}

func setupRedis(t *testing.T, ctx context.Context) (*Board, func()) {
	t.Helper()

	container, err := rediscontainer.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	addr := strings.TrimPrefix(uri, "redis://")

	board, err := New(ctx, addr, "", 0)
	require.NoError(t, err)

	cleanup := func() {
		board.Close()
		_ = container.Terminate(ctx)
	}
	return board, cleanup
}
