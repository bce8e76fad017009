//go:build integration
// +build integration

package profile

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/gamification/internal/domain"
	"example.com/gamification/internal/persistence/postgres"
)

func TestTrackerAppliesActivity(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	require.NoError(t, postgres.SeedDefaultQuests(ctx, pool))
	tracker := NewTracker(pool)

	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	snap, err := tracker.ApplyActivity(ctx, "user-1", "entry-1", domain.ActivityWorkoutCompletion, now)
	require.NoError(t, err)

	// 10 base XP plus the daily workout quest reward.
	require.Equal(t, 1, snap.TotalWorkouts)
	require.Equal(t, 1, snap.CurrentStreak)
	require.Greater(t, snap.XP, 10)

	// Same day again: streak unchanged, workouts bumped.
	snap, err = tracker.ApplyActivity(ctx, "user-1", "entry-2", domain.ActivityWorkoutCompletion, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, snap.TotalWorkouts)
	require.Equal(t, 1, snap.CurrentStreak)

	// Next day extends the streak.
	snap, err = tracker.ApplyActivity(ctx, "user-1", "entry-3", domain.ActivityWorkoutCompletion, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, snap.CurrentStreak)
	require.Equal(t, 2, snap.LongestStreak)
}

func TestTrackerReplayedEntryDoesNotDoubleCredit(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	require.NoError(t, postgres.SeedDefaultQuests(ctx, pool))
	tracker := NewTracker(pool)

	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	first, err := tracker.ApplyActivity(ctx, "user-3", "entry-1", domain.ActivityWorkoutCompletion, now)
	require.NoError(t, err)

	// Redelivery of the same entry: no XP, workouts, or quest progress.
	replay, err := tracker.ApplyActivity(ctx, "user-3", "entry-1", domain.ActivityWorkoutCompletion, now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, first.XP, replay.XP)
	require.Equal(t, first.TotalWorkouts, replay.TotalWorkouts)
	require.Equal(t, first.CurrentStreak, replay.CurrentStreak)

	// The same entry under a different activity still credits; the PR bonus
	// for an entry is one of these.
	bonus, err := tracker.ApplyActivity(ctx, "user-3", "entry-1", domain.ActivityStrengthPR, now.Add(time.Minute))
	require.NoError(t, err)
	require.Greater(t, bonus.XP, first.XP)
}

func TestTrackerQuestCompletesOncePerDay(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	require.NoError(t, postgres.SeedDefaultQuests(ctx, pool))
	tracker := NewTracker(pool)

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	first, err := tracker.ApplyActivity(ctx, "user-2", "entry-1", domain.ActivityWorkoutCompletion, now)
	require.NoError(t, err)
	second, err := tracker.ApplyActivity(ctx, "user-2", "entry-2", domain.ActivityWorkoutCompletion, now.Add(time.Minute))
	require.NoError(t, err)

	// The quest reward lands once, so the second delta is only base XP.
	require.Greater(t, first.XP, second.XP-first.XP)

	var completed int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_daily_quests WHERE user_id='user-2' AND completed`,
	).Scan(&completed))
	require.Equal(t, 1, completed)
}

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fitness"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pg.Terminate(ctx)
	}
	return pool, cleanup
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	migrationsPath := resolvePath(t, "../../db/migrations")
	files, err := filepath.Glob(filepath.Join(migrationsPath, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, file := range files {
		content, readErr := os.ReadFile(file)
		require.NoErrorf(t, readErr, "read migration %s", file)
		_, execErr := pool.Exec(ctx, string(content))
		require.NoErrorf(t, execErr, "execute migration %s", file)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}
