// Package profile maintains the per-user gamification aggregate that badge
// evaluation reads: XP, level, streaks, counters, and daily quest progress.
package profile

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gamification/internal/domain"
)

// Tracker applies XP-earning activities to gamification profiles. Each call
// runs in its own transaction, separate from award processing, which only
// ever reads the profile.
type Tracker struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewTracker constructs a Tracker.
func NewTracker(pool *pgxpool.Pool) *Tracker {
	return &Tracker{
		pool:   pool,
		logger: log.New(log.Writer(), "[profile] ", log.LstdFlags),
	}
}

// ApplyActivity records one activity: accrues XP scaled by the streak
// multiplier, advances the streak, bumps the workout counter, and progresses
// today's matching quests. Returns the updated snapshot.
//
// The (entryID, activity) pair is recorded in the same transaction, so a
// redelivered entry leaves the profile untouched and gets the current
// snapshot back.
func (t *Tracker) ApplyActivity(ctx context.Context, userID, entryID string, activity domain.ActivityType, at time.Time) (domain.ProfileSnapshot, error) {
	var snap domain.ProfileSnapshot

	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return snap, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`INSERT INTO processed_activities (entry_id, activity_type) VALUES ($1, $2)
         ON CONFLICT (entry_id, activity_type) DO NOTHING`,
		entryID, string(activity),
	)
	if err != nil {
		return snap, err
	}
	if tag.RowsAffected() == 0 {
		snap, err = t.currentSnapshot(ctx, tx, userID)
		if err != nil {
			return snap, err
		}
		err = tx.Commit(ctx)
		return snap, err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO gamification_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return snap, err
	}

	var lastActivity *time.Time
	err = tx.QueryRow(ctx,
		`SELECT xp, level, current_streak, longest_streak, total_workouts, total_challenges, weight_loss_kg, last_activity_date
         FROM gamification_profiles WHERE user_id=$1 FOR UPDATE`,
		userID,
	).Scan(&snap.XP, &snap.Level, &snap.CurrentStreak, &snap.LongestStreak,
		&snap.TotalWorkouts, &snap.TotalChallenges, &snap.WeightLossKg, &lastActivity)
	if err != nil {
		return snap, err
	}
	snap.UserID = userID
	if lastActivity != nil {
		snap.LastActivityDate = *lastActivity
	}

	// The multiplier uses the streak as it stood before this activity, same
	// as awarding XP before the streak ticks over.
	gained := int(float64(domain.XPForActivity(activity)) * domain.StreakMultiplier(snap.CurrentStreak))
	snap.XP += gained

	snap.CurrentStreak, snap.LastActivityDate = domain.AdvanceStreak(snap.CurrentStreak, snap.LastActivityDate, at)
	if snap.CurrentStreak > snap.LongestStreak {
		snap.LongestStreak = snap.CurrentStreak
	}
	if domain.CountsAsWorkout(activity) {
		snap.TotalWorkouts++
	}

	questXP, err := t.progressQuests(ctx, tx, userID, activity, at)
	if err != nil {
		return snap, err
	}
	snap.XP += questXP
	snap.Level = domain.LevelForXP(snap.XP)

	if _, err = tx.Exec(ctx,
		`UPDATE gamification_profiles
         SET xp=$2, level=$3, current_streak=$4, longest_streak=$5, total_workouts=$6, last_activity_date=$7, updated_at=NOW()
         WHERE user_id=$1`,
		userID, snap.XP, snap.Level, snap.CurrentStreak, snap.LongestStreak, snap.TotalWorkouts, snap.LastActivityDate,
	); err != nil {
		return snap, err
	}

	err = tx.Commit(ctx)
	return snap, err
}

// currentSnapshot reads the profile without mutating it, for replayed entries.
func (t *Tracker) currentSnapshot(ctx context.Context, tx pgx.Tx, userID string) (domain.ProfileSnapshot, error) {
	snap := domain.ProfileSnapshot{UserID: userID, Level: 1}

	var lastActivity *time.Time
	err := tx.QueryRow(ctx,
		`SELECT xp, level, current_streak, longest_streak, total_workouts, total_challenges, weight_loss_kg, last_activity_date
         FROM gamification_profiles WHERE user_id=$1`,
		userID,
	).Scan(&snap.XP, &snap.Level, &snap.CurrentStreak, &snap.LongestStreak,
		&snap.TotalWorkouts, &snap.TotalChallenges, &snap.WeightLossKg, &lastActivity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProfileSnapshot{UserID: userID, Level: 1}, nil
		}
		return snap, err
	}
	if lastActivity != nil {
		snap.LastActivityDate = *lastActivity
	}
	return snap, nil
}

// progressQuests materialises today's quest rows for the user, advances the
// ones matching the activity, and returns the XP rewarded by completions.
func (t *Tracker) progressQuests(ctx context.Context, tx pgx.Tx, userID string, activity domain.ActivityType, at time.Time) (int, error) {
	day := at.UTC().Truncate(24 * time.Hour)

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_daily_quests (user_id, quest_id, quest_date, target)
         SELECT $1, q.quest_id, $2, q.target FROM daily_quests q WHERE q.active
         ON CONFLICT (user_id, quest_id, quest_date) DO NOTHING`,
		userID, day,
	); err != nil {
		return 0, err
	}

	rows, err := tx.Query(ctx,
		`SELECT uq.quest_id, uq.progress, uq.target, q.xp_reward
         FROM user_daily_quests uq
         JOIN daily_quests q ON q.quest_id = uq.quest_id
         WHERE uq.user_id=$1 AND uq.quest_date=$2 AND NOT uq.completed AND q.quest_type=$3
         FOR UPDATE OF uq`,
		userID, day, string(activity),
	)
	if err != nil {
		return 0, err
	}

	type questRow struct {
		ID       string
		Progress int
		Target   int
		XPReward int
	}
	var quests []questRow
	for rows.Next() {
		var q questRow
		if err := rows.Scan(&q.ID, &q.Progress, &q.Target, &q.XPReward); err != nil {
			rows.Close()
			return 0, err
		}
		quests = append(quests, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	rewarded := 0
	for _, q := range quests {
		q.Progress++
		completed := q.Progress >= q.Target
		if _, err := tx.Exec(ctx,
			`UPDATE user_daily_quests
             SET progress=$4, completed=$5, completed_at=CASE WHEN $5 THEN NOW() ELSE NULL END
             WHERE user_id=$1 AND quest_id=$2 AND quest_date=$3`,
			userID, q.ID, day, q.Progress, completed,
		); err != nil {
			return 0, err
		}
		if completed {
			rewarded += q.XPReward
			t.logger.Printf("quest completed (user=%s, quest=%s, reward=%d)", userID, q.ID, q.XPReward)
		}
	}
	return rewarded, nil
}
