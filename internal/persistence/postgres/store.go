// Package postgres provides pgx-backed persistence for records, badges, and
// the outbox rows the award transaction emits.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gamification/internal/award"
	"example.com/gamification/internal/domain"
	"example.com/gamification/internal/events"
)

// Store implements award.Store on top of a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InTx runs fn inside a single transaction. Record row locks taken by fn are
// held until commit or rollback.
func (s *Store) InTx(ctx context.Context, fn func(award.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = fn(&storeTx{tx: tx}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	return err
}

// IsRetryable reports whether err is a transient conflict worth retrying:
// serialization failure, deadlock, or lock-not-available.
func (s *Store) IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

type storeTx struct {
	tx pgx.Tx
}

// GetOrCreateRecordForUpdate locks the (user, exercise, record type) row,
// inserting a placeholder first so a never-before-seen tuple can still be
// serialized on.
func (t *storeTx) GetOrCreateRecordForUpdate(ctx context.Context, userID, exerciseID string, rt domain.RecordType) (*domain.Record, error) {
	const insert = `INSERT INTO personal_records (user_id, exercise_id, record_type)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, exercise_id, record_type) DO NOTHING`

	if _, err := t.tx.Exec(ctx, insert, userID, exerciseID, string(rt)); err != nil {
		return nil, err
	}

	const query = `SELECT user_id, exercise_id, record_type, best_value, entry_id, session_id, achieved_at
        FROM personal_records
        WHERE user_id=$1 AND exercise_id=$2 AND record_type=$3
        FOR UPDATE`

	row := t.tx.QueryRow(ctx, query, userID, exerciseID, string(rt))

	var rec domain.Record
	var value *float64
	var entryID, sessionID *string
	var achievedAt *time.Time
	if err := row.Scan(&rec.UserID, &rec.ExerciseID, &rec.Type, &value, &entryID, &sessionID, &achievedAt); err != nil {
		return nil, err
	}
	if value != nil {
		rec.Value = *value
	}
	if entryID != nil {
		rec.EntryID = *entryID
	}
	if sessionID != nil {
		rec.SessionID = *sessionID
	}
	if achievedAt != nil {
		rec.AchievedAt = *achievedAt
	}
	return &rec, nil
}

func (t *storeTx) UpdateRecord(ctx context.Context, rec domain.Record) error {
	const stmt = `UPDATE personal_records
        SET best_value=$4, entry_id=$5, session_id=$6, achieved_at=$7, updated_at=NOW()
        WHERE user_id=$1 AND exercise_id=$2 AND record_type=$3`

	tag, err := t.tx.Exec(ctx, stmt,
		rec.UserID, rec.ExerciseID, string(rec.Type),
		rec.Value, rec.EntryID, nullIfEmpty(rec.SessionID), rec.AchievedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("record row missing for %s/%s/%s", rec.UserID, rec.ExerciseID, rec.Type)
	}
	return nil
}

// ProfileSnapshot reads the user's gamification aggregate within the current
// transaction. A user with no profile yet evaluates against zeroed stats.
func (t *storeTx) ProfileSnapshot(ctx context.Context, userID string) (domain.ProfileSnapshot, error) {
	const query = `SELECT xp, level, current_streak, longest_streak, total_workouts, total_challenges, weight_loss_kg, last_activity_date
        FROM gamification_profiles WHERE user_id=$1`

	snap := domain.ProfileSnapshot{UserID: userID, Level: 1}

	var lastActivity *time.Time
	err := t.tx.QueryRow(ctx, query, userID).Scan(
		&snap.XP, &snap.Level, &snap.CurrentStreak, &snap.LongestStreak,
		&snap.TotalWorkouts, &snap.TotalChallenges, &snap.WeightLossKg, &lastActivity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return snap, nil
	}
	if err != nil {
		return domain.ProfileSnapshot{}, err
	}
	if lastActivity != nil {
		snap.LastActivityDate = *lastActivity
	}
	return snap, nil
}

func (t *storeTx) ListActiveBadges(ctx context.Context) ([]domain.BadgeDefinition, error) {
	const query = `SELECT badge_id, name, description, category, rarity, active, hidden,
            xp_required, level_required, streak_required, workouts_required, challenges_required, special_requirements
        FROM badges WHERE active`

	rows, err := t.tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.BadgeDefinition
	for rows.Next() {
		var badge domain.BadgeDefinition
		var special []byte
		if err := rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.Category, &badge.Rarity,
			&badge.Active, &badge.Hidden,
			&badge.XPRequired, &badge.LevelRequired, &badge.StreakRequired,
			&badge.WorkoutsRequired, &badge.ChallengesRequired, &special); err != nil {
			return nil, err
		}
		if len(special) > 0 {
			if err := json.Unmarshal(special, &badge.Special); err != nil {
				return nil, fmt.Errorf("badge %s: decoding special requirements: %w", badge.ID, err)
			}
		}
		badges = append(badges, badge)
	}
	return badges, rows.Err()
}

func (t *storeTx) EarnedBadgeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := t.tx.Query(ctx, `SELECT badge_id FROM user_badges WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		earned[id] = true
	}
	return earned, rows.Err()
}

// InsertUserBadgeIfAbsent performs the atomic insert-or-detect-duplicate the
// uniqueness invariant depends on. A concurrent transaction winning the
// insert surfaces as created=false, never as an error.
func (t *storeTx) InsertUserBadgeIfAbsent(ctx context.Context, ub domain.UserBadge) (bool, error) {
	snapshot, err := json.Marshal(ub.Snapshot)
	if err != nil {
		return false, err
	}

	const stmt = `INSERT INTO user_badges (user_id, badge_id, awarded_at, stats_snapshot)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id, badge_id) DO NOTHING`

	tag, err := t.tx.Exec(ctx, stmt, ub.UserID, ub.BadgeID, ub.AwardedAt, snapshot)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (t *storeTx) AppendRecordBroken(ctx context.Context, outcome domain.RecordOutcome, entry domain.PerformanceEntry) error {
	payload := events.RecordBroken{
		UserID:     outcome.UserID,
		ExerciseID: outcome.ExerciseID,
		RecordType: string(outcome.Type),
		NewValue:   outcome.NewValue,
		EntryID:    entry.ID,
		OccurredAt: entry.RecordedAt,
	}
	if outcome.HadPrior {
		prior := outcome.PriorValue
		payload.OldValue = &prior
	}

	dedupe := fmt.Sprintf("%s:%s:%s:%s", outcome.UserID, outcome.ExerciseID, outcome.Type, entry.ID)
	return t.insertOutbox(ctx, "record.broken", outcome.UserID, dedupe, payload)
}

func (t *storeTx) AppendBadgeAwarded(ctx context.Context, ub domain.UserBadge) error {
	payload := events.BadgeAwarded{
		UserID:  ub.UserID,
		BadgeID: ub.BadgeID,
		Snapshot: events.ProfileStats{
			XP:            ub.Snapshot.XP,
			Level:         ub.Snapshot.Level,
			CurrentStreak: ub.Snapshot.CurrentStreak,
			TotalWorkouts: ub.Snapshot.TotalWorkouts,
			Challenges:    ub.Snapshot.TotalChallenges,
		},
		AwardedAt: ub.AwardedAt,
	}

	dedupe := fmt.Sprintf("%s:%s", ub.UserID, ub.BadgeID)
	return t.insertOutbox(ctx, "badge.awarded", ub.UserID, dedupe, payload)
}

func (t *storeTx) insertOutbox(ctx context.Context, eventType, aggregateID, dedupeKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = t.tx.Exec(ctx, stmt,
		"award",
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		aggregateID,
		body,
		dedupeKey,
	)
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// EventMetadata describes how an outbox event is routed.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"record.broken": {
		Topic:         "record_events",
		SchemaSubject: "record_events-value",
	},
	"badge.awarded": {
		Topic:         "badge_events",
		SchemaSubject: "badge_events-value",
	},
}
