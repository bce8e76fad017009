// Package events defines the wire payloads shared with upstream and
// downstream services.
package events

import "time"

// WorkoutSetRecorded is consumed when the logging pipeline persists a new
// strength set.
type WorkoutSetRecorded struct {
	EntryID    string    `json:"entry_id"`
	UserID     string    `json:"user_id"`
	ExerciseID string    `json:"exercise_id"`
	SessionID  string    `json:"session_id"`
	WeightKg   float64   `json:"weight_kg"`
	Reps       int       `json:"reps"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RecordBroken is emitted after commit when an entry beats a stored personal
// record. OldValue is absent for a first-ever record.
type RecordBroken struct {
	UserID     string    `json:"user_id"`
	ExerciseID string    `json:"exercise_id"`
	RecordType string    `json:"record_type"`
	OldValue   *float64  `json:"old_value,omitempty"`
	NewValue   float64   `json:"new_value"`
	EntryID    string    `json:"entry_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BadgeAwarded is emitted after commit, exactly once per (user, badge) pair.
type BadgeAwarded struct {
	UserID    string       `json:"user_id"`
	BadgeID   string       `json:"badge_id"`
	Snapshot  ProfileStats `json:"snapshot"`
	AwardedAt time.Time    `json:"awarded_at"`
}

// ProfileStats is the stats snapshot captured when a badge was earned.
type ProfileStats struct {
	XP            int `json:"xp"`
	Level         int `json:"level"`
	CurrentStreak int `json:"current_streak"`
	TotalWorkouts int `json:"total_workouts"`
	Challenges    int `json:"challenges"`
}
