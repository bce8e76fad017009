package domain

import "time"

// SpecialRequirementKind tags the closed set of special badge predicates.
// The string values match the requirement keys used in badge configuration.
type SpecialRequirementKind string

const (
	RequireAnyPR               SpecialRequirementKind = "pr"
	RequireConsecutiveWorkouts SpecialRequirementKind = "consecutive_workouts"
	RequireExercisePR          SpecialRequirementKind = "specific_exercise_pr"
	RequireWeightLossTarget    SpecialRequirementKind = "weight_loss_goal"
)

// SpecialRequirement is one tagged predicate attached to a badge. Only the
// field relevant to the kind is set.
type SpecialRequirement struct {
	Kind       SpecialRequirementKind `json:"kind"`
	Days       int                    `json:"days,omitempty"`
	ExerciseID string                 `json:"exercise_id,omitempty"`
	TargetKg   float64                `json:"target_kg,omitempty"`
}

// BadgeDefinition is one configured badge with its unlock criteria. A numeric
// threshold of zero means "not required". Inactive or hidden badges are never
// awarded regardless of criteria.
type BadgeDefinition struct {
	ID                 string
	Name               string
	Description        string
	Category           string
	Rarity             string
	Active             bool
	Hidden             bool
	XPRequired         int
	LevelRequired      int
	StreakRequired     int
	WorkoutsRequired   int
	ChallengesRequired int
	Special            []SpecialRequirement
}

// ProfileSnapshot is the transactionally consistent view of a user's
// cumulative stats at evaluation time. It is read-only input here; the profile
// itself is maintained by the profile engine.
type ProfileSnapshot struct {
	UserID           string    `json:"user_id"`
	XP               int       `json:"xp"`
	Level            int       `json:"level"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	TotalWorkouts    int       `json:"total_workouts"`
	TotalChallenges  int       `json:"total_challenges"`
	WeightLossKg     float64   `json:"weight_loss_kg"`
	LastActivityDate time.Time `json:"last_activity_date"`
}

// UserBadge is the append-only award row: at most one per (user, badge) pair.
type UserBadge struct {
	UserID    string
	BadgeID   string
	AwardedAt time.Time
	Snapshot  ProfileSnapshot
}
