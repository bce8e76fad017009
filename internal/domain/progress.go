package domain

import "time"

// ActivityType categorises the XP-earning activities the profile engine
// recognises.
type ActivityType string

const (
	ActivityWorkoutCompletion   ActivityType = "workout_completion"
	ActivityStrengthPR          ActivityType = "strength_pr"
	ActivityCardioSession       ActivityType = "cardio_session"
	ActivityChallengeCompletion ActivityType = "challenge_completion"
	ActivityChallengeJoin       ActivityType = "challenge_join"
	ActivityNutritionLog        ActivityType = "nutrition_log"
	ActivityGoalReached         ActivityType = "goal_reached"
	ActivityDailyQuest          ActivityType = "daily_quest"
)

// baseXP is the reward table per activity type.
var baseXP = map[ActivityType]int{
	ActivityWorkoutCompletion:   10,
	ActivityStrengthPR:          50,
	ActivityCardioSession:       15,
	ActivityChallengeCompletion: 100,
	ActivityChallengeJoin:       25,
	ActivityNutritionLog:        5,
	ActivityGoalReached:         100,
	ActivityDailyQuest:          20,
}

// XPForActivity returns the base XP for an activity type. Unlisted types earn
// a small default rather than nothing.
func XPForActivity(t ActivityType) int {
	if xp, ok := baseXP[t]; ok {
		return xp
	}
	return 10
}

// StreakMultiplier scales XP by how long the user's current activity streak
// is.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak >= 30:
		return 2.0
	case streak >= 14:
		return 1.5
	case streak >= 7:
		return 1.25
	case streak >= 3:
		return 1.1
	default:
		return 1.0
	}
}

// LevelForXP converts total XP into a level. Each level requires 100 XP more
// than the one before it: 100 to reach level 2, 200 more for level 3, etc.
func LevelForXP(xp int) int {
	level := 1
	need := 100
	for xp >= need {
		xp -= need
		level++
		need += 100
	}
	return level
}

// CountsAsWorkout reports whether the activity increments the workout counter.
func CountsAsWorkout(t ActivityType) bool {
	switch t {
	case ActivityWorkoutCompletion, ActivityStrengthPR, ActivityCardioSession:
		return true
	}
	return false
}

// AdvanceStreak applies one day of activity to a streak. last is the previous
// activity date (zero when none). Returns the new streak length and activity
// date, both at day granularity in UTC.
func AdvanceStreak(current int, last, now time.Time) (int, time.Time) {
	today := truncateToDay(now)
	switch {
	case last.IsZero():
		return 1, today
	case truncateToDay(last).Equal(today):
		// Already active today.
		return current, today
	case truncateToDay(last).Equal(today.AddDate(0, 0, -1)):
		return current + 1, today
	default:
		// Streak broken.
		return 1, today
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
