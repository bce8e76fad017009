package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func activeBadge(id string) BadgeDefinition {
	return BadgeDefinition{ID: id, Name: id, Active: true}
}

func badgeIDs(badges []BadgeDefinition) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestEvaluateCandidatesThresholds(t *testing.T) {
	snapshot := ProfileSnapshot{
		UserID:          "user-1",
		XP:              500,
		Level:           3,
		CurrentStreak:   5,
		TotalWorkouts:   12,
		TotalChallenges: 1,
	}

	firstWorkout := activeBadge("first-workout")
	firstWorkout.WorkoutsRequired = 1

	powerlifter := activeBadge("powerlifter")
	powerlifter.WorkoutsRequired = 50

	weekWarrior := activeBadge("week-warrior")
	weekWarrior.StreakRequired = 7

	levelTen := activeBadge("level-10")
	levelTen.LevelRequired = 10

	noCriteria := activeBadge("participation")

	got := EvaluateCandidates(snapshot, nil, map[string]bool{}, []BadgeDefinition{
		firstWorkout, powerlifter, weekWarrior, levelTen, noCriteria,
	})

	require.ElementsMatch(t, []string{"first-workout", "participation"}, badgeIDs(got))
}

func TestEvaluateCandidatesSkipsInactiveAndHidden(t *testing.T) {
	retired := activeBadge("retired")
	retired.Active = false

	hidden := activeBadge("hidden")
	hidden.Hidden = true

	got := EvaluateCandidates(ProfileSnapshot{UserID: "user-1"}, nil, map[string]bool{}, []BadgeDefinition{retired, hidden})
	require.Empty(t, got, "retired and hidden badges are never awarded even when criteria are met")
}

func TestEvaluateCandidatesSkipsAlreadyEarned(t *testing.T) {
	badge := activeBadge("first-workout")
	badge.WorkoutsRequired = 1

	snapshot := ProfileSnapshot{UserID: "user-1", TotalWorkouts: 10}
	got := EvaluateCandidates(snapshot, nil, map[string]bool{"first-workout": true}, []BadgeDefinition{badge})
	require.Empty(t, got)
}

func TestEvaluateCandidatesAnyPRRequirement(t *testing.T) {
	firstPR := activeBadge("first-pr")
	firstPR.Special = []SpecialRequirement{{Kind: RequireAnyPR}}

	noPR := EvaluateCandidates(ProfileSnapshot{UserID: "user-1"}, []RecordOutcome{
		{ExerciseID: "bench-press", Type: RecordMaxWeight, NewRecord: false},
	}, map[string]bool{}, []BadgeDefinition{firstPR})
	require.Empty(t, noPR)

	withPR := EvaluateCandidates(ProfileSnapshot{UserID: "user-1"}, []RecordOutcome{
		{ExerciseID: "bench-press", Type: RecordMaxWeight, NewRecord: true, NewValue: 120},
	}, map[string]bool{}, []BadgeDefinition{firstPR})
	require.Equal(t, []string{"first-pr"}, badgeIDs(withPR))
}

func TestEvaluateCandidatesExercisePRRequirement(t *testing.T) {
	benchClub := activeBadge("bench-club")
	benchClub.Special = []SpecialRequirement{{Kind: RequireExercisePR, ExerciseID: "bench-press"}}

	outcomes := []RecordOutcome{
		{ExerciseID: "deadlift", Type: RecordMaxWeight, NewRecord: true},
	}
	require.Empty(t, EvaluateCandidates(ProfileSnapshot{}, outcomes, map[string]bool{}, []BadgeDefinition{benchClub}))

	outcomes = append(outcomes, RecordOutcome{ExerciseID: "bench-press", Type: RecordEstimated1RM, NewRecord: true})
	got := EvaluateCandidates(ProfileSnapshot{}, outcomes, map[string]bool{}, []BadgeDefinition{benchClub})
	require.Equal(t, []string{"bench-club"}, badgeIDs(got))
}

func TestEvaluateCandidatesConsecutiveWorkoutsAndWeightLoss(t *testing.T) {
	consistent := activeBadge("consistent")
	consistent.Special = []SpecialRequirement{{Kind: RequireConsecutiveWorkouts, Days: 7}}

	shredded := activeBadge("shredded")
	shredded.Special = []SpecialRequirement{{Kind: RequireWeightLossTarget, TargetKg: 5}}

	snapshot := ProfileSnapshot{CurrentStreak: 7, WeightLossKg: 4.5}
	got := EvaluateCandidates(snapshot, nil, map[string]bool{}, []BadgeDefinition{consistent, shredded})
	require.Equal(t, []string{"consistent"}, badgeIDs(got))

	snapshot.WeightLossKg = 5
	got = EvaluateCandidates(snapshot, nil, map[string]bool{}, []BadgeDefinition{consistent, shredded})
	require.ElementsMatch(t, []string{"consistent", "shredded"}, badgeIDs(got))
}

func TestEvaluateCandidatesUnknownRequirementPasses(t *testing.T) {
	mystery := activeBadge("mystery")
	mystery.Special = []SpecialRequirement{{Kind: SpecialRequirementKind("friends_required"), Days: 1}}

	got := EvaluateCandidates(ProfileSnapshot{}, nil, map[string]bool{}, []BadgeDefinition{mystery})
	require.Equal(t, []string{"mystery"}, badgeIDs(got))
}

func TestEvaluateCandidatesAllSpecialsMustHold(t *testing.T) {
	badge := activeBadge("combo")
	badge.Special = []SpecialRequirement{
		{Kind: RequireAnyPR},
		{Kind: RequireConsecutiveWorkouts, Days: 3},
	}

	outcomes := []RecordOutcome{{ExerciseID: "squat", Type: RecordMaxWeight, NewRecord: true}}

	require.Empty(t, EvaluateCandidates(ProfileSnapshot{CurrentStreak: 1}, outcomes, map[string]bool{}, []BadgeDefinition{badge}))
	require.NotEmpty(t, EvaluateCandidates(ProfileSnapshot{CurrentStreak: 3}, outcomes, map[string]bool{}, []BadgeDefinition{badge}))
}
