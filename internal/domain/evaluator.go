package domain

// EvaluateCandidates returns the badges newly qualified by the user's stats
// and this evaluation's record outcomes. Pure: it neither persists nor mutates
// its inputs, and the result order carries no meaning for award persistence.
func EvaluateCandidates(snapshot ProfileSnapshot, outcomes []RecordOutcome, earned map[string]bool, catalog []BadgeDefinition) []BadgeDefinition {
	var qualified []BadgeDefinition
	for _, badge := range catalog {
		if !badge.Active || badge.Hidden {
			continue
		}
		if earned[badge.ID] {
			continue
		}
		if !thresholdsMet(badge, snapshot) {
			continue
		}
		if !specialsMet(badge.Special, snapshot, outcomes) {
			continue
		}
		qualified = append(qualified, badge)
	}
	return qualified
}

func thresholdsMet(badge BadgeDefinition, s ProfileSnapshot) bool {
	if badge.XPRequired > 0 && s.XP < badge.XPRequired {
		return false
	}
	if badge.LevelRequired > 0 && s.Level < badge.LevelRequired {
		return false
	}
	if badge.StreakRequired > 0 && s.CurrentStreak < badge.StreakRequired {
		return false
	}
	if badge.WorkoutsRequired > 0 && s.TotalWorkouts < badge.WorkoutsRequired {
		return false
	}
	if badge.ChallengesRequired > 0 && s.TotalChallenges < badge.ChallengesRequired {
		return false
	}
	return true
}

func specialsMet(reqs []SpecialRequirement, s ProfileSnapshot, outcomes []RecordOutcome) bool {
	for _, req := range reqs {
		switch req.Kind {
		case RequireAnyPR:
			if !anyNewRecord(outcomes, "") {
				return false
			}
		case RequireExercisePR:
			if !anyNewRecord(outcomes, req.ExerciseID) {
				return false
			}
		case RequireConsecutiveWorkouts:
			if s.CurrentStreak < req.Days {
				return false
			}
		case RequireWeightLossTarget:
			if s.WeightLossKg < req.TargetKg {
				return false
			}
		default:
			// Unrecognised kinds pass. Long-standing awarding behaviour;
			// tightening this changes which badges unlock, so it stays until
			// a product decision says otherwise.
		}
	}
	return true
}

func anyNewRecord(outcomes []RecordOutcome, exerciseID string) bool {
	for _, o := range outcomes {
		if !o.NewRecord {
			continue
		}
		if exerciseID == "" || o.ExerciseID == exerciseID {
			return true
		}
	}
	return false
}
