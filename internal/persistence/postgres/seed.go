package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gamification/internal/domain"
)

// DefaultBadges is the stock catalog installed for new deployments. Existing
// rows are left untouched so operators can retire or tune badges.
func DefaultBadges() []domain.BadgeDefinition {
	return []domain.BadgeDefinition{
		{ID: "first-workout", Name: "First Workout", Description: "Complete your first workout", Category: "strength", Rarity: "common", Active: true, WorkoutsRequired: 1},
		{ID: "strength-builder", Name: "Strength Builder", Description: "Complete 10 strength workouts", Category: "strength", Rarity: "uncommon", Active: true, WorkoutsRequired: 10},
		{ID: "powerlifter", Name: "Powerlifter", Description: "Complete 50 strength workouts", Category: "strength", Rarity: "rare", Active: true, WorkoutsRequired: 50},
		{ID: "first-pr", Name: "First PR", Description: "Set your first personal record", Category: "strength", Rarity: "common", Active: true,
			Special: []domain.SpecialRequirement{{Kind: domain.RequireAnyPR}}},
		{ID: "getting-started", Name: "Getting Started", Description: "Work out for 3 consecutive days", Category: "consistency", Rarity: "common", Active: true, StreakRequired: 3},
		{ID: "week-warrior", Name: "Week Warrior", Description: "Work out for 7 consecutive days", Category: "consistency", Rarity: "uncommon", Active: true, StreakRequired: 7},
		{ID: "month-master", Name: "Month Master", Description: "Work out for 30 consecutive days", Category: "consistency", Rarity: "epic", Active: true, StreakRequired: 30},
		{ID: "challenge-master", Name: "Challenge Master", Description: "Complete 5 challenges", Category: "social", Rarity: "uncommon", Active: true, ChallengesRequired: 5},
		{ID: "level-10", Name: "Level 10", Description: "Reach level 10", Category: "milestone", Rarity: "uncommon", Active: true, LevelRequired: 10},
		{ID: "level-25", Name: "Level 25", Description: "Reach level 25", Category: "milestone", Rarity: "rare", Active: true, LevelRequired: 25},
		{ID: "level-50", Name: "Level 50", Description: "Reach level 50", Category: "milestone", Rarity: "legendary", Active: true, LevelRequired: 50},
	}
}

// SeedDefaultBadges inserts the stock badge catalog, skipping badges that
// already exist.
func SeedDefaultBadges(ctx context.Context, pool *pgxpool.Pool) error {
	const stmt = `INSERT INTO badges (badge_id, name, description, category, rarity, active, hidden,
            xp_required, level_required, streak_required, workouts_required, challenges_required, special_requirements)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (badge_id) DO NOTHING`

	for _, badge := range DefaultBadges() {
		special, err := specialJSON(badge.Special)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, stmt,
			badge.ID, badge.Name, badge.Description, badge.Category, badge.Rarity,
			badge.Active, badge.Hidden,
			badge.XPRequired, badge.LevelRequired, badge.StreakRequired,
			badge.WorkoutsRequired, badge.ChallengesRequired, special,
		); err != nil {
			return err
		}
	}
	return nil
}

// specialJSON encodes special requirements for the jsonb column. A badge
// without specials must encode as an empty array, never SQL NULL; a nil slice
// handed to pgx as []byte would arrive as NULL and violate the column
// constraint.
func specialJSON(reqs []domain.SpecialRequirement) ([]byte, error) {
	if len(reqs) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(reqs)
}

// SeedDefaultQuests installs the stock daily quest set, skipping existing
// quests.
func SeedDefaultQuests(ctx context.Context, pool *pgxpool.Pool) error {
	quests := []struct {
		ID        string
		Name      string
		QuestType string
		Target    int
		XPReward  int
	}{
		{"daily-workout", "Daily Workout", string(domain.ActivityWorkoutCompletion), 1, 20},
		{"daily-lift", "Move Some Iron", string(domain.ActivityStrengthPR), 1, 10},
		{"daily-cardio", "Cardio Session", string(domain.ActivityCardioSession), 1, 15},
	}

	const stmt = `INSERT INTO daily_quests (quest_id, name, quest_type, target, xp_reward, active)
        VALUES ($1,$2,$3,$4,$5,TRUE)
        ON CONFLICT (quest_id) DO NOTHING`

	for _, q := range quests {
		if _, err := pool.Exec(ctx, stmt, q.ID, q.Name, q.QuestType, q.Target, q.XPReward); err != nil {
			return err
		}
	}
	return nil
}
