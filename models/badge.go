package models

import "time"

// BadgeRuleKind is the closed set of unlock rule kinds the evaluator knows
// how to dispatch. Admins pick a kind + threshold instead of free-form rules.
type BadgeRuleKind string

const (
	RuleTotalDonations BadgeRuleKind = "total_donations"
	RuleTotalPoints    BadgeRuleKind = "total_points"
	RuleCurrentStreak  BadgeRuleKind = "current_streak"
	RuleLongestStreak  BadgeRuleKind = "longest_streak"
)

// Badge: static catalog entity maintained by admins, read-only to the engine.
type Badge struct {
	ID             string        `gorm:"primaryKey;type:uuid" json:"id"`
	Code           string        `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FIRST_DONATION", "STREAK_7"
	Title          string        `gorm:"not null" json:"title"`
	Description    string        `json:"description"`
	Category       string        `gorm:"type:varchar(32)" json:"category"`
	Tier           int           `gorm:"default:1" json:"tier"`
	Rarity         string        `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	PointsReward   int64         `gorm:"default:0" json:"points_reward"`
	UnlockRuleType BadgeRuleKind `gorm:"type:varchar(32);not null" json:"unlock_rule_type"`
	UnlockValue    int64         `gorm:"not null" json:"unlock_value"`
	IsActive       bool          `json:"is_active"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance; the unique index makes awarding idempotent.
type UserBadge struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID   string    `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// DefaultBadges seeds the catalog on first boot (FirstOrCreate by code).
var DefaultBadges = []Badge{
	{
		Code:           "FIRST_DONATION",
		Title:          "First Plate",
		Description:    "Completed your first donation",
		Category:       "donations",
		Rarity:         "common",
		PointsReward:   20,
		UnlockRuleType: RuleTotalDonations,
		UnlockValue:    1,
		IsActive:       true,
	},
	{
		Code:           "DONATIONS_10",
		Title:          "Neighborhood Hero",
		Description:    "Completed 10 donations",
		Category:       "donations",
		Tier:           2,
		Rarity:         "rare",
		PointsReward:   100,
		UnlockRuleType: RuleTotalDonations,
		UnlockValue:    10,
		IsActive:       true,
	},
	{
		Code:           "STREAK_7",
		Title:          "Week of Giving",
		Description:    "Donated 7 days in a row",
		Category:       "streaks",
		Tier:           2,
		Rarity:         "rare",
		PointsReward:   50,
		UnlockRuleType: RuleCurrentStreak,
		UnlockValue:    7,
		IsActive:       true,
	},
	{
		Code:           "STREAK_30",
		Title:          "Month of Giving",
		Description:    "A 30-day donation streak",
		Category:       "streaks",
		Tier:           3,
		Rarity:         "epic",
		PointsReward:   300,
		UnlockRuleType: RuleLongestStreak,
		UnlockValue:    30,
		IsActive:       true,
	},
	{
		Code:           "POINTS_1000",
		Title:          "Point Collector",
		Description:    "Earned 1000 points",
		Category:       "points",
		Tier:           3,
		Rarity:         "epic",
		PointsReward:   150,
		UnlockRuleType: RuleTotalPoints,
		UnlockValue:    1000,
		IsActive:       true,
	},
}
