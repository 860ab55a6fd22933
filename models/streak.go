package models

import "time"

// UserStreak tracks consecutive qualifying donation days per donor.
// Mutated only by the streak processor; one row per donor.
type UserStreak struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`

	CurrentStreak int `gorm:"default:0" json:"current_streak"`
	LongestStreak int `gorm:"default:0" json:"longest_streak"`

	// MonthlyStreak counts qualifying days inside the anchor month
	// (MonthlyStreakMonth, "2006-01" format).
	MonthlyStreak      int    `gorm:"default:0" json:"monthly_streak"`
	MonthlyStreakMonth string `gorm:"type:varchar(7)" json:"monthly_streak_month"`

	LastActionDate *time.Time `json:"last_action_date,omitempty"`
	LastAwardedAt  *time.Time `json:"last_awarded_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
