package models

import "time"

// Challenge is an admin-defined, time-boxed goal a donor can complete for points.
type Challenge struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	PointsReward int64     `gorm:"default:0" json:"points_reward"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`
	Active       bool      `gorm:"index" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Challenge) WithinWindow(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// UserChallenge: at most one per (user, challenge), enforced by unique index.
type UserChallenge struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex:idx_user_challenge" json:"user_id"`
	ChallengeID string    `gorm:"not null;uniqueIndex:idx_user_challenge" json:"challenge_id"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}
