package models

import "time"

// UserPoint is the running point total per user. Monotonically non-decreasing
// from the engine's side; only admin corrections (out of band) reduce it.
type UserPoint struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"uniqueIndex;not null" json:"user_id"`
	Points    int64     `gorm:"default:0" json:"points"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
