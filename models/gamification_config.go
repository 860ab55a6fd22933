package models

// GamificationConfig holds tunable reward magnitudes as key/value rows.
// Read by the engine, written only by admins.
type GamificationConfig struct {
	Key   string `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value int64  `gorm:"not null" json:"value"`
}

// Config keys understood by the engine.
const (
	ConfigPointsPerDonation = "points_per_donation"
	ConfigStreakThreshold   = "streak_threshold"
	ConfigStreakBonusPoints = "streak_bonus_points"
)

// Defaults applied when a key is absent from the table.
const (
	DefaultPointsPerDonation int64 = 10
	DefaultStreakThreshold   int64 = 7
	DefaultStreakBonusPoints int64 = 50
)
