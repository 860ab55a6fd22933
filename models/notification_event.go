package models

import "time"

// NotificationEvent is an outbox row for the external notifier. The core
// writes these fire-and-forget; the dispatch worker drains them.
type NotificationEvent struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	Type         string     `gorm:"type:varchar(48);not null;index" json:"type"`
	Payload      string     `gorm:"type:text" json:"payload"` // JSON-encoded identifiers
	DispatchedAt *time.Time `gorm:"index" json:"dispatched_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
