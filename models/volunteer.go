package models

import "time"

// VolunteerProfile tracks delivery volunteers and whether they can take
// assignments right now. Checked by the claim coordinator on assignment.
// Available carries no column default: gorm would omit an explicit false on
// insert and let the database default win.
type VolunteerProfile struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"uniqueIndex;not null" json:"user_id"`
	Available bool      `json:"available"`
	Zone      string    `gorm:"type:varchar(64)" json:"zone,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
