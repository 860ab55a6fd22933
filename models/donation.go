package models

import (
	"time"

	"gorm.io/gorm"
)

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusApproved  DonationStatus = "approved"
	DonationStatusRejected  DonationStatus = "rejected"
	DonationStatusCompleted DonationStatus = "completed"
)

// Donation is a posted offer of surplus food, owned by a donor.
// Status moves only along pending → {approved, rejected}; approved → completed.
type Donation struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	DonorID       string         `gorm:"index;not null" json:"donor_id"`
	Title         string         `gorm:"not null" json:"title"`
	Slug          string         `gorm:"index" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	Quantity      int            `gorm:"not null" json:"quantity"`
	PickupAddress string         `gorm:"not null" json:"pickup_address"`
	PhotoURL      string         `gorm:"type:text" json:"photo_url,omitempty"`
	Status        DonationStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	ExpiresAt     time.Time      `json:"expires_at"`

	Timestamps
}

func (d *Donation) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && d.ExpiresAt.Before(now)
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
