package models

import "time"

type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusAccepted  ClaimStatus = "accepted"
	ClaimStatusPickedUp  ClaimStatus = "picked_up"
	ClaimStatusDelivered ClaimStatus = "delivered"
	ClaimStatusCancelled ClaimStatus = "cancelled"
	ClaimStatusDisputed  ClaimStatus = "disputed"
)

// Claim is a receiver's request to take delivery of one Donation.
// The partial unique index guarantees at most one non-cancelled claim per
// (donation, receiver) pair even under concurrent creation; the losing
// insert surfaces gorm.ErrDuplicatedKey.
type Claim struct {
	ID              string      `gorm:"primaryKey;type:uuid" json:"id"`
	DonationID      string      `gorm:"not null;uniqueIndex:idx_active_claim,where:status <> 'cancelled'" json:"donation_id"`
	ReceiverID      string      `gorm:"not null;uniqueIndex:idx_active_claim,where:status <> 'cancelled'" json:"receiver_id"`
	VolunteerID     *string     `gorm:"index" json:"volunteer_id,omitempty"`
	Status          ClaimStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	ResolutionNotes string      `gorm:"type:text" json:"resolution_notes,omitempty"`

	ClaimedAt   time.Time  `gorm:"autoCreateTime" json:"claimed_at"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Open reports whether the claim still holds a seat in the donation's
// fulfillment race.
func (c *Claim) Open() bool {
	return c.Status == ClaimStatusPending || c.Status == ClaimStatusAccepted
}
