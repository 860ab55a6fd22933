package events

// Type names a domain event the core emits at a lifecycle boundary.
type Type string

const (
	DonationApproved   Type = "DonationApproved"
	DonationClaimed    Type = "DonationClaimed"
	ClaimApproved      Type = "ClaimApproved"
	ClaimCancelled     Type = "ClaimCancelled"
	VolunteerAssigned  Type = "VolunteerAssigned"
	DonationPickedUp   Type = "DonationPickedUp"
	DonationDelivered  Type = "DonationDelivered"
	DonationFulfilled  Type = "DonationFulfilled"
	BadgeAwarded       Type = "BadgeAwarded"
	ChallengeCompleted Type = "ChallengeCompleted"
)

// Sink receives domain events fire-and-forget. Payloads carry the minimal
// identifiers a downstream notifier needs; names are resolved downstream.
// Emit must never block or fail the emitting transition.
type Sink interface {
	Emit(evt Type, payload map[string]any)
}

// NopSink drops everything. Useful default when no notifier is wired.
type NopSink struct{}

func (NopSink) Emit(Type, map[string]any) {}
