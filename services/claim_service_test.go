package services

import (
	"testing"
	"time"

	"foodbridge/auth"
	"foodbridge/models"
	apperrors "foodbridge/pkg/errors"
)

// Scenario: receiver claims an approved donation, and a second claim from the
// same receiver is refused.
func TestCreateClaim_DuplicateRefused(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")

	claim, err := env.claims.CreateClaim(donation.ID, "receiver-1")
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}
	if claim.Status != models.ClaimStatusPending {
		t.Errorf("Status = %s, want pending", claim.Status)
	}

	_, err = env.claims.CreateClaim(donation.ID, "receiver-1")
	if apperrors.Code(err) != apperrors.ErrCodeDuplicateClaim {
		t.Errorf("second CreateClaim() error = %v, want DUPLICATE_CLAIM", err)
	}

	// A different receiver can still claim.
	if _, err := env.claims.CreateClaim(donation.ID, "receiver-2"); err != nil {
		t.Errorf("CreateClaim() by second receiver error = %v", err)
	}
}

func TestCreateClaim_AfterCancelAllowed(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")

	claim, err := env.claims.CreateClaim(donation.ID, "receiver-1")
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}
	if _, err := env.claims.CancelClaim(claim.ID, donorActor("donor-1")); err != nil {
		t.Fatalf("CancelClaim() error = %v", err)
	}

	// The partial unique index only covers non-cancelled claims.
	if _, err := env.claims.CreateClaim(donation.ID, "receiver-1"); err != nil {
		t.Errorf("CreateClaim() after cancel error = %v", err)
	}
}

func TestCreateClaim_DonationNotClaimable(t *testing.T) {
	env := newTestEnv(t)

	pending, _ := env.donations.Submit(SubmitDonationInput{
		DonorID:       "donor-1",
		Title:         "Rice",
		Quantity:      2,
		PickupAddress: "1 Main St",
	})
	if _, err := env.claims.CreateClaim(pending.ID, "receiver-1"); apperrors.Code(err) != apperrors.ErrCodeDonationNotClaimable {
		t.Errorf("CreateClaim() on pending donation error = %v, want DONATION_NOT_CLAIMABLE", err)
	}

	expired := submitApproved(t, env, "donor-2")
	if err := env.db.Model(&models.Donation{}).Where("id = ?", expired.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate expiry: %v", err)
	}
	if _, err := env.claims.CreateClaim(expired.ID, "receiver-1"); apperrors.Code(err) != apperrors.ErrCodeDonationNotClaimable {
		t.Errorf("CreateClaim() on expired donation error = %v, want DONATION_NOT_CLAIMABLE", err)
	}
}

func TestApproveClaim_OnlyOwningDonor(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")

	claim, _ := env.claims.CreateClaim(donation.ID, "receiver-1")
	if _, err := env.claims.ApproveClaim(claim.ID, donorActor("someone-else")); apperrors.Code(err) != apperrors.ErrCodeUnauthorized {
		t.Errorf("ApproveClaim() by stranger error = %v, want UNAUTHORIZED", err)
	}

	accepted, err := env.claims.ApproveClaim(claim.ID, donorActor("donor-1"))
	if err != nil {
		t.Fatalf("ApproveClaim() error = %v", err)
	}
	if accepted.Status != models.ClaimStatusAccepted {
		t.Errorf("Status = %s, want accepted", accepted.Status)
	}
}

// Scenario: full delivery happy path (accept, assign, pickup, deliver). The
// parent donation completes and gamification fires.
func TestDeliveryHappyPath(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")
	claim := acceptedClaim(t, env, donation, "receiver-1")
	registerVolunteer(t, env, "vol-1")

	assigned, err := env.claims.AssignVolunteer(claim.ID, "vol-1", adminActor)
	if err != nil {
		t.Fatalf("AssignVolunteer() error = %v", err)
	}
	if assigned.Status != models.ClaimStatusAccepted || assigned.VolunteerID == nil {
		t.Fatalf("after assignment status = %s, volunteer = %v", assigned.Status, assigned.VolunteerID)
	}

	volActor := auth.Actor{ID: "vol-1", Roles: []string{"volunteer"}}
	pickedUp, err := env.claims.MarkPickedUp(claim.ID, volActor)
	if err != nil {
		t.Fatalf("MarkPickedUp() error = %v", err)
	}
	if pickedUp.Status != models.ClaimStatusPickedUp || pickedUp.PickedUpAt == nil {
		t.Fatalf("after pickup status = %s", pickedUp.Status)
	}

	result, err := env.claims.MarkDelivered(claim.ID, volActor)
	if err != nil {
		t.Fatalf("MarkDelivered() error = %v", err)
	}
	if result.Claim.Status != models.ClaimStatusDelivered || result.Claim.DeliveredAt == nil {
		t.Errorf("delivered claim status = %s", result.Claim.Status)
	}

	var reloaded models.Donation
	if err := env.db.Where("id = ?", donation.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("failed to reload donation: %v", err)
	}
	if reloaded.Status != models.DonationStatusCompleted {
		t.Errorf("donation status = %s, want completed", reloaded.Status)
	}

	if env.sink.count("DonationFulfilled") != 1 {
		t.Errorf("DonationFulfilled emitted %d times, want 1", env.sink.count("DonationFulfilled"))
	}
	// First completed donation unlocks FIRST_DONATION; announced post-commit.
	if env.sink.count("BadgeAwarded") != 1 {
		t.Errorf("BadgeAwarded emitted %d times, want 1", env.sink.count("BadgeAwarded"))
	}
	if result.Reward == nil || result.Reward.PointsCredited != models.DefaultPointsPerDonation {
		t.Errorf("Reward = %+v, want %d points credited", result.Reward, models.DefaultPointsPerDonation)
	}

	points, err := env.points.Total(env.db, "donor-1")
	if err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	// Donation points plus the FIRST_DONATION badge reward.
	want := models.DefaultPointsPerDonation + 20
	if points != want {
		t.Errorf("donor points = %d, want %d", points, want)
	}
}

func TestMarkPickedUp_RequiresVolunteer(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")
	claim := acceptedClaim(t, env, donation, "receiver-1")

	_, err := env.claims.MarkPickedUp(claim.ID, adminActor)
	if apperrors.Code(err) != apperrors.ErrCodeInvalidTransition {
		t.Errorf("MarkPickedUp() without volunteer error = %v, want INVALID_TRANSITION", err)
	}
}

func TestAssignVolunteer_ChecksAvailability(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")
	claim := acceptedClaim(t, env, donation, "receiver-1")

	if _, err := env.claims.AssignVolunteer(claim.ID, "vol-unknown", adminActor); apperrors.Code(err) != apperrors.ErrCodeNotFound {
		t.Errorf("AssignVolunteer() unknown volunteer error = %v, want NOT_FOUND", err)
	}

	if _, err := env.claims.SetVolunteerAvailability("vol-busy", false, ""); err != nil {
		t.Fatalf("SetVolunteerAvailability() error = %v", err)
	}
	// The unavailable flag must survive the insert, not get clobbered by a
	// column default.
	var profile models.VolunteerProfile
	if err := env.db.Where("user_id = ?", "vol-busy").First(&profile).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if profile.Available {
		t.Error("profile persisted as available, want unavailable")
	}
	if _, err := env.claims.AssignVolunteer(claim.ID, "vol-busy", adminActor); apperrors.Code(err) != apperrors.ErrCodeValidationFailed {
		t.Errorf("AssignVolunteer() unavailable volunteer error = %v, want VALIDATION_FAILED", err)
	}
}

func TestCancelClaim_ClearsVolunteer(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")
	claim := acceptedClaim(t, env, donation, "receiver-1")
	registerVolunteer(t, env, "vol-1")

	if _, err := env.claims.AssignVolunteer(claim.ID, "vol-1", adminActor); err != nil {
		t.Fatalf("AssignVolunteer() error = %v", err)
	}

	cancelled, err := env.claims.CancelClaim(claim.ID, adminActor)
	if err != nil {
		t.Fatalf("CancelClaim() error = %v", err)
	}
	if cancelled.Status != models.ClaimStatusCancelled || cancelled.VolunteerID != nil {
		t.Errorf("cancelled claim = %+v, want cancelled with no volunteer", cancelled)
	}
}

// A delivered donation force-cancels the losing open claims.
func TestDelivery_ForceCancelsOtherClaims(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")

	winner := acceptedClaim(t, env, donation, "receiver-1")
	if _, err := env.claims.CreateClaim(donation.ID, "receiver-2"); err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}

	registerVolunteer(t, env, "vol-1")
	if _, err := env.claims.AssignVolunteer(winner.ID, "vol-1", adminActor); err != nil {
		t.Fatalf("AssignVolunteer() error = %v", err)
	}
	volActor := auth.Actor{ID: "vol-1"}
	if _, err := env.claims.MarkPickedUp(winner.ID, volActor); err != nil {
		t.Fatalf("MarkPickedUp() error = %v", err)
	}
	if _, err := env.claims.MarkDelivered(winner.ID, volActor); err != nil {
		t.Fatalf("MarkDelivered() error = %v", err)
	}

	claims, err := env.claims.ListByDonation(donation.ID)
	if err != nil {
		t.Fatalf("ListByDonation() error = %v", err)
	}
	for _, c := range claims {
		switch c.ID {
		case winner.ID:
			if c.Status != models.ClaimStatusDelivered {
				t.Errorf("winner status = %s, want delivered", c.Status)
			}
		default:
			if c.Status != models.ClaimStatusCancelled {
				t.Errorf("losing claim %s status = %s, want cancelled", c.ID, c.Status)
			}
		}
	}
}

// Scenario: a second claim already picked up cannot deliver a fulfilled
// donation.
func TestMarkDelivered_AlreadyFulfilled(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")

	first := acceptedClaim(t, env, donation, "receiver-1")
	second := acceptedClaim(t, env, donation, "receiver-2")

	registerVolunteer(t, env, "vol-1")
	registerVolunteer(t, env, "vol-2")
	if _, err := env.claims.AssignVolunteer(first.ID, "vol-1", adminActor); err != nil {
		t.Fatalf("AssignVolunteer() error = %v", err)
	}
	if _, err := env.claims.AssignVolunteer(second.ID, "vol-2", adminActor); err != nil {
		t.Fatalf("AssignVolunteer() error = %v", err)
	}

	if _, err := env.claims.MarkPickedUp(first.ID, auth.Actor{ID: "vol-1"}); err != nil {
		t.Fatalf("MarkPickedUp() error = %v", err)
	}
	if _, err := env.claims.MarkPickedUp(second.ID, auth.Actor{ID: "vol-2"}); err != nil {
		t.Fatalf("MarkPickedUp() error = %v", err)
	}

	if _, err := env.claims.MarkDelivered(first.ID, auth.Actor{ID: "vol-1"}); err != nil {
		t.Fatalf("first MarkDelivered() error = %v", err)
	}

	_, err := env.claims.MarkDelivered(second.ID, auth.Actor{ID: "vol-2"})
	if apperrors.Code(err) != apperrors.ErrCodeDonationAlreadyFulfilled {
		t.Errorf("second MarkDelivered() error = %v, want DONATION_ALREADY_FULFILLED", err)
	}
}

func TestDisputeFlow(t *testing.T) {
	env := newTestEnv(t)
	donation := submitApproved(t, env, "donor-1")
	claim := acceptedClaim(t, env, donation, "receiver-1")

	disputed, err := env.claims.RaiseDispute(claim.ID, auth.Actor{ID: "receiver-1"})
	if err != nil {
		t.Fatalf("RaiseDispute() error = %v", err)
	}
	if disputed.Status != models.ClaimStatusDisputed {
		t.Fatalf("Status = %s, want disputed", disputed.Status)
	}

	// Disputed claims cannot be cancelled or delivered.
	if _, err := env.claims.CancelClaim(claim.ID, adminActor); apperrors.Code(err) != apperrors.ErrCodeInvalidTransition {
		t.Errorf("CancelClaim() on disputed error = %v, want INVALID_TRANSITION", err)
	}

	if _, err := env.claims.ResolveDispute(claim.ID, "refunded receiver", donorActor("donor-1")); apperrors.Code(err) != apperrors.ErrCodeUnauthorized {
		t.Errorf("ResolveDispute() by donor error = %v, want UNAUTHORIZED", err)
	}

	resolved, err := env.claims.ResolveDispute(claim.ID, "refunded receiver", adminActor)
	if err != nil {
		t.Fatalf("ResolveDispute() error = %v", err)
	}
	if resolved.ResolutionNotes != "refunded receiver" {
		t.Errorf("ResolutionNotes = %q", resolved.ResolutionNotes)
	}
}
