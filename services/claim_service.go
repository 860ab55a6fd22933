package services

import (
	stderrors "errors"
	"fmt"
	"time"

	"foodbridge/auth"
	"foodbridge/events"
	"foodbridge/logger"
	"foodbridge/models"
	apperrors "foodbridge/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClaimService coordinates the claim and delivery lifecycle:
// pending → accepted → picked_up → delivered, with cancellation and dispute
// side branches. Delivery completes the parent donation and triggers the
// gamification engine inside the same transaction.
type ClaimService struct {
	DB           *gorm.DB
	Caps         auth.Checker
	Sink         events.Sink
	Gamification *GamificationService
}

func NewClaimService(db *gorm.DB, caps auth.Checker, sink events.Sink, gamification *GamificationService) *ClaimService {
	return &ClaimService{DB: db, Caps: caps, Sink: sink, Gamification: gamification}
}

// CreateClaim opens a claim for a receiver on an approved, unexpired
// donation. The partial unique index resolves concurrent duplicates: the
// losing insert comes back as DUPLICATE_CLAIM.
func (s *ClaimService) CreateClaim(donationID, receiverID string) (*models.Claim, error) {
	var claim models.Claim
	var donation models.Donation

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", donationID).First(&donation).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.ErrCodeNotFound, "donation not found")
			}
			return err
		}
		if donation.Status != models.DonationStatusApproved {
			return apperrors.New(apperrors.ErrCodeDonationNotClaimable,
				fmt.Sprintf("donation is %s, not approved", donation.Status))
		}
		if donation.Expired(time.Now().UTC()) {
			return apperrors.New(apperrors.ErrCodeDonationNotClaimable, "donation has expired")
		}

		claim = models.Claim{
			ID:         uuid.NewString(),
			DonationID: donationID,
			ReceiverID: receiverID,
			Status:     models.ClaimStatusPending,
		}
		if err := tx.Create(&claim).Error; err != nil {
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.New(apperrors.ErrCodeDuplicateClaim, "receiver already has an open claim on this donation")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Sink.Emit(events.DonationClaimed, map[string]any{
		"claim_id":    claim.ID,
		"donation_id": donationID,
		"donor_id":    donation.DonorID,
		"receiver_id": receiverID,
	})
	return &claim, nil
}

// ApproveClaim lets the owning donor accept a pending claim.
func (s *ClaimService) ApproveClaim(claimID string, actor auth.Actor) (*models.Claim, error) {
	var claim *models.Claim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, donation, err := loadClaim(tx, claimID)
		if err != nil {
			return err
		}
		if donation.DonorID != actor.ID {
			return apperrors.New(apperrors.ErrCodeUnauthorized, "only the owning donor may approve a claim")
		}
		if c.Status != models.ClaimStatusPending {
			return apperrors.New(apperrors.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot accept claim in status %s", c.Status))
		}
		c.Status = models.ClaimStatusAccepted
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Sink.Emit(events.ClaimApproved, map[string]any{
		"claim_id":    claim.ID,
		"donation_id": claim.DonationID,
		"receiver_id": claim.ReceiverID,
	})
	return claim, nil
}

// CancelClaim closes a pending or accepted claim and releases any assigned
// volunteer. Donor of the parent donation or an admin may cancel.
func (s *ClaimService) CancelClaim(claimID string, actor auth.Actor) (*models.Claim, error) {
	var claim *models.Claim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, donation, err := loadClaim(tx, claimID)
		if err != nil {
			return err
		}
		if donation.DonorID != actor.ID && !s.Caps.HasCapability(actor, auth.CapAdmin) {
			return apperrors.New(apperrors.ErrCodeUnauthorized, "donor or admin capability required")
		}
		if !c.Open() {
			return apperrors.New(apperrors.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot cancel claim in status %s", c.Status))
		}
		if err := cancelClaimTx(tx, c); err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Sink.Emit(events.ClaimCancelled, map[string]any{
		"claim_id":    claim.ID,
		"donation_id": claim.DonationID,
		"receiver_id": claim.ReceiverID,
	})
	return claim, nil
}

// cancelClaimTx moves a claim to cancelled and clears the volunteer.
func cancelClaimTx(tx *gorm.DB, c *models.Claim) error {
	c.Status = models.ClaimStatusCancelled
	c.VolunteerID = nil
	// Save skips nil pointer fields on update, so clear the column explicitly.
	return tx.Model(c).Updates(map[string]any{
		"status":       models.ClaimStatusCancelled,
		"volunteer_id": nil,
	}).Error
}

// AssignVolunteer attaches a registered, available volunteer to an accepted
// claim. Re-assignment while still accepted is permitted.
func (s *ClaimService) AssignVolunteer(claimID, volunteerID string, actor auth.Actor) (*models.Claim, error) {
	if !s.Caps.HasCapability(actor, auth.CapAdmin) {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "admin capability required")
	}

	var claim *models.Claim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, _, err := loadClaim(tx, claimID)
		if err != nil {
			return err
		}
		if c.Status != models.ClaimStatusAccepted {
			return apperrors.New(apperrors.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot assign volunteer to claim in status %s", c.Status))
		}

		var profile models.VolunteerProfile
		if err := tx.Where("user_id = ?", volunteerID).First(&profile).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.ErrCodeNotFound, "volunteer not registered")
			}
			return err
		}
		if !profile.Available {
			return apperrors.New(apperrors.ErrCodeValidationFailed, "volunteer is not available")
		}

		c.VolunteerID = &volunteerID
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Sink.Emit(events.VolunteerAssigned, map[string]any{
		"claim_id":     claim.ID,
		"donation_id":  claim.DonationID,
		"volunteer_id": volunteerID,
	})
	return claim, nil
}

// MarkPickedUp records the volunteer collecting the donation.
func (s *ClaimService) MarkPickedUp(claimID string, actor auth.Actor) (*models.Claim, error) {
	var claim *models.Claim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, _, err := loadClaim(tx, claimID)
		if err != nil {
			return err
		}
		if c.Status != models.ClaimStatusAccepted || c.VolunteerID == nil {
			return apperrors.New(apperrors.ErrCodeInvalidTransition,
				"pickup requires an accepted claim with a volunteer assigned")
		}
		if *c.VolunteerID != actor.ID && !s.Caps.HasCapability(actor, auth.CapAdmin) {
			return apperrors.New(apperrors.ErrCodeUnauthorized, "only the assigned volunteer may mark pickup")
		}

		now := time.Now().UTC()
		c.Status = models.ClaimStatusPickedUp
		c.PickedUpAt = &now
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Sink.Emit(events.DonationPickedUp, map[string]any{
		"claim_id":    claim.ID,
		"donation_id": claim.DonationID,
		"receiver_id": claim.ReceiverID,
	})
	return claim, nil
}

// DeliveryResult is what MarkDelivered hands back to the caller: the final
// claim plus the donor's gamification outcome.
type DeliveryResult struct {
	Claim  *models.Claim      `json:"claim"`
	Reward *FulfillmentReward `json:"reward"`
}

// MarkDelivered finishes the happy path: claim → delivered, parent donation →
// completed, remaining open claims force-cancelled, gamification engine
// invoked, all in one transaction. The donation status re-check happens
// inside the transaction, so a second delivery attempt on an already
// fulfilled donation fails with DONATION_ALREADY_FULFILLED.
func (s *ClaimService) MarkDelivered(claimID string, actor auth.Actor) (*DeliveryResult, error) {
	var (
		claim     *models.Claim
		donation  *models.Donation
		reward    *FulfillmentReward
		cancelled []models.Claim
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, d, err := loadClaim(tx, claimID)
		if err != nil {
			return err
		}
		if c.Status != models.ClaimStatusPickedUp {
			return apperrors.New(apperrors.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot deliver claim in status %s", c.Status))
		}
		if c.VolunteerID != nil && *c.VolunteerID != actor.ID && !s.Caps.HasCapability(actor, auth.CapAdmin) {
			return apperrors.New(apperrors.ErrCodeUnauthorized, "only the assigned volunteer may mark delivery")
		}

		donation, err = completeDonation(tx, d.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		c.Status = models.ClaimStatusDelivered
		c.DeliveredAt = &now
		if err := tx.Save(c).Error; err != nil {
			return err
		}

		// Losing claims are force-cancelled once the donation is fulfilled.
		var others []models.Claim
		if err := tx.Where("donation_id = ? AND id <> ? AND status IN ?",
			d.ID, c.ID, []models.ClaimStatus{models.ClaimStatusPending, models.ClaimStatusAccepted}).
			Find(&others).Error; err != nil {
			return err
		}
		for i := range others {
			if err := cancelClaimTx(tx, &others[i]); err != nil {
				return err
			}
		}
		cancelled = others

		reward, err = s.Gamification.HandleDonationFulfilled(tx, donation.DonorID, donation.ID, now)
		if err != nil {
			return err
		}

		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, lost := range cancelled {
		s.Sink.Emit(events.ClaimCancelled, map[string]any{
			"claim_id":    lost.ID,
			"donation_id": lost.DonationID,
			"receiver_id": lost.ReceiverID,
		})
	}
	// Badge emissions wait until here so a rollback cannot leave phantom
	// notifications in the outbox.
	for _, badge := range reward.BadgesAwarded {
		s.Sink.Emit(events.BadgeAwarded, map[string]any{
			"user_id":  donation.DonorID,
			"badge_id": badge.ID,
			"code":     badge.Code,
		})
	}
	s.Sink.Emit(events.DonationDelivered, map[string]any{
		"claim_id":    claim.ID,
		"donation_id": claim.DonationID,
		"receiver_id": claim.ReceiverID,
	})
	s.Sink.Emit(events.DonationFulfilled, map[string]any{
		"donation_id":  donation.ID,
		"donor_id":     donation.DonorID,
		"delivered_at": claim.DeliveredAt,
	})

	logger.Info("claim delivered",
		zap.String("claim_id", claim.ID),
		zap.String("donation_id", donation.ID),
		zap.Int("claims_cancelled", len(cancelled)))
	return &DeliveryResult{Claim: claim, Reward: reward}, nil
}

// RaiseDispute moves an accepted or picked-up claim into the disputed state
// for manual admin resolution.
func (s *ClaimService) RaiseDispute(claimID string, actor auth.Actor) (*models.Claim, error) {
	var claim *models.Claim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, _, err := loadClaim(tx, claimID)
		if err != nil {
			return err
		}
		if c.Status != models.ClaimStatusAccepted && c.Status != models.ClaimStatusPickedUp {
			return apperrors.New(apperrors.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot dispute claim in status %s", c.Status))
		}
		involved := c.ReceiverID == actor.ID ||
			(c.VolunteerID != nil && *c.VolunteerID == actor.ID) ||
			s.Caps.HasCapability(actor, auth.CapAdmin)
		if !involved {
			return apperrors.New(apperrors.ErrCodeUnauthorized, "only a party to the claim may dispute it")
		}
		c.Status = models.ClaimStatusDisputed
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// ResolveDispute records resolution notes on a disputed claim. The terminal
// outcome stays with admin policy; this only captures the decision.
func (s *ClaimService) ResolveDispute(claimID, notes string, actor auth.Actor) (*models.Claim, error) {
	if !s.Caps.HasCapability(actor, auth.CapAdmin) {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "admin capability required")
	}

	var claim *models.Claim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, _, err := loadClaim(tx, claimID)
		if err != nil {
			return err
		}
		if c.Status != models.ClaimStatusDisputed {
			return apperrors.New(apperrors.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot resolve claim in status %s", c.Status))
		}
		c.ResolutionNotes = notes
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// SetVolunteerAvailability registers or updates a volunteer profile.
func (s *ClaimService) SetVolunteerAvailability(userID string, available bool, zone string) (*models.VolunteerProfile, error) {
	var profile models.VolunteerProfile
	err := s.DB.Where("user_id = ?", userID).First(&profile).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.VolunteerProfile{
			ID:        uuid.NewString(),
			UserID:    userID,
			Available: available,
			Zone:      zone,
		}
		if err := s.DB.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}

	profile.Available = available
	if zone != "" {
		profile.Zone = zone
	}
	if err := s.DB.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByDonation returns all claims on a donation, newest first.
func (s *ClaimService) ListByDonation(donationID string) ([]models.Claim, error) {
	var claims []models.Claim
	err := s.DB.Where("donation_id = ?", donationID).
		Order("claimed_at DESC").
		Find(&claims).Error
	return claims, err
}

// loadClaim fetches a claim plus its parent donation.
func loadClaim(tx *gorm.DB, claimID string) (*models.Claim, *models.Donation, error) {
	var claim models.Claim
	if err := tx.Where("id = ?", claimID).First(&claim).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.New(apperrors.ErrCodeNotFound, "claim not found")
		}
		return nil, nil, err
	}
	var donation models.Donation
	if err := tx.Where("id = ?", claim.DonationID).First(&donation).Error; err != nil {
		return nil, nil, err
	}
	return &claim, &donation, nil
}
