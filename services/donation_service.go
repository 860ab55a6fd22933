package services

import (
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"foodbridge/auth"
	"foodbridge/events"
	"foodbridge/logger"
	"foodbridge/models"
	apperrors "foodbridge/pkg/errors"
	"foodbridge/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DonationService owns the donation lifecycle: pending → {approved, rejected};
// approved → completed (via delivery only). rejected and completed are terminal.
type DonationService struct {
	DB   *gorm.DB
	Caps auth.Checker
	Sink events.Sink
}

func NewDonationService(db *gorm.DB, caps auth.Checker, sink events.Sink) *DonationService {
	return &DonationService{DB: db, Caps: caps, Sink: sink}
}

type SubmitDonationInput struct {
	DonorID       string
	Title         string
	Description   string
	Quantity      int
	PickupAddress string
	ExpiresAt     time.Time
}

// Submit creates a donation in pending state.
func (s *DonationService) Submit(in SubmitDonationInput) (*models.Donation, error) {
	if in.Quantity < 1 {
		return nil, apperrors.New(apperrors.ErrCodeValidationFailed, "quantity must be at least 1")
	}
	if strings.TrimSpace(in.PickupAddress) == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidationFailed, "pickup address is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidationFailed, "title is required")
	}
	if in.ExpiresAt.IsZero() {
		in.ExpiresAt = time.Now().UTC().Add(72 * time.Hour)
	}

	donation := models.Donation{
		ID:            uuid.NewString(),
		DonorID:       in.DonorID,
		Title:         in.Title,
		Slug:          slug.Make(in.Title),
		Description:   in.Description,
		Quantity:      in.Quantity,
		PickupAddress: in.PickupAddress,
		Status:        models.DonationStatusPending,
		ExpiresAt:     in.ExpiresAt,
	}
	if err := s.DB.Create(&donation).Error; err != nil {
		return nil, err
	}

	logger.Info("donation submitted",
		zap.String("donation_id", donation.ID),
		zap.String("donor_id", donation.DonorID))
	return &donation, nil
}

// Approve moves a pending donation to approved. Admin only.
// Emits DonationApproved so the notifier can alert prospective receivers.
func (s *DonationService) Approve(donationID string, actor auth.Actor) (*models.Donation, error) {
	donation, err := s.review(donationID, actor, models.DonationStatusApproved)
	if err != nil {
		return nil, err
	}

	s.Sink.Emit(events.DonationApproved, map[string]any{
		"donation_id": donation.ID,
		"donor_id":    donation.DonorID,
	})
	return donation, nil
}

// Reject moves a pending donation to rejected. The donation stays visible but
// is never claimable.
func (s *DonationService) Reject(donationID string, actor auth.Actor) (*models.Donation, error) {
	return s.review(donationID, actor, models.DonationStatusRejected)
}

func (s *DonationService) review(donationID string, actor auth.Actor, target models.DonationStatus) (*models.Donation, error) {
	if !s.Caps.HasCapability(actor, auth.CapAdmin) {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "admin capability required")
	}

	var donation models.Donation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", donationID).First(&donation).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.ErrCodeNotFound, "donation not found")
			}
			return err
		}
		if donation.Status != models.DonationStatusPending {
			return apperrors.New(apperrors.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot move donation from %s to %s", donation.Status, target))
		}
		donation.Status = target
		return tx.Save(&donation).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("donation reviewed",
		zap.String("donation_id", donation.ID),
		zap.String("status", string(donation.Status)),
		zap.String("actor", actor.ID))
	return &donation, nil
}

// completeDonation is system-invoked only, from the claim coordinator when a
// claim reaches delivered. The status re-check runs inside the caller's
// transaction so two racing deliveries cannot both complete the donation.
func completeDonation(tx *gorm.DB, donationID string) (*models.Donation, error) {
	var donation models.Donation
	if err := tx.Where("id = ?", donationID).First(&donation).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "donation not found")
		}
		return nil, err
	}

	switch donation.Status {
	case models.DonationStatusApproved:
		// fallthrough to completion
	case models.DonationStatusCompleted:
		return nil, apperrors.New(apperrors.ErrCodeDonationAlreadyFulfilled, "donation already fulfilled by another claim")
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidTransition,
			fmt.Sprintf("cannot complete donation in status %s", donation.Status))
	}

	donation.Status = models.DonationStatusCompleted
	if err := tx.Save(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// Get loads one donation.
func (s *DonationService) Get(donationID string) (*models.Donation, error) {
	var donation models.Donation
	if err := s.DB.Where("id = ?", donationID).First(&donation).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "donation not found")
		}
		return nil, err
	}
	return &donation, nil
}

// ListClaimable returns approved, unexpired donations, newest first.
func (s *DonationService) ListClaimable(limit int) ([]models.Donation, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var donations []models.Donation
	err := s.DB.Where("status = ? AND expires_at > ?",
		models.DonationStatusApproved, time.Now().UTC()).
		Order("created_at DESC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}

// ListByDonor returns the donor's own donations, any status.
func (s *DonationService) ListByDonor(donorID string) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.DB.Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&donations).Error
	return donations, err
}

// AttachPhoto stores a donation photo and records its URL. Only the owning
// donor may attach.
func (s *DonationService) AttachPhoto(donationID string, actor auth.Actor, file *multipart.FileHeader) (*models.Donation, error) {
	donation, err := s.Get(donationID)
	if err != nil {
		return nil, err
	}
	if donation.DonorID != actor.ID {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "only the owning donor may attach a photo")
	}

	url, err := utils.StoreDonationPhoto(donationID, file)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "photo upload failed")
	}

	donation.PhotoURL = url
	if err := s.DB.Save(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}
