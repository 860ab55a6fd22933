package services

import (
	stderrors "errors"

	"foodbridge/models"
	apperrors "foodbridge/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsService is the points ledger. All mutations go through the caller's
// transaction handle so a crash mid-transition leaves no partial credit.
type PointsService struct {
	Config ConfigProvider
}

func NewPointsService(cfg ConfigProvider) *PointsService {
	return &PointsService{Config: cfg}
}

// Credit adds amount to the user's running total, creating the row on first
// credit.
func (s *PointsService) Credit(tx *gorm.DB, userID string, amount int64) error {
	if amount == 0 {
		return nil
	}

	var up models.UserPoint
	err := tx.Where("user_id = ?", userID).First(&up).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		up = models.UserPoint{
			ID:     uuid.NewString(),
			UserID: userID,
			Points: amount,
		}
		return tx.Create(&up).Error
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "points lookup failed")
	}

	up.Points += amount
	return tx.Save(&up).Error
}

// CreditDonation credits the configured per-donation amount and returns it,
// so the caller can surface "+N points" feedback.
func (s *PointsService) CreditDonation(tx *gorm.DB, userID string) (int64, error) {
	amount := s.Config.GetInt(models.ConfigPointsPerDonation, models.DefaultPointsPerDonation)
	if err := s.Credit(tx, userID, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// Total returns the user's current balance (zero for unknown users).
func (s *PointsService) Total(tx *gorm.DB, userID string) (int64, error) {
	var up models.UserPoint
	err := tx.Where("user_id = ?", userID).First(&up).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return up.Points, nil
}
