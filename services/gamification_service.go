package services

import (
	"time"

	"foodbridge/logger"
	"foodbridge/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GamificationService reacts to donation fulfillment: points ledger, streak
// tracker and badge evaluator run inside the delivering transaction so the
// reward state can never drift from the lifecycle state.
type GamificationService struct {
	DB      *gorm.DB
	Points  *PointsService
	Streaks *StreakService
	Badges  *BadgeService
}

func NewGamificationService(db *gorm.DB, points *PointsService, streaks *StreakService, badges *BadgeService) *GamificationService {
	return &GamificationService{
		DB:      db,
		Points:  points,
		Streaks: streaks,
		Badges:  badges,
	}
}

// FulfillmentReward summarizes what a single DonationFulfilled event earned.
type FulfillmentReward struct {
	PointsCredited int64              `json:"points_credited"`
	Streak         *models.UserStreak `json:"streak"`
	BadgesAwarded  []models.Badge     `json:"badges_awarded,omitempty"`
}

// HandleDonationFulfilled runs the calculators for one fulfilled donation.
// Must be called with the transaction that delivered the claim.
func (s *GamificationService) HandleDonationFulfilled(tx *gorm.DB, donorID, donationID string, deliveredAt time.Time) (*FulfillmentReward, error) {
	credited, err := s.Points.CreditDonation(tx, donorID)
	if err != nil {
		return nil, err
	}

	streak, err := s.Streaks.ProcessStreak(tx, donorID, deliveredAt)
	if err != nil {
		return nil, err
	}

	awarded, err := s.Badges.CheckAndAssignBadges(tx, donorID)
	if err != nil {
		return nil, err
	}

	logger.Info("donation fulfilled",
		zap.String("donor_id", donorID),
		zap.String("donation_id", donationID),
		zap.Int64("points", credited),
		zap.Int("current_streak", streak.CurrentStreak),
		zap.Int("badges_awarded", len(awarded)))

	return &FulfillmentReward{
		PointsCredited: credited,
		Streak:         streak,
		BadgesAwarded:  awarded,
	}, nil
}

// Summary is the read surface for a user's gamification state.
type Summary struct {
	Points int64              `json:"points"`
	Streak *models.UserStreak `json:"streak"`
	Badges []models.Badge     `json:"badges"`
}

func (s *GamificationService) UserSummary(userID string) (*Summary, error) {
	points, err := s.Points.Total(s.DB, userID)
	if err != nil {
		return nil, err
	}
	streak, err := s.Streaks.Get(s.DB, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.Badges.ListUserBadges(s.DB, userID)
	if err != nil {
		return nil, err
	}
	return &Summary{Points: points, Streak: streak, Badges: badges}, nil
}
