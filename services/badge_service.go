package services

import (
	stderrors "errors"

	"foodbridge/logger"
	"foodbridge/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BadgeService evaluates the badge catalog against a user's current metrics
// and awards anything newly unlocked. Safe to call repeatedly: held badges
// are skipped, never re-awarded, never re-credited. It runs inside the
// caller's transaction and emits nothing itself; the caller announces the
// awarded badges after commit.
type BadgeService struct {
	Points *PointsService
}

func NewBadgeService(points *PointsService) *BadgeService {
	return &BadgeService{Points: points}
}

// userMetrics is the snapshot the rule kinds are evaluated against.
type userMetrics struct {
	TotalDonations int64
	TotalPoints    int64
	CurrentStreak  int64
	LongestStreak  int64
}

func (s *BadgeService) loadMetrics(tx *gorm.DB, userID string) (*userMetrics, error) {
	var m userMetrics

	if err := tx.Model(&models.Donation{}).
		Where("donor_id = ? AND status = ?", userID, models.DonationStatusCompleted).
		Count(&m.TotalDonations).Error; err != nil {
		return nil, err
	}

	points, err := s.Points.Total(tx, userID)
	if err != nil {
		return nil, err
	}
	m.TotalPoints = points

	var streak models.UserStreak
	if err := tx.Where("user_id = ?", userID).First(&streak).Error; err == nil {
		m.CurrentStreak = int64(streak.CurrentStreak)
		m.LongestStreak = int64(streak.LongestStreak)
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &m, nil
}

func (m *userMetrics) value(kind models.BadgeRuleKind) (int64, bool) {
	switch kind {
	case models.RuleTotalDonations:
		return m.TotalDonations, true
	case models.RuleTotalPoints:
		return m.TotalPoints, true
	case models.RuleCurrentStreak:
		return m.CurrentStreak, true
	case models.RuleLongestStreak:
		return m.LongestStreak, true
	}
	return 0, false
}

// CheckAndAssignBadges awards every active badge whose rule the user now
// satisfies and credits its points reward. Returns the newly awarded badges.
func (s *BadgeService) CheckAndAssignBadges(tx *gorm.DB, userID string) ([]models.Badge, error) {
	metrics, err := s.loadMetrics(tx, userID)
	if err != nil {
		return nil, err
	}

	var catalog []models.Badge
	if err := tx.Where("is_active = ?", true).Find(&catalog).Error; err != nil {
		return nil, err
	}

	var awarded []models.Badge
	for _, badge := range catalog {
		metric, known := metrics.value(badge.UnlockRuleType)
		if !known {
			logger.Warn("badge with unknown rule kind skipped",
				zap.String("code", badge.Code),
				zap.String("rule", string(badge.UnlockRuleType)))
			continue
		}
		if metric < badge.UnlockValue {
			continue
		}

		var held int64
		if err := tx.Model(&models.UserBadge{}).
			Where("user_id = ? AND badge_id = ?", userID, badge.ID).
			Count(&held).Error; err != nil {
			return nil, err
		}
		if held > 0 {
			continue
		}

		ub := models.UserBadge{
			ID:      uuid.NewString(),
			UserID:  userID,
			BadgeID: badge.ID,
		}
		if err := tx.Create(&ub).Error; err != nil {
			return nil, err
		}
		if err := s.Points.Credit(tx, userID, badge.PointsReward); err != nil {
			return nil, err
		}

		awarded = append(awarded, badge)
		logger.Info("badge awarded",
			zap.String("user_id", userID),
			zap.String("code", badge.Code))
	}

	return awarded, nil
}

// ListUserBadges returns the user's badges joined with catalog data.
func (s *BadgeService) ListUserBadges(tx *gorm.DB, userID string) ([]models.Badge, error) {
	var badges []models.Badge
	err := tx.Model(&models.Badge{}).
		Joins("INNER JOIN user_badges ub ON ub.badge_id = badges.id").
		Where("ub.user_id = ?", userID).
		Order("ub.awarded_at DESC").
		Find(&badges).Error
	return badges, err
}

// SeedBadges inserts the default catalog, keyed by code (idempotent).
func SeedBadges(db *gorm.DB) error {
	for _, b := range models.DefaultBadges {
		badge := b
		badge.ID = uuid.NewString()
		if err := db.Where("code = ?", badge.Code).FirstOrCreate(&badge).Error; err != nil {
			return err
		}
	}
	return nil
}
