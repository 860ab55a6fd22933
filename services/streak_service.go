package services

import (
	stderrors "errors"
	"time"

	"foodbridge/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StreakService maintains the per-donor daily and monthly streak counters.
// Processing is keyed on calendar days, so repeated events on the same day
// (or replays of older days) are safe no-ops.
type StreakService struct {
	Config ConfigProvider
	Points *PointsService
}

func NewStreakService(cfg ConfigProvider, points *PointsService) *StreakService {
	return &StreakService{Config: cfg, Points: points}
}

// dateOnly truncates to the calendar day in UTC.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ProcessStreak applies one qualifying action on actionDate to the user's
// streak row, creating it if absent. Returns the updated row.
func (s *StreakService) ProcessStreak(tx *gorm.DB, userID string, actionDate time.Time) (*models.UserStreak, error) {
	day := dateOnly(actionDate)

	var streak models.UserStreak
	err := tx.Where("user_id = ?", userID).First(&streak).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.UserStreak{
			ID:     uuid.NewString(),
			UserID: userID,
		}
		if err := tx.Create(&streak).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if streak.LastActionDate != nil {
		last := dateOnly(*streak.LastActionDate)
		if !day.After(last) {
			// Same day already counted, or a replay of an older event.
			return &streak, nil
		}
		if day.Sub(last) == 24*time.Hour {
			streak.CurrentStreak++
		} else {
			streak.CurrentStreak = 1
		}
	} else {
		streak.CurrentStreak = 1
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}

	if streak.MonthlyStreakMonth == monthKey(day) {
		streak.MonthlyStreak++
	} else {
		streak.MonthlyStreakMonth = monthKey(day)
		streak.MonthlyStreak = 1
	}

	streak.LastActionDate = &day

	threshold := s.Config.GetInt(models.ConfigStreakThreshold, models.DefaultStreakThreshold)
	if int64(streak.CurrentStreak) == threshold {
		// The increment above fires exactly once per crossing: same-day and
		// older-day replays bail out before reaching here.
		bonus := s.Config.GetInt(models.ConfigStreakBonusPoints, models.DefaultStreakBonusPoints)
		if err := s.Points.Credit(tx, userID, bonus); err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		streak.LastAwardedAt = &now
	}

	if err := tx.Save(&streak).Error; err != nil {
		return nil, err
	}
	return &streak, nil
}

// Get returns the user's streak row, or a zeroed row if none exists yet.
func (s *StreakService) Get(tx *gorm.DB, userID string) (*models.UserStreak, error) {
	var streak models.UserStreak
	err := tx.Where("user_id = ?", userID).First(&streak).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserStreak{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &streak, nil
}
