package services

import (
	stderrors "errors"
	"time"

	"foodbridge/auth"
	"foodbridge/events"
	"foodbridge/models"
	apperrors "foodbridge/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService records user challenge completions. Completion is a
// user-invoked action, so a duplicate attempt is an error rather than a
// silent no-op.
type ChallengeService struct {
	DB     *gorm.DB
	Caps   auth.Checker
	Points *PointsService
	Sink   events.Sink
}

func NewChallengeService(db *gorm.DB, caps auth.Checker, points *PointsService, sink events.Sink) *ChallengeService {
	return &ChallengeService{DB: db, Caps: caps, Points: points, Sink: sink}
}

// CompleteChallenge marks the challenge done for the user and credits its
// reward. Requires the challenge to be active and inside its window.
func (s *ChallengeService) CompleteChallenge(userID, challengeID string) (*models.UserChallenge, error) {
	var completion *models.UserChallenge
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := tx.Where("id = ?", challengeID).First(&challenge).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.ErrCodeNotFound, "challenge not found")
			}
			return err
		}

		now := time.Now().UTC()
		if !challenge.Active || !challenge.WithinWindow(now) {
			return apperrors.New(apperrors.ErrCodeValidationFailed, "challenge is not open for completion")
		}

		uc := models.UserChallenge{
			ID:          uuid.NewString(),
			UserID:      userID,
			ChallengeID: challengeID,
		}
		if err := tx.Create(&uc).Error; err != nil {
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.New(apperrors.ErrCodeAlreadyCompleted, "challenge already completed")
			}
			return err
		}

		if err := s.Points.Credit(tx, userID, challenge.PointsReward); err != nil {
			return err
		}

		completion = &uc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Sink.Emit(events.ChallengeCompleted, map[string]any{
		"user_id":      userID,
		"challenge_id": challengeID,
	})
	return completion, nil
}

// CreateChallenge is the admin surface for defining a time-boxed goal.
func (s *ChallengeService) CreateChallenge(title, description string, reward int64, start, end time.Time, actor auth.Actor) (*models.Challenge, error) {
	if !s.Caps.HasCapability(actor, auth.CapAdmin) {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "admin capability required")
	}
	if title == "" || end.Before(start) {
		return nil, apperrors.New(apperrors.ErrCodeValidationFailed, "challenge needs a title and a valid window")
	}
	challenge := models.Challenge{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  description,
		PointsReward: reward,
		StartDate:    start,
		EndDate:      end,
		Active:       true,
	}
	if err := s.DB.Create(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ListOpenChallenges returns active challenges currently inside their window.
func (s *ChallengeService) ListOpenChallenges() ([]models.Challenge, error) {
	now := time.Now().UTC()
	var challenges []models.Challenge
	err := s.DB.Where("active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("end_date ASC").
		Find(&challenges).Error
	return challenges, err
}
