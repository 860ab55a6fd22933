package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"foodbridge/auth"
	"foodbridge/events"
	"foodbridge/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// collectorSink records emitted events for assertions.
type collectorSink struct {
	mu       sync.Mutex
	emitted  []events.Type
	payloads []map[string]any
}

func (s *collectorSink) Emit(evt events.Type, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitted = append(s.emitted, evt)
	s.payloads = append(s.payloads, payload)
}

func (s *collectorSink) count(evt events.Type) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.emitted {
		if e == evt {
			n++
		}
	}
	return n
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Donation{},
		&models.Claim{},
		&models.VolunteerProfile{},
		&models.UserPoint{},
		&models.UserStreak{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Challenge{},
		&models.UserChallenge{},
		&models.GamificationConfig{},
		&models.NotificationEvent{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

type testEnv struct {
	db           *gorm.DB
	sink         *collectorSink
	points       *PointsService
	streaks      *StreakService
	badges       *BadgeService
	challenges   *ChallengeService
	gamification *GamificationService
	donations    *DonationService
	claims       *ClaimService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	if err := SeedBadges(db); err != nil {
		t.Fatalf("failed to seed badges: %v", err)
	}

	sink := &collectorSink{}
	cfg := StaticConfigProvider{Values: map[string]int64{}}
	caps := auth.RoleChecker{}

	points := NewPointsService(cfg)
	streaks := NewStreakService(cfg, points)
	badges := NewBadgeService(points)
	gamification := NewGamificationService(db, points, streaks, badges)

	return &testEnv{
		db:           db,
		sink:         sink,
		points:       points,
		streaks:      streaks,
		badges:       badges,
		challenges:   NewChallengeService(db, caps, points, sink),
		gamification: gamification,
		donations:    NewDonationService(db, caps, sink),
		claims:       NewClaimService(db, caps, sink, gamification),
	}
}

var (
	adminActor = auth.Actor{ID: "admin-1", Roles: []string{"admin"}}
)

func donorActor(id string) auth.Actor {
	return auth.Actor{ID: id}
}

// submitApproved creates a donation and moves it through admin approval.
func submitApproved(t *testing.T, env *testEnv, donorID string) *models.Donation {
	t.Helper()

	donation, err := env.donations.Submit(SubmitDonationInput{
		DonorID:       donorID,
		Title:         "Surplus bread",
		Quantity:      5,
		PickupAddress: "12 Baker Street",
		ExpiresAt:     time.Now().UTC().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	approved, err := env.donations.Approve(donation.ID, adminActor)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	return approved
}

// registerVolunteer creates an available volunteer profile.
func registerVolunteer(t *testing.T, env *testEnv, userID string) {
	t.Helper()
	if _, err := env.claims.SetVolunteerAvailability(userID, true, "north"); err != nil {
		t.Fatalf("SetVolunteerAvailability() error = %v", err)
	}
}

// acceptedClaim moves a fresh claim to accepted for the given receiver.
func acceptedClaim(t *testing.T, env *testEnv, donation *models.Donation, receiverID string) *models.Claim {
	t.Helper()
	claim, err := env.claims.CreateClaim(donation.ID, receiverID)
	if err != nil {
		t.Fatalf("CreateClaim() error = %v", err)
	}
	accepted, err := env.claims.ApproveClaim(claim.ID, donorActor(donation.DonorID))
	if err != nil {
		t.Fatalf("ApproveClaim() error = %v", err)
	}
	return accepted
}

func seedChallenge(t *testing.T, env *testEnv, reward int64, start, end time.Time, active bool) *models.Challenge {
	t.Helper()
	challenge := models.Challenge{
		ID:           uuid.NewString(),
		Title:        "Weekend drive",
		PointsReward: reward,
		StartDate:    start,
		EndDate:      end,
		Active:       active,
	}
	if err := env.db.Create(&challenge).Error; err != nil {
		t.Fatalf("failed to seed challenge: %v", err)
	}
	return &challenge
}
