package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodbridge/auth"
	"foodbridge/events"
	"foodbridge/handlers"
	"foodbridge/logger"
	"foodbridge/middleware"
	"foodbridge/models"
	"foodbridge/services"
	"foodbridge/utils"
	"foodbridge/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // donation photos
	})

	// All traffic must come through the gateway.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

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
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedBadges(db); err != nil {
		log.Fatal("failed to seed badge catalog:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize object storage:", err)
	}
	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	sink := events.NewOutboxSink(db)
	caps := auth.RoleChecker{}
	configProvider := services.NewDBConfigProvider(db)

	pointsService := services.NewPointsService(configProvider)
	streakService := services.NewStreakService(configProvider, pointsService)
	badgeService := services.NewBadgeService(pointsService)
	gamificationService := services.NewGamificationService(db, pointsService, streakService, badgeService)
	challengeService := services.NewChallengeService(db, caps, pointsService, sink)

	donationService := services.NewDonationService(db, caps, sink)
	claimService := services.NewClaimService(db, caps, sink, gamificationService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := workers.NewNotificationDispatcher(db, workers.LogNotifier{})
	go workers.PollNotifications(ctx, dispatcher, 10*time.Second)

	claimService.StartExpirySweeper()

	handlers.SetupDonationRoutes(app, donationService)
	handlers.SetupClaimRoutes(app, claimService)
	handlers.SetupGamificationRoutes(app, gamificationService, challengeService)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Println("Notification dispatcher running (every 10s)")
	log.Println("Claim expiry sweeper running (hourly)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
