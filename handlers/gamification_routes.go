// handlers/gamification_routes.go
package handlers

import (
	"time"

	"foodbridge/middleware"
	"foodbridge/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGamificationRoutes(app *fiber.App, gamification *services.GamificationService, challenges *services.ChallengeService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/gamification", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		summary, err := gamification.UserSummary(actor.ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	})

	securedGroup.Get("/challenges", func(c *fiber.Ctx) error {
		open, err := challenges.ListOpenChallenges()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(open)
	})

	securedGroup.Post("/challenges/:id/complete", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		completion, err := challenges.CompleteChallenge(actor.ID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(completion)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/challenges", func(c *fiber.Ctx) error {
		var req struct {
			Title        string    `json:"title"`
			Description  string    `json:"description"`
			PointsReward int64     `json:"points_reward"`
			StartDate    time.Time `json:"start_date"`
			EndDate      time.Time `json:"end_date"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		challenge, err := challenges.CreateChallenge(req.Title, req.Description, req.PointsReward, req.StartDate, req.EndDate, actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(challenge)
	})
}
