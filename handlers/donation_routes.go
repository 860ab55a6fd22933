// handlers/donation_routes.go
package handlers

import (
	"strconv"
	"time"

	"foodbridge/middleware"
	"foodbridge/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDonationRoutes(app *fiber.App, donationService *services.DonationService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	// Donor posts a new donation (starts in pending, awaiting admin review).
	securedGroup.Post("/donations", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)

		var req struct {
			Title         string     `json:"title"`
			Description   string     `json:"description"`
			Quantity      int        `json:"quantity"`
			PickupAddress string     `json:"pickup_address"`
			ExpiresAt     *time.Time `json:"expires_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		in := services.SubmitDonationInput{
			DonorID:       actor.ID,
			Title:         req.Title,
			Description:   req.Description,
			Quantity:      req.Quantity,
			PickupAddress: req.PickupAddress,
		}
		if req.ExpiresAt != nil {
			in.ExpiresAt = *req.ExpiresAt
		}

		donation, err := donationService.Submit(in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(donation)
	})

	// Claimable board for receivers.
	securedGroup.Get("/donations", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		donations, err := donationService.ListClaimable(limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(donations)
	})

	securedGroup.Get("/donations/mine", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		donations, err := donationService.ListByDonor(actor.ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(donations)
	})

	securedGroup.Get("/donations/:id", func(c *fiber.Ctx) error {
		donation, err := donationService.Get(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(donation)
	})

	securedGroup.Post("/donations/:id/photo", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		file, err := c.FormFile("photo")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file required"})
		}
		donation, err := donationService.AttachPhoto(c.Params("id"), actor, file)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(donation)
	})

	// Admin review endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/donations/:id/approve", func(c *fiber.Ctx) error {
		donation, err := donationService.Approve(c.Params("id"), actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(donation)
	})

	adminGroup.Post("/donations/:id/reject", func(c *fiber.Ctx) error {
		donation, err := donationService.Reject(c.Params("id"), actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(donation)
	})
}
