// handlers/claim_routes.go
package handlers

import (
	"foodbridge/middleware"
	"foodbridge/services"

	"github.com/gofiber/fiber/v2"
)

func SetupClaimRoutes(app *fiber.App, claimService *services.ClaimService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	// Receiver claims a donation.
	securedGroup.Post("/donations/:id/claims", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		claim, err := claimService.CreateClaim(c.Params("id"), actor.ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(claim)
	})

	securedGroup.Get("/donations/:id/claims", func(c *fiber.Ctx) error {
		claims, err := claimService.ListByDonation(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(claims)
	})

	securedGroup.Post("/claims/:id/approve", func(c *fiber.Ctx) error {
		claim, err := claimService.ApproveClaim(c.Params("id"), actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(claim)
	})

	securedGroup.Post("/claims/:id/cancel", func(c *fiber.Ctx) error {
		claim, err := claimService.CancelClaim(c.Params("id"), actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(claim)
	})

	securedGroup.Post("/claims/:id/pickup", func(c *fiber.Ctx) error {
		claim, err := claimService.MarkPickedUp(c.Params("id"), actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(claim)
	})

	securedGroup.Post("/claims/:id/deliver", func(c *fiber.Ctx) error {
		result, err := claimService.MarkDelivered(c.Params("id"), actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Post("/claims/:id/dispute", func(c *fiber.Ctx) error {
		claim, err := claimService.RaiseDispute(c.Params("id"), actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(claim)
	})

	// Volunteer self-service availability.
	securedGroup.Put("/volunteers/me", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		var req struct {
			Available bool   `json:"available"`
			Zone      string `json:"zone"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		profile, err := claimService.SetVolunteerAvailability(actor.ID, req.Available, req.Zone)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(profile)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/claims/:id/assign", func(c *fiber.Ctx) error {
		var req struct {
			VolunteerID string `json:"volunteer_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.VolunteerID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "volunteer_id required"})
		}
		claim, err := claimService.AssignVolunteer(c.Params("id"), req.VolunteerID, actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(claim)
	})

	adminGroup.Post("/claims/:id/resolve", func(c *fiber.Ctx) error {
		var req struct {
			Notes string `json:"notes"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		claim, err := claimService.ResolveDispute(c.Params("id"), req.Notes, actorFromCtx(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(claim)
	})
}
