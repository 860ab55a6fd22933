package handlers

import (
	"foodbridge/auth"
	apperrors "foodbridge/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

// actorFromCtx rebuilds the acting user from the gateway-forwarded context
// set by middleware.UserContextMiddleware.
func actorFromCtx(c *fiber.Ctx) auth.Actor {
	actor := auth.Actor{}
	if id, ok := c.Locals("user_id").(string); ok {
		actor.ID = id
	}
	if roles, ok := c.Locals("user_roles").([]string); ok {
		actor.Roles = roles
	}
	return actor
}

// respondError maps domain error codes onto HTTP statuses. Anything without
// a code is an internal failure.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperrors.Code(err) {
	case apperrors.ErrCodeNotFound:
		status = fiber.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		status = fiber.StatusForbidden
	case apperrors.ErrCodeDuplicateClaim,
		apperrors.ErrCodeAlreadyCompleted,
		apperrors.ErrCodeDonationAlreadyFulfilled:
		status = fiber.StatusConflict
	case apperrors.ErrCodeInvalidTransition,
		apperrors.ErrCodeDonationNotClaimable:
		status = fiber.StatusUnprocessableEntity
	case apperrors.ErrCodeValidationFailed:
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
