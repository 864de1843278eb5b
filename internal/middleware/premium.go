package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/services"
)

// PremiumRequired gates a route on an active subscription.
func PremiumRequired(subs *services.SubscriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "authentication required",
			})
		}
		if !subs.IsPremium(userID) {
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "premium subscription required",
			})
		}
		return c.Next()
	}
}
