package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/trulyapp/truly-backend/internal/config"
	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/services"
)

type WebhookHandler struct {
	subs *services.SubscriptionService
	cfg  *config.Config
}

func NewWebhookHandler(subs *services.SubscriptionService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{subs: subs, cfg: cfg}
}

// RevenueCat receives subscription lifecycle events. The shared secret is
// checked against the Authorization header as configured in the RevenueCat
// dashboard.
func (h *WebhookHandler) RevenueCat(c *fiber.Ctx) error {
	if h.cfg.WebhookAuth == "" || c.Get("Authorization") != h.cfg.WebhookAuth {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "unauthorized",
		})
	}

	var event dto.RevenueCatEvent
	if err := c.BodyParser(&event); err != nil {
		return badRequest(c, "invalid webhook payload")
	}

	if err := h.subs.ApplyWebhook(&event); err != nil {
		slog.Error("webhook processing failed",
			"action", "webhook.revenuecat",
			"type", event.Event.Type,
			"error", err.Error())
		return serverError(c)
	}

	return c.JSON(fiber.Map{"received": true})
}
