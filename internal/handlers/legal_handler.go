package handlers

import "github.com/gofiber/fiber/v2"

// LegalHandler serves the static policy pages app-store review requires.
type LegalHandler struct{}

func NewLegalHandler() *LegalHandler {
	return &LegalHandler{}
}

func (h *LegalHandler) Privacy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   "Privacy Policy",
		"updated": "2026-08-01",
		"body": "Truly stores your email, your reflections, and the badge assigned " +
			"during discovery. Reflections are private to your account unless you " +
			"share them into a circle. We never sell personal data. Account deletion " +
			"removes all stored content within 30 days.",
	})
}

func (h *LegalHandler) Terms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   "Terms of Service",
		"updated": "2026-08-01",
		"body": "Truly is a space for gentle reflection, not a medical service. " +
			"Content shared into circles must be kind. Accounts posting abusive " +
			"content may be suspended after review.",
	})
}
