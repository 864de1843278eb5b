package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/trulyapp/truly-backend/internal/config"
	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
)

// AdminRequired allows requests carrying the static admin token, or an
// authenticated user whose email or ID is on the configured allowlist.
func AdminRequired(cfg *config.Config) fiber.Handler {
	emails := parseCSV(cfg.AdminEmails)
	ids := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}
		if email := identity.GetEmail(c); email != "" && contains(emails, strings.ToLower(email)) {
			return c.Next()
		}
		if userID, err := identity.GetUserID(c); err == nil && contains(ids, userID.String()) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
