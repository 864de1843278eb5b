package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trulyapp/truly-backend/internal/database"
	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/realms"
)

type HealthHandler struct {
	registry *realms.Registry
}

func NewHealthHandler(registry *realms.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	status := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unreachable"
		status = "degraded"
	}
	return c.JSON(dto.HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         dbStatus,
		RealmCount: h.registry.Count(),
	})
}
