package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/models"
)

// AdminHandler serves the operations surface: error logs and the report
// review queue.
type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) ListLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := h.db.Order("timestamp DESC").Limit(limit)
	if realm := c.Query("realm"); realm != "" {
		query = query.Where("realm = ?", realm)
	}

	var logs []models.SystemLog
	if err := query.Find(&logs).Error; err != nil {
		return serverError(c)
	}
	return c.JSON(fiber.Map{"logs": logs})
}

func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", "pending")

	var reports []models.Report
	err := h.db.Where("status = ?", status).
		Order("created_at ASC").
		Limit(200).
		Find(&reports).Error
	if err != nil {
		return serverError(c)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

func (h *AdminHandler) ResolveReport(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid report id")
	}
	var req struct {
		Status    string `json:"status"`
		AdminNote string `json:"admin_note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Status != "resolved" && req.Status != "dismissed" {
		return badRequest(c, "status must be resolved or dismissed")
	}

	result := h.db.Model(&models.Report{}).Where("id = ?", id).
		Updates(map[string]any{"status": req.Status, "admin_note": req.AdminNote})
	if result.Error != nil {
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "report not found",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}
