package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/services"
)

type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

func (h *ModerationHandler) Report(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	report, err := h.moderation.Report(userID, req.ContentType, req.ContentID, req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrEmptyReason) {
			return badRequest(c, "reason is required")
		}
		slog.Error("report failed", "action", "moderation.report", "error", err.Error())
		return serverError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ReportResponse{
		ID:        report.ID,
		Status:    report.Status,
		CreatedAt: report.CreatedAt.Format(time.RFC3339),
	})
}

func (h *ModerationHandler) Block(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.BlockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if _, err := h.moderation.Block(userID, req.BlockedUserID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfBlock):
			return badRequest(c, "cannot block yourself")
		case errors.Is(err, services.ErrAlreadyBlocked):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "user already blocked",
			})
		default:
			slog.Error("block failed", "action", "moderation.block", "error", err.Error())
			return serverError(c)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

func (h *ModerationHandler) Unblock(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.BlockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.moderation.Unblock(userID, req.BlockedUserID); err != nil {
		slog.Error("unblock failed", "action", "moderation.unblock", "error", err.Error())
		return serverError(c)
	}
	return c.JSON(fiber.Map{"success": true})
}
