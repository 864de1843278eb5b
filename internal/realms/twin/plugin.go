package twin

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/realms"
)

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "twin"
}

func (p *Plugin) Models() []any {
	return []any{&Message{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	svc := NewService(deps.DB, deps.AI)
	h := &handler{svc: svc}

	router.Get("/messages", h.history)
	router.Post("/messages", h.send)
	router.Post("/future-self", h.futureSelf)
	router.Delete("/messages", h.clear)
}

type handler struct {
	svc *Service
}

func (h *handler) send(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	reply, err := h.svc.Send(c.UserContext(), userID, req.Text)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			return badRequest(c, "text is required")
		}
		return serverError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

func (h *handler) futureSelf(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	reply, err := h.svc.FutureSelf(c.UserContext(), userID, req.Text)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			return badRequest(c, "text is required")
		}
		return serverError(c)
	}
	return c.JSON(fiber.Map{"message": reply})
}

func (h *handler) history(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	messages, err := h.svc.History(userID, c.QueryInt("limit", 50))
	if err != nil {
		return serverError(c)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

func (h *handler) clear(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := h.svc.Clear(userID); err != nil {
		return serverError(c)
	}
	return c.JSON(fiber.Map{"success": true})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "authentication required"})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "internal server error"})
}
