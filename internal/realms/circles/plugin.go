package circles

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/realms"
	"github.com/trulyapp/truly-backend/internal/services"
)

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return "circles"
}

func (p *Plugin) Models() []any {
	return []any{&Membership{}, &Message{}, &Reply{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *realms.Deps) {
	hub := NewHub()
	svc := NewService(deps.DB, hub, deps.Moderation)
	h := &handler{svc: svc, hub: hub}

	router.Get("/", h.listCircles)
	router.Post("/:circleID/join", h.join)
	router.Post("/:circleID/leave", h.leave)
	router.Get("/:circleID/messages", h.messages)
	router.Post("/:circleID/messages", h.post)
	router.Post("/messages/:id/reactions", h.react)
	router.Get("/messages/:id/replies", h.replies)
	router.Post("/messages/:id/replies", h.reply)

	// Realtime feed: clients subscribe after joining.
	router.Get("/:circleID/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(func(conn *websocket.Conn) {
		hub.Serve(conn.Params("circleID"), conn)
	}))
}

type handler struct {
	svc *Service
	hub *Hub
}

func (h *handler) listCircles(c *fiber.Ctx) error {
	circles := h.svc.Circles()
	out := make([]fiber.Map, 0, len(circles))
	for _, circle := range circles {
		out = append(out, fiber.Map{
			"id":          circle.ID,
			"name":        circle.Name,
			"description": circle.Description,
			"souls":       h.hub.Subscribers(circle.ID),
		})
	}
	return c.JSON(fiber.Map{"circles": out})
}

func (h *handler) join(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	membership, err := h.svc.Join(userID, c.Params("circleID"))
	if err != nil {
		if errors.Is(err, ErrCircleNotFound) {
			return errJSON(c, fiber.StatusNotFound, "circle not found")
		}
		return serverError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(membership)
}

func (h *handler) leave(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := h.svc.Leave(userID, c.Params("circleID")); err != nil {
		if errors.Is(err, ErrCircleNotFound) {
			return errJSON(c, fiber.StatusNotFound, "circle not found")
		}
		return serverError(c)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *handler) messages(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	messages, err := h.svc.Messages(userID, c.Params("circleID"), c.QueryInt("limit", 50))
	if err != nil {
		if errors.Is(err, ErrCircleNotFound) {
			return errJSON(c, fiber.StatusNotFound, "circle not found")
		}
		return serverError(c)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

func (h *handler) post(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	msg, err := h.svc.Post(userID, c.Params("circleID"), req.Content)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *handler) react(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid message id")
	}
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	msg, err := h.svc.React(userID, messageID, req.Emoji)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(msg)
}

func (h *handler) reply(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid message id")
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.svc.Reply(userID, messageID, req.Content)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

func (h *handler) replies(c *fiber.Ctx) error {
	if _, err := identity.GetUserID(c); err != nil {
		return unauthorized(c)
	}
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid message id")
	}
	replies, err := h.svc.Replies(messageID)
	if err != nil {
		return serverError(c)
	}
	return c.JSON(fiber.Map{"replies": replies})
}

func (h *handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrCircleNotFound), errors.Is(err, ErrMessageNotFound):
		return errJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotMember):
		return errJSON(c, fiber.StatusForbidden, "join the circle first")
	case errors.Is(err, ErrEmptyContent):
		return errJSON(c, fiber.StatusBadRequest, "content is required")
	case errors.Is(err, services.ErrBlockedContent):
		return errJSON(c, fiber.StatusUnprocessableEntity, "message contains blocked language")
	default:
		return serverError(c)
	}
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return errJSON(c, fiber.StatusUnauthorized, "authentication required")
}

func serverError(c *fiber.Ctx) error {
	return errJSON(c, fiber.StatusInternalServerError, "internal server error")
}
