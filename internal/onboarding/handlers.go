package onboarding

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trulyapp/truly-backend/internal/config"
	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/services"
)

// Handler exposes the flow over HTTP. Clients create a flow, poll its
// state while scene scripts run server-side, and push the events the
// flow reacts to (auth changes, answers, acknowledge).
type Handler struct {
	manager *Manager
	auth    *services.AuthService
	store   CompletionStore
	cfg     *config.Config
}

func NewHandler(manager *Manager, auth *services.AuthService, store CompletionStore, cfg *config.Config) *Handler {
	return &Handler{manager: manager, auth: auth, store: store, cfg: cfg}
}

// RegisterRoutes mounts the flow endpoints. The group carries optional
// auth: poetry and the login gate are reachable anonymously.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/badges", h.listBadges)
	router.Get("/record", h.getRecord)
	router.Post("/flow", h.createFlow)
	router.Get("/flow/:id", h.getFlow)
	router.Post("/flow/:id/session", h.syncSession)
	router.Post("/flow/:id/intent", h.markIntent)
	router.Post("/flow/:id/judge", h.judgeLogin)
	router.Post("/flow/:id/answer", h.submitAnswer)
	router.Post("/flow/:id/acknowledge", h.acknowledge)
	router.Delete("/flow/:id", h.teardown)
}

func (h *Handler) listBadges(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"badges": Badges()})
}

func (h *Handler) getRecord(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	}
	record, err := h.store.Get(userID)
	if errors.Is(err, ErrRecordNotFound) {
		return c.JSON(fiber.Map{"completed": false})
	}
	if err != nil {
		slog.Error("completion record read failed",
			"action", "onboarding.record_read",
			"user_id", userID.String(),
			"error", err.Error())
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
	resp := fiber.Map{"completed": record.Completed, "badge_id": record.BadgeID}
	if badge, ok := BadgeByID(record.BadgeID); ok {
		resp["badge"] = badge
	}
	return c.JSON(resp)
}

func (h *Handler) createFlow(c *fiber.Ctx) error {
	flow := h.manager.Create(h.sessionFromCtx(c))
	return c.Status(fiber.StatusCreated).JSON(flow.State())
}

func (h *Handler) getFlow(c *fiber.Ctx) error {
	flow, err := h.flowFromParam(c)
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, "flow not found")
	}
	return c.JSON(flow.State())
}

// syncSession pushes the client's current auth state into the flow:
// called after login, signup, or logout through the regular auth routes.
func (h *Handler) syncSession(c *fiber.Ctx) error {
	flow, err := h.flowFromParam(c)
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, "flow not found")
	}
	flow.UpdateSession(h.sessionFromCtx(c))
	return c.JSON(flow.State())
}

func (h *Handler) markIntent(c *fiber.Ctx) error {
	flow, err := h.flowFromParam(c)
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, "flow not found")
	}
	flow.MarkDiscoveryIntent()
	return c.JSON(flow.State())
}

// judgeLogin runs the demo identity through the normal login path with
// the judge flag set, so discovery always replays. A failed attempt
// silently re-offers the gate.
func (h *Handler) judgeLogin(c *fiber.Ctx) error {
	flow, err := h.flowFromParam(c)
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, "flow not found")
	}

	flow.MarkJudgeFlow()
	user, pair, err := h.auth.Login(h.cfg.DemoEmail, h.cfg.DemoPassword)
	if err != nil {
		slog.Error("demo login failed",
			"action", "onboarding.judge_login",
			"error", err.Error())
		flow.AbortJudgeFlow()
		return c.JSON(flow.State())
	}

	flow.UpdateSession(Session{
		UserID:        user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Authenticated: true,
	})
	return c.JSON(fiber.Map{
		"state":         flow.State(),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *Handler) submitAnswer(c *fiber.Ctx) error {
	flow, err := h.flowFromParam(c)
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, "flow not found")
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	switch err := flow.SubmitAnswer(req.Text); {
	case err == nil:
		return c.JSON(fiber.Map{"accepted": true, "state": flow.State()})
	case errors.Is(err, ErrEmptyAnswer), errors.Is(err, ErrNotReady):
		// Silent no-op: state is unchanged.
		return c.JSON(fiber.Map{"accepted": false, "state": flow.State()})
	case errors.Is(err, ErrWrongScene):
		return errJSON(c, fiber.StatusConflict, "not in discovery")
	default:
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) acknowledge(c *fiber.Ctx) error {
	flow, err := h.flowFromParam(c)
	if err != nil {
		return errJSON(c, fiber.StatusNotFound, "flow not found")
	}

	badge, err := flow.Acknowledge()
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"badge": badge, "state": flow.State()})
	case errors.Is(err, ErrWrongScene), errors.Is(err, ErrNoBadge):
		return errJSON(c, fiber.StatusConflict, "no badge to acknowledge")
	case errors.Is(err, ErrNotSignedIn):
		return errJSON(c, fiber.StatusUnauthorized, "authentication required")
	default:
		return errJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) teardown(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "invalid flow id")
	}
	h.manager.Remove(id)
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) flowFromParam(c *fiber.Ctx) (*Flow, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, ErrFlowNotFound
	}
	return h.manager.Get(id)
}

// sessionFromCtx builds a session snapshot from the optional auth token.
func (h *Handler) sessionFromCtx(c *fiber.Ctx) Session {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return Session{}
	}
	s := Session{UserID: userID, Email: identity.GetEmail(c), Authenticated: true}
	if user, err := h.auth.GetUser(userID); err == nil {
		s.DisplayName = user.DisplayName
	}
	return s
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
