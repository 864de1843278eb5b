package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/trulyapp/truly-backend/internal/dto"
	"github.com/trulyapp/truly-backend/internal/identity"
	"github.com/trulyapp/truly-backend/internal/models"
	"github.com/trulyapp/truly-backend/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
	subs *services.SubscriptionService
}

func NewAuthHandler(auth *services.AuthService, subs *services.SubscriptionService) *AuthHandler {
	return &AuthHandler{auth: auth, subs: subs}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}
	if len(req.Password) < 8 {
		return badRequest(c, "password must be at least 8 characters")
	}

	user, pair, err := h.auth.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "email already registered",
			})
		}
		slog.Error("register failed", "action", "auth.register", "error", err.Error())
		return serverError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(h.authResponse(user, pair))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, pair, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "invalid email or password",
			})
		}
		slog.Error("login failed", "action", "auth.login", "error", err.Error())
		return serverError(c)
	}

	return c.JSON(h.authResponse(user, pair))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	user, pair, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "invalid or expired refresh token",
		})
	}

	return c.JSON(h.authResponse(user, pair))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}
	if err := h.auth.Logout(req.RefreshToken); err != nil {
		slog.Error("logout failed", "action", "auth.logout", "error", err.Error())
		return serverError(c)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	user, err := h.auth.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "user not found",
		})
	}
	return c.JSON(h.userResponse(user))
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return badRequest(c, "password confirmation is required")
	}
	if err := h.auth.DeleteAccount(userID, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "password does not match",
			})
		}
		slog.Error("account deletion failed", "action", "auth.delete", "user_id", userID.String(), "error", err.Error())
		return serverError(c)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) authResponse(user *models.User, pair *services.TokenPair) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         h.userResponse(user),
	}
}

func (h *AuthHandler) userResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsPremium:   h.subs.IsPremium(user.ID),
	}
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
