package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	mw          *middleware.Middleware
}

func NewAuthHandler(authService *service.AuthService, mw *middleware.Middleware) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		mw:          mw,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Email o contraseña incorrectos"))
	}
	if err != nil {
		return serverError(c, err)
	}

	if err := h.mw.SignIn(c, user.ID); err != nil {
		return serverError(c, err)
	}

	redirect := "/"
	switch {
	case user.IsKiosk:
		redirect = "/kiosk"
	case user.IsAdmin || user.IsHelper:
		redirect = "/panel"
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"user":     user.Row(),
		"redirect": redirect,
	}, "Login successful"))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.mw.SignOut(c); err != nil {
		return serverError(c, err)
	}
	return c.Redirect("/login")
}

// Dashboard is the panel home: the resolved identity plus any pending notice.
func (h *AuthHandler) Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(models.SuccessResponse(fiber.Map{
		"user":  user.Row(),
		"alert": h.mw.TakeFlash(c),
	}, ""))
}
