package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
)

// KioskHandler drives the unattended scan terminals.
type KioskHandler struct {
	meetingService *service.MeetingService
	authService    *service.AuthService
	mw             *middleware.Middleware
}

func NewKioskHandler(meetingService *service.MeetingService, authService *service.AuthService, mw *middleware.Middleware) *KioskHandler {
	return &KioskHandler{
		meetingService: meetingService,
		authService:    authService,
		mw:             mw,
	}
}

// Meetings is the terminal's meeting picker, upcoming only.
func (h *KioskHandler) Meetings(c *fiber.Ctx) error {
	meetings, err := h.meetingService.Upcoming()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"meetings": meetings,
		"alert":    h.mw.TakeFlash(c),
	}, ""))
}

// Scanner is the full-screen scan view for one meeting.
func (h *KioskHandler) Scanner(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	meeting, err := h.meetingService.GetByID(id)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"meeting": meeting}, ""))
}

// VerifyExit unlocks the terminal with the kiosk account's own password.
// Registered for all methods so non-POST gets an in-contract 405.
func (h *KioskHandler) VerifyExit(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"status":  "error",
			"message": "Método no permitido",
		})
	}

	var req models.KioskExitRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Solicitud inválida",
		})
	}

	user := middleware.CurrentUser(c)
	err := h.authService.VerifyKioskExit(user.ID, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Contraseña incorrecta",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error interno del servidor",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
