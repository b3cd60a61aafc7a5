package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
)

// RegistrationHandler serves the unauthenticated public surface: landing,
// meeting page and the two-step signup flow.
type RegistrationHandler struct {
	registrationService *service.RegistrationService
	meetingService      *service.MeetingService
	mw                  *middleware.Middleware
}

func NewRegistrationHandler(registrationService *service.RegistrationService, meetingService *service.MeetingService, mw *middleware.Middleware) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		meetingService:      meetingService,
		mw:                  mw,
	}
}

// Landing lists upcoming meetings for visitors.
func (h *RegistrationHandler) Landing(c *fiber.Ctx) error {
	meetings, err := h.meetingService.Upcoming()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"meetings": meetings,
		"alert":    h.mw.TakeFlash(c),
	}, ""))
}

// PublicMeeting is the open meeting page.
func (h *RegistrationHandler) PublicMeeting(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	view, err := h.registrationService.PublicMeeting(id, middleware.CurrentUser(c))
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"meeting":             view.Meeting,
		"registration_closed": view.RegistrationClosed,
		"already_interested":  view.AlreadyInterested,
		"alert":               h.mw.TakeFlash(c),
	}, ""))
}

// SignupPage opens the signup flow at the identify step.
func (h *RegistrationHandler) SignupPage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	meeting, err := h.meetingService.GetByID(id)
	if err != nil {
		return serverError(c, err)
	}
	if err := h.registrationService.EnsureOpen(meeting); err != nil {
		return h.closedRedirect(c, id)
	}

	return c.JSON(models.SuccessResponse(fiber.Map{
		"meeting": meeting,
		"step":    service.StepIdentify,
	}, ""))
}

// Signup advances the flow one step. A sessioned visitor skips the RUT step
// entirely; otherwise the posted step field selects identify or register.
func (h *RegistrationHandler) Signup(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	meeting, err := h.meetingService.GetByID(id)
	if err != nil {
		return serverError(c, err)
	}

	var outcome *service.SignupOutcome
	var flowErr error

	if user := middleware.CurrentUser(c); user != nil {
		outcome, flowErr = h.registrationService.RegisterIdentity(meeting, user)
	} else if c.FormValue("step") == service.StepRegister {
		var req models.RegisterUserRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
		}
		outcome, flowErr = h.registrationService.CompleteRegistration(meeting, req)
	} else {
		outcome, flowErr = h.registrationService.IdentifyByRut(meeting, c.FormValue("national_id"))
	}

	if errors.Is(flowErr, service.ErrRegistrationClosed) {
		return h.closedRedirect(c, id)
	}
	if flowErr != nil {
		return serverError(c, flowErr)
	}

	status := fiber.StatusOK
	if len(outcome.FieldErrors) > 0 {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(models.SuccessResponse(outcome, ""))
}

func (h *RegistrationHandler) closedRedirect(c *fiber.Ctx, meetingID uint) error {
	h.mw.Flash(c, "error", "Las inscripciones para esta reunión están cerradas.")
	return c.Redirect(fmt.Sprintf("/meetings/%d", meetingID))
}
