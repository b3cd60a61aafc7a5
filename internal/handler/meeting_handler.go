package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
	"github.com/ecosistemala/meetingup-backend/pkg/utils"
)

type MeetingHandler struct {
	meetingService *service.MeetingService
	validator      *utils.Validator
	mw             *middleware.Middleware
}

func NewMeetingHandler(meetingService *service.MeetingService, validator *utils.Validator, mw *middleware.Middleware) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
		validator:      validator,
		mw:             mw,
	}
}

// List is the meeting admin screen, newest first with attendee counts.
func (h *MeetingHandler) List(c *fiber.Ctx) error {
	summaries, err := h.meetingService.Summaries()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"meetings": summaries,
		"alert":    h.mw.TakeFlash(c),
	}, ""))
}

func (h *MeetingHandler) Create(c *fiber.Ctx) error {
	var req models.MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SuccessResponse(fiber.Map{
			"field_errors": h.validator.FieldErrors(err),
		}, "Validation failed"))
	}

	meeting, err := h.meetingService.Create(req)
	if err != nil {
		return serverError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(meeting, "Reunión creada"))
}

func (h *MeetingHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	var req models.MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SuccessResponse(fiber.Map{
			"field_errors": h.validator.FieldErrors(err),
		}, "Validation failed"))
	}

	meeting, err := h.meetingService.Update(id, req)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(meeting, "Reunión actualizada"))
}

func (h *MeetingHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	if err := h.meetingService.Delete(id); err != nil {
		return serverError(c, err)
	}
	h.mw.Flash(c, "success", "Reunión eliminada.")
	return c.JSON(models.SuccessResponse(nil, "Reunión eliminada"))
}

// Interested lists each upcoming meeting with its pre-registered users.
func (h *MeetingHandler) Interested(c *fiber.Ctx) error {
	meetings, err := h.meetingService.UpcomingWithInterested()
	if err != nil {
		return serverError(c, err)
	}

	views := make([]fiber.Map, 0, len(meetings))
	for i := range meetings {
		rows := make([]models.UserRow, 0, len(meetings[i].Interested))
		for j := range meetings[i].Interested {
			rows = append(rows, meetings[i].Interested[j].Row())
		}
		views = append(views, fiber.Map{
			"meeting":    meetings[i],
			"interested": rows,
		})
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"meetings": views}, ""))
}
