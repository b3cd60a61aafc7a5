package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
	"github.com/ecosistemala/meetingup-backend/pkg/utils"
)

type SurveyHandler struct {
	surveyService *service.SurveyService
	validator     *utils.Validator
	mw            *middleware.Middleware
}

func NewSurveyHandler(surveyService *service.SurveyService, validator *utils.Validator, mw *middleware.Middleware) *SurveyHandler {
	return &SurveyHandler{
		surveyService: surveyService,
		validator:     validator,
		mw:            mw,
	}
}

func (h *SurveyHandler) List(c *fiber.Ctx) error {
	surveys, err := h.surveyService.All()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"surveys": surveys,
		"alert":   h.mw.TakeFlash(c),
	}, ""))
}

// Create attaches a survey to a meeting. A meeting carries at most one.
func (h *SurveyHandler) Create(c *fiber.Ctx) error {
	var req models.SurveyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SuccessResponse(fiber.Map{
			"field_errors": h.validator.FieldErrors(err),
		}, "Validation failed"))
	}

	survey, err := h.surveyService.Create(req)
	if errors.Is(err, service.ErrSurveyExists) {
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse("La reunión ya tiene una encuesta"))
	}
	if err != nil {
		return serverError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(survey, "Encuesta creada"))
}

func (h *SurveyHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid survey id"))
	}
	if err := h.surveyService.Delete(id); err != nil {
		return serverError(c, err)
	}
	h.mw.Flash(c, "success", "Encuesta eliminada.")
	return c.JSON(models.SuccessResponse(nil, "Encuesta eliminada"))
}

// Responses is the survey detail screen with the aggregate score.
func (h *SurveyHandler) Responses(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid survey id"))
	}
	view, err := h.surveyService.Responses(id)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(view, ""))
}

// SubmitResponse records a score and comment. Open to visitors; a session
// identity is attached when present.
func (h *SurveyHandler) SubmitResponse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid survey id"))
	}
	var req models.SurveyResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SuccessResponse(fiber.Map{
			"field_errors": h.validator.FieldErrors(err),
		}, "Validation failed"))
	}

	var userID *uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = &user.ID
	}
	response, err := h.surveyService.SubmitResponse(id, userID, req)
	if err != nil {
		return serverError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(response, "Respuesta registrada"))
}

// ToggleFeatured flips a testimonial on the public wall.
func (h *SurveyHandler) ToggleFeatured(c *fiber.Ctx) error {
	id, err := paramID(c, "responseID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid response id"))
	}
	response, err := h.surveyService.ToggleResponseFeatured(id)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"featured": response.Featured}, "Testimonio actualizado"))
}
