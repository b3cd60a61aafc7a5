package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
	"github.com/ecosistemala/meetingup-backend/pkg/utils"
)

type TicketHandler struct {
	ticketService *service.TicketService
	validator     *utils.Validator
	mw            *middleware.Middleware
}

func NewTicketHandler(ticketService *service.TicketService, validator *utils.Validator, mw *middleware.Middleware) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		validator:     validator,
		mw:            mw,
	}
}

func ticketView(t *models.SupportTicket) fiber.Map {
	return fiber.Map{
		"id":         t.ID,
		"subject":    t.Subject,
		"message":    t.Message,
		"status":     t.Status,
		"user":       t.User.FullName(),
		"created_at": t.CreatedAt,
	}
}

func (h *TicketHandler) List(c *fiber.Ctx) error {
	tickets, err := h.ticketService.All()
	if err != nil {
		return serverError(c, err)
	}
	views := make([]fiber.Map, 0, len(tickets))
	for i := range tickets {
		views = append(views, ticketView(&tickets[i]))
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"tickets": views,
		"alert":   h.mw.TakeFlash(c),
	}, ""))
}

// Detail is the ticket thread: the original message plus replies in order.
func (h *TicketHandler) Detail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid ticket id"))
	}
	ticket, err := h.ticketService.GetByID(id)
	if err != nil {
		return serverError(c, err)
	}

	replies := make([]fiber.Map, 0, len(ticket.Replies))
	for i := range ticket.Replies {
		r := &ticket.Replies[i]
		replies = append(replies, fiber.Map{
			"id":         r.ID,
			"author":     r.User.FullName(),
			"message":    r.Message,
			"created_at": r.CreatedAt,
		})
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"ticket":  ticketView(ticket),
		"replies": replies,
	}, ""))
}

func (h *TicketHandler) Submit(c *fiber.Ctx) error {
	var req struct {
		Subject string `json:"subject" form:"subject" validate:"required,max=200"`
		Message string `json:"message" form:"message" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SuccessResponse(fiber.Map{
			"field_errors": h.validator.FieldErrors(err),
		}, "Validation failed"))
	}

	user := middleware.CurrentUser(c)
	ticket, err := h.ticketService.Submit(user.ID, req.Subject, req.Message)
	if err != nil {
		return serverError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(ticket, "Ticket creado"))
}

func (h *TicketHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid ticket id"))
	}
	var req models.TicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Estado de ticket inválido"))
	}

	ticket, err := h.ticketService.UpdateStatus(id, req.Status)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(ticketView(ticket), "Estado actualizado"))
}

// Reply posts a staff answer attributed to the session identity.
func (h *TicketHandler) Reply(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid ticket id"))
	}
	var req models.TicketReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("El mensaje no puede estar vacío"))
	}

	author := middleware.CurrentUser(c)
	reply, err := h.ticketService.Reply(id, author.ID, req.Message)
	if err != nil {
		return serverError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(reply, "Respuesta enviada"))
}
