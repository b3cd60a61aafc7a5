package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
)

type RaffleHandler struct {
	raffleService *service.RaffleService
}

func NewRaffleHandler(raffleService *service.RaffleService) *RaffleHandler {
	return &RaffleHandler{raffleService: raffleService}
}

// Participants feeds the prize wheel: every non-staff member for
// reunion_id=todos, otherwise one meeting's attendees. Already shuffled.
// Admin only, even among privileged API callers.
func (h *RaffleHandler) Participants(c *fiber.Ctx) error {
	if user := middleware.CurrentUser(c); user == nil || !user.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "Permiso denegado.",
		})
	}

	scope := c.Query("reunion_id", "todos")

	if scope == "todos" {
		candidates, err := h.raffleService.AllMembers()
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(models.SuccessResponse(fiber.Map{"participants": candidates}, ""))
	}

	meetingID, err := strconv.ParseUint(scope, 10, 32)
	if err != nil || meetingID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid reunion_id"))
	}
	candidates, err := h.raffleService.MeetingAttendees(uint(meetingID))
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"participants": candidates}, ""))
}
