package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
)

type AttendanceHandler struct {
	attendanceService *service.AttendanceService
	meetingService    *service.MeetingService
	mw                *middleware.Middleware
}

func NewAttendanceHandler(attendanceService *service.AttendanceService, meetingService *service.MeetingService, mw *middleware.Middleware) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		meetingService:    meetingService,
		mw:                mw,
	}
}

// Control is the attendance entry screen: every meeting newest first.
func (h *AttendanceHandler) Control(c *fiber.Ctx) error {
	summaries, err := h.meetingService.Summaries()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"meetings": summaries,
		"alert":    h.mw.TakeFlash(c),
	}, ""))
}

// Roster is the manual registration screen: who is in, who can be added.
func (h *AttendanceHandler) Roster(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}

	meeting, attendees, nonAttendees, err := h.attendanceService.RosterData(id)
	if err != nil {
		return serverError(c, err)
	}

	attendeeRows := make([]models.UserRow, 0, len(attendees))
	for i := range attendees {
		attendeeRows = append(attendeeRows, attendees[i].Row())
	}
	candidateRows := make([]models.UserRow, 0, len(nonAttendees))
	for i := range nonAttendees {
		candidateRows = append(candidateRows, nonAttendees[i].Row())
	}

	return c.JSON(models.SuccessResponse(fiber.Map{
		"meeting":    meeting,
		"attendees":  attendeeRows,
		"candidates": candidateRows,
		"print_user": c.Query("print_user"),
		"alert":      h.mw.TakeFlash(c),
	}, ""))
}

// ManualAdd checks a user in from the panel. Redirects back to the roster,
// carrying a print_user marker when the meeting auto-prints badges.
func (h *AttendanceHandler) ManualAdd(c *fiber.Ctx) error {
	meetingID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	userID := c.FormValue("user_id")
	uid, err := paramUserID(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user id"))
	}

	rosterURL := fmt.Sprintf("/panel/meetings/%d/roster", meetingID)

	result, err := h.attendanceService.CheckIn(meetingID, uid)
	if service.IsDuplicateAttendee(err) {
		h.mw.Flash(c, "warning", "El usuario ya estaba registrado como asistente.")
		return c.Redirect(rosterURL)
	}
	if err != nil {
		return serverError(c, err)
	}

	h.mw.Flash(c, "success", fmt.Sprintf("%s registrado como asistente.", result.User.FullName()))
	if result.PrintBadge {
		return c.Redirect(fmt.Sprintf("%s?print_user=%d", rosterURL, uid))
	}
	return c.Redirect(rosterURL)
}

// Remove undoes a check-in from the panel. Removing a non-attendee is a
// silent no-op.
func (h *AttendanceHandler) Remove(c *fiber.Ctx) error {
	meetingID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	userID, err := paramID(c, "userID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user id"))
	}

	if err := h.attendanceService.CheckOut(meetingID, userID); err != nil {
		return serverError(c, err)
	}
	h.mw.Flash(c, "success", "Asistente eliminado de la reunión.")
	return c.Redirect(fmt.Sprintf("/panel/meetings/%d/roster", meetingID))
}

// Attendees is the searchable, paginated attendee list of one meeting.
func (h *AttendanceHandler) Attendees(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}

	meeting, err := h.meetingService.GetByID(id)
	if err != nil {
		return serverError(c, err)
	}
	query := c.Query("q")
	rows, pagination, err := h.attendanceService.AttendeePage(id, query, c.QueryInt("page", 1))
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(models.SuccessResponse(fiber.Map{
		"meeting":    meeting,
		"attendees":  rows,
		"pagination": pagination,
		"query":      query,
	}, ""))
}

// ExportAttendees downloads the (filtered) attendee list as a spreadsheet.
func (h *AttendanceHandler) ExportAttendees(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}
	buf, filename, err := h.meetingService.ExportAttendees(id, c.Query("q"))
	if err != nil {
		return serverError(c, err)
	}
	return sendWorkbook(c, buf.Bytes(), filename)
}

// Scan is the QR check-in API used by panel and kiosk scanners. Registered
// for all methods so non-POST gets an in-contract 405.
func (h *AttendanceHandler) Scan(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"status":  "error",
			"message": "Método no permitido",
		})
	}

	meetingID, err := paramID(c, "id")
	if err != nil {
		return scanError(c, fiber.StatusBadRequest, "Reunión inválida")
	}
	userID, err := paramID(c, "userID")
	if err != nil {
		return scanError(c, fiber.StatusBadRequest, "Usuario inválido")
	}

	result, err := h.attendanceService.CheckIn(meetingID, userID)
	if service.IsDuplicateAttendee(err) {
		return scanError(c, fiber.StatusConflict, "El usuario ya está registrado como asistente")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scanError(c, fiber.StatusNotFound, "Usuario o reunión no encontrado")
	}
	if err != nil {
		return scanError(c, fiber.StatusInternalServerError, "Error interno del servidor")
	}

	payload := fiber.Map{
		"status":   "ok",
		"message":  fmt.Sprintf("%s registrado exitosamente", result.User.FullName()),
		"attendee": result.User.Attendee(),
	}
	if result.PrintBadge {
		payload["print_url"] = fmt.Sprintf("/panel/users/%d/badge", userID)
	}
	return c.JSON(payload)
}

func scanError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

func paramUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id: %q", raw)
	}
	return uint(id), nil
}
