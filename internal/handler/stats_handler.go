package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
	mw           *middleware.Middleware
}

func NewStatsHandler(statsService *service.StatsService, mw *middleware.Middleware) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		mw:           mw,
	}
}

// Dashboard serves the statistics screen, global or scoped by ?meeting_id.
func (h *StatsHandler) Dashboard(c *fiber.Ctx) error {
	meetingID, ok := queryMeetingID(c, "meeting_id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}

	view, err := h.statsService.Overview(middleware.CurrentUser(c), meetingID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"stats": view,
		"alert": h.mw.TakeFlash(c),
	}, ""))
}

// Export downloads the statistics workbook for the same scope.
func (h *StatsHandler) Export(c *fiber.Ctx) error {
	meetingID, ok := queryMeetingID(c, "meeting_id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid meeting id"))
	}

	buf, filename, err := h.statsService.Export(middleware.CurrentUser(c), meetingID)
	if errors.Is(err, service.ErrHelperGlobalExport) {
		h.mw.Flash(c, "error", "No tienes permiso para exportar las estadísticas generales.")
		return c.Redirect("/panel/stats")
	}
	if err != nil {
		return serverError(c, err)
	}
	return sendWorkbook(c, buf.Bytes(), filename)
}
