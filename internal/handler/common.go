package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/pkg/excel"
)

func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return uint(id), nil
}

// queryMeetingID reads an optional ?meeting_id filter. nil means no selection.
func queryMeetingID(c *fiber.Ctx, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// serverError maps a repository error to 404 or 500.
func serverError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Recurso no encontrado"))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Error interno del servidor"))
}

// sendWorkbook streams a generated spreadsheet as a download.
func sendWorkbook(c *fiber.Ctx, data []byte, filename string) error {
	c.Set(fiber.HeaderContentType, excel.MIMEType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
