package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/service"
	"github.com/ecosistemala/meetingup-backend/pkg/rut"
	"github.com/ecosistemala/meetingup-backend/pkg/utils"
)

type UserHandler struct {
	userService *service.UserService
	validator   *utils.Validator
	mw          *middleware.Middleware
}

func NewUserHandler(userService *service.UserService, validator *utils.Validator, mw *middleware.Middleware) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
		mw:          mw,
	}
}

// List is the user panel screen: search + category filter + pagination.
func (h *UserHandler) List(c *fiber.Ctx) error {
	query := c.Query("q")
	category := c.Query("category")
	page := c.QueryInt("page", 1)

	rows, pagination, err := h.userService.SearchPage(query, category, page)
	if err != nil {
		return serverError(c, err)
	}
	categories, err := h.userService.Categories()
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(models.SuccessResponse(fiber.Map{
		"users":      rows,
		"pagination": pagination,
		"categories": categories,
		"query":      query,
		"category":   category,
		"alert":      h.mw.TakeFlash(c),
	}, ""))
}

// Search backs the live search box on the panel. It sits on the shared API
// group, so it narrows access to admins and helpers itself; kiosk sessions
// never see the directory.
func (h *UserHandler) Search(c *fiber.Ctx) error {
	if user := middleware.CurrentUser(c); user == nil || (!user.IsAdmin && !user.IsHelper) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "Permiso denegado.",
		})
	}

	rows, pagination, err := h.userService.SearchPage(c.Query("q"), c.Query("category"), c.QueryInt("page", 1))
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"users":      rows,
		"pagination": pagination,
	}, ""))
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req models.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SuccessResponse(fiber.Map{
			"field_errors": h.validator.FieldErrors(err),
		}, "Validation failed"))
	}

	user, err := h.userService.Create(req)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("El email ya está registrado"))
	case errors.Is(err, service.ErrRutTaken):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("El RUT ya está registrado"))
	case errors.Is(err, rut.ErrAgainst), errors.Is(err, rut.ErrFormat), errors.Is(err, rut.ErrEmpty):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("El RUT ingresado no es válido"))
	case err != nil:
		return serverError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(user.Row(), "Usuario creado"))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user id"))
	}
	user, err := h.userService.GetByID(id)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(user.Row(), ""))
}

// Update applies the edit form. Role and visibility fields are only honored
// when the editor is an admin.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user id"))
	}
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SuccessResponse(fiber.Map{
			"field_errors": h.validator.FieldErrors(err),
		}, "Validation failed"))
	}

	editor := middleware.CurrentUser(c)
	user, err := h.userService.Update(editor.IsAdmin, id, req)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(user.Row(), "Usuario actualizado"))
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user id"))
	}

	actor := middleware.CurrentUser(c)
	user, err := h.userService.Delete(actor.ID, id)
	if errors.Is(err, service.ErrSelfDelete) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("No puedes eliminar tu propia cuenta"))
	}
	if err != nil {
		return serverError(c, err)
	}

	h.mw.Flash(c, "success", "Usuario "+user.FullName()+" eliminado.")
	return c.JSON(models.SuccessResponse(nil, "Usuario eliminado"))
}

func (h *UserHandler) ToggleFeatured(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user id"))
	}
	user, err := h.userService.ToggleFeatured(id)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"featured": user.Featured}, "Destacado actualizado"))
}

func (h *UserHandler) HideProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user id"))
	}
	user, err := h.userService.HideProfile(id)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"public_profile": user.PublicProfile}, "Perfil ocultado"))
}

// UploadPhoto stores a member picture from a multipart form.
func (h *UserHandler) UploadPhoto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user id"))
	}
	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("No photo uploaded"))
	}
	src, err := file.Open()
	if err != nil {
		return serverError(c, err)
	}
	defer src.Close()

	if err := h.userService.SetPhoto(id, src); err != nil {
		return serverError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Foto actualizada"))
}

// Export downloads the filtered user list as a spreadsheet.
func (h *UserHandler) Export(c *fiber.Ctx) error {
	buf, filename, err := h.userService.ExportFiltered(c.Query("q"), c.Query("category"))
	if err != nil {
		return serverError(c, err)
	}
	return sendWorkbook(c, buf.Bytes(), filename)
}
