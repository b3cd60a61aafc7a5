package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
)

// sessionUserKey is the single opaque value the server-side session carries.
const sessionUserKey = "user_id"

const currentUserLocal = "currentUser"

// Middleware resolves the session into an identity once per request and
// exposes the four role guards. Handlers never touch the session store
// directly; they read the already resolved identity from locals.
type Middleware struct {
	store *session.Store
	users *repository.UserRepository
}

func New(users *repository.UserRepository) *Middleware {
	return &Middleware{
		store: session.New(session.Config{
			Expiration:     24 * time.Hour,
			KeyLookup:      "cookie:ecosistema_session",
			CookieHTTPOnly: true,
		}),
		users: users,
	}
}

// ResolveIdentity loads the session user, if any, into locals. A missing key
// or a dangling id (user deleted mid-session) both fail closed: the request
// proceeds unauthenticated and a stale session is destroyed.
func (m *Middleware) ResolveIdentity(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return c.Next()
	}

	raw := sess.Get(sessionUserKey)
	userID, ok := raw.(uint)
	if !ok {
		return c.Next()
	}

	user, err := m.users.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = sess.Destroy()
		return c.Next()
	}
	if err != nil {
		return c.Next()
	}

	c.Locals(currentUserLocal, user)
	return c.Next()
}

// CurrentUser returns the resolved identity, or nil for visitors.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserLocal).(*models.User)
	return user
}

// SignIn binds a user id to a fresh session.
func (m *Middleware) SignIn(c *fiber.Ctx, userID uint) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(sessionUserKey, userID)
	return sess.Save()
}

func (m *Middleware) SignOut(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// Flash stores a one-shot notice shown on the next page load.
func (m *Middleware) Flash(c *fiber.Ctx, level, message string) {
	sess, err := m.store.Get(c)
	if err != nil {
		return
	}
	sess.Set("flash_level", level)
	sess.Set("flash_message", message)
	_ = sess.Save()
}

// TakeFlash pops the pending notice, if any.
func (m *Middleware) TakeFlash(c *fiber.Ctx) *models.Alert {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil
	}
	message, ok := sess.Get("flash_message").(string)
	if !ok || message == "" {
		return nil
	}
	level, _ := sess.Get("flash_level").(string)
	sess.Delete("flash_message")
	sess.Delete("flash_level")
	_ = sess.Save()
	return &models.Alert{Type: level, Message: message}
}

// AdminOrHelper gates the shared panel screens.
func (m *Middleware) AdminOrHelper(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return c.Redirect("/login")
	}
	if !user.IsAdmin && !user.IsHelper {
		return c.Redirect("/")
	}
	return c.Next()
}

// AdminOnly gates destructive panel actions, bouncing privileged non-admins
// back to the dashboard with a visible error.
func (m *Middleware) AdminOnly(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return c.Redirect("/login")
	}
	if !user.IsAdmin {
		m.Flash(c, "error", "No tienes permiso para realizar esta acción.")
		return c.Redirect("/panel")
	}
	return c.Next()
}

// KioskOnly restricts the unattended scan terminals.
func (m *Middleware) KioskOnly(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return c.Redirect("/login")
	}
	if !user.IsKiosk {
		m.Flash(c, "error", "Esta sección es solo para terminales de tipo Tótem.")
		return c.Redirect("/")
	}
	return c.Next()
}

// PrivilegedAPI admits any privileged role (admin, helper or kiosk) and
// answers violations with a structured 403, never a redirect.
func (m *Middleware) PrivilegedAPI(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil || !user.IsStaff() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "Permiso denegado.",
		})
	}
	return c.Next()
}
