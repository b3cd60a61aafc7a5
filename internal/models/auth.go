package models

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// KioskExitRequest unlocks a locked kiosk terminal.
type KioskExitRequest struct {
	Password string `json:"password"`
}
