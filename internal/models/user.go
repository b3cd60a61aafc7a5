package models

import (
	"strings"
	"time"
)

// DefaultPhotoURL is served when a member never uploaded a picture.
const DefaultPhotoURL = "/static/img/default.png"

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	FirstName       string    `json:"name" gorm:"not null"`
	LastName        string    `json:"surname" gorm:"not null"`
	Email           string    `json:"email" gorm:"unique;not null"`
	Rut             string    `json:"national_id" gorm:"unique;not null"` // normalized, checksum-verified
	Password        string    `json:"-" gorm:"not null"`
	Phone           string    `json:"phone"`
	Category        string    `json:"category"` // business sector ("rubro")
	IsAdmin         bool      `json:"is_admin" gorm:"not null;default:false"`
	IsHelper        bool      `json:"is_helper" gorm:"not null;default:false"`
	IsKiosk         bool      `json:"is_kiosk" gorm:"not null;default:false"`
	PublicProfile   bool      `json:"public_profile" gorm:"not null;default:true"`
	Featured        bool      `json:"featured" gorm:"not null;default:false"`
	AttendanceCount int       `json:"attendance_count" gorm:"not null;default:0"`
	PhotoURL        string    `json:"-"`
	QRCodeURL       string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsStaff reports whether the user holds any privileged role.
func (u *User) IsStaff() bool {
	return u.IsAdmin || u.IsHelper || u.IsKiosk
}

func (u *User) PhotoOrDefault() string {
	if u.PhotoURL == "" {
		return DefaultPhotoURL
	}
	return u.PhotoURL
}

// AttendeeInfo is the wire shape returned by the scan check-in API.
type AttendeeInfo struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	NationalID string `json:"national_id"`
	Category   string `json:"category"`
	PhotoURL   string `json:"photo_url"`
}

func (u *User) Attendee() AttendeeInfo {
	return AttendeeInfo{
		ID:         u.ID,
		Name:       u.FirstName,
		Surname:    u.LastName,
		NationalID: u.Rut,
		Category:   u.Category,
		PhotoURL:   u.PhotoOrDefault(),
	}
}

// UserRow is one entry of the paginated user search endpoints.
type UserRow struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Email           string `json:"email"`
	NationalID      string `json:"national_id"`
	Category        string `json:"category"`
	Phone           string `json:"phone"`
	AttendanceCount int    `json:"attendance_count"`
	IsAdmin         bool   `json:"is_admin"`
	PhotoURL        string `json:"photo_url"`
}

func (u *User) Row() UserRow {
	return UserRow{
		ID:              u.ID,
		Name:            u.FirstName,
		Surname:         u.LastName,
		Email:           u.Email,
		NationalID:      u.Rut,
		Category:        u.Category,
		Phone:           u.Phone,
		AttendanceCount: u.AttendanceCount,
		IsAdmin:         u.IsAdmin,
		PhotoURL:        u.PhotoOrDefault(),
	}
}

// RaffleCandidate is one wheel entry of the prize-drawing endpoint.
type RaffleCandidate struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Category string `json:"category"`
	PhotoURL string `json:"photo_url"`
}

func (u *User) Candidate() RaffleCandidate {
	return RaffleCandidate{
		ID:       u.ID,
		FullName: u.FullName(),
		Category: u.Category,
		PhotoURL: u.PhotoOrDefault(),
	}
}

type RegisterUserRequest struct {
	Name         string `json:"name" form:"name" validate:"required,max=100"`
	Surname      string `json:"surname" form:"surname" validate:"required,max=100"`
	Email        string `json:"email" form:"email" validate:"required,email"`
	Rut          string `json:"national_id" form:"national_id" validate:"required,rut"`
	Password     string `json:"password" form:"password" validate:"required,min=6"`
	Phone        string `json:"phone" form:"phone" validate:"max=20"`
	Category     string `json:"category" form:"category" validate:"max=100"`
	CaptchaToken string `json:"captcha_token" form:"captcha_token"`
}

// UpdateUserRequest covers both the admin edit form and the restricted helper
// form; role and visibility fields are honored for admins only.
type UpdateUserRequest struct {
	Name          *string `json:"name" form:"name"`
	Surname       *string `json:"surname" form:"surname"`
	Email         *string `json:"email" form:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" form:"phone"`
	Category      *string `json:"category" form:"category"`
	IsAdmin       *bool   `json:"is_admin" form:"is_admin"`
	IsHelper      *bool   `json:"is_helper" form:"is_helper"`
	IsKiosk       *bool   `json:"is_kiosk" form:"is_kiosk"`
	PublicProfile *bool   `json:"public_profile" form:"public_profile"`
}
