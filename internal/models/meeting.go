package models

import (
	"time"
)

// RegistrationGrace keeps sign-up open for a while after a meeting starts.
const RegistrationGrace = 2 * time.Hour

type Meeting struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	Title               string    `json:"title" gorm:"not null"`
	Date                time.Time `json:"date" gorm:"not null"`
	Location            string    `json:"location"`
	Description         string    `json:"description"`
	PrintBadgeOnCheckIn bool      `json:"print_badge_on_check_in" gorm:"not null;default:false"`

	// Interested (pre-registered) and Attendees (checked-in) are independent
	// sets: a walk-in can attend without pre-registering and vice versa.
	Interested []User `json:"-" gorm:"many2many:meeting_interested;constraint:OnDelete:CASCADE"`
	Attendees  []User `json:"-" gorm:"many2many:meeting_attendees;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegistrationClosed reports whether sign-up is over: meeting time plus the
// fixed grace window.
func (m *Meeting) RegistrationClosed(now time.Time) bool {
	return now.After(m.Date.Add(RegistrationGrace))
}

type MeetingRequest struct {
	Title               string    `json:"title" form:"title" validate:"required,max=200"`
	Date                time.Time `json:"date" form:"date" validate:"required"`
	Location            string    `json:"location" form:"location" validate:"required,max=200"`
	Description         string    `json:"description" form:"description"`
	PrintBadgeOnCheckIn bool      `json:"print_badge_on_check_in" form:"print_badge_on_check_in"`
}

// MeetingSummary annotates a meeting with its attendee count for listings.
type MeetingSummary struct {
	Meeting
	AttendeeCount int `json:"attendee_count"`
}
