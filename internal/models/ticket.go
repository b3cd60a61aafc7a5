package models

import (
	"time"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

type SupportTicket struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	UserID    uint         `json:"user_id" gorm:"index;not null"`
	User      User         `json:"-"`
	Subject   string       `json:"subject" gorm:"not null"`
	Message   string       `json:"message" gorm:"not null"`
	Status    TicketStatus `json:"status" gorm:"not null;default:'open'"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Replies []TicketReply `json:"-" gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

type TicketReply struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TicketID  uint      `json:"ticket_id" gorm:"index;not null"`
	UserID    uint      `json:"user_id" gorm:"not null"`
	User      User      `json:"-"`
	Message   string    `json:"message" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

type TicketStatusRequest struct {
	Status TicketStatus `json:"status" form:"status" validate:"required,oneof=open in_progress closed"`
}

type TicketReplyRequest struct {
	Message string `json:"message" form:"message" validate:"required"`
}
