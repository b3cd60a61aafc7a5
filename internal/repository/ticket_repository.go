package repository

import (
	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ticket *models.SupportTicket) error {
	return r.db.Create(ticket).Error
}

// All returns tickets newest first with their submitters.
func (r *TicketRepository) All() ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := r.db.Preload("User").Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}

// GetByID loads a ticket with its reply thread in chronological order.
func (r *TicketRepository) GetByID(id uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("ticket_replies.created_at ASC")
		}).
		Preload("Replies.User").
		First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) UpdateStatus(id uint, status models.TicketStatus) error {
	return r.db.Model(&models.SupportTicket{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *TicketRepository) CreateReply(reply *models.TicketReply) error {
	return r.db.Create(reply).Error
}
