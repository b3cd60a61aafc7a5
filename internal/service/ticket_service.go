package service

import (
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
)

type TicketService struct {
	ticketRepo *repository.TicketRepository
}

func NewTicketService(ticketRepo *repository.TicketRepository) *TicketService {
	return &TicketService{ticketRepo: ticketRepo}
}

func (s *TicketService) Submit(userID uint, subject, message string) (*models.SupportTicket, error) {
	ticket := &models.SupportTicket{
		UserID:  userID,
		Subject: subject,
		Message: message,
		Status:  models.TicketOpen,
	}
	if err := s.ticketRepo.Create(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) All() ([]models.SupportTicket, error) {
	return s.ticketRepo.All()
}

func (s *TicketService) GetByID(id uint) (*models.SupportTicket, error) {
	return s.ticketRepo.GetByID(id)
}

func (s *TicketService) UpdateStatus(id uint, status models.TicketStatus) (*models.SupportTicket, error) {
	if _, err := s.ticketRepo.GetByID(id); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	return s.ticketRepo.GetByID(id)
}

// Reply appends a staff (or submitter) message to the thread.
func (s *TicketService) Reply(ticketID, authorID uint, message string) (*models.TicketReply, error) {
	if _, err := s.ticketRepo.GetByID(ticketID); err != nil {
		return nil, err
	}
	reply := &models.TicketReply{
		TicketID: ticketID,
		UserID:   authorID,
		Message:  message,
	}
	if err := s.ticketRepo.CreateReply(reply); err != nil {
		return nil, err
	}
	return reply, nil
}
