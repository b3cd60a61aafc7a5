package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/pkg/excel"
)

type MeetingService struct {
	meetingRepo *repository.MeetingRepository
}

func NewMeetingService(meetingRepo *repository.MeetingRepository) *MeetingService {
	return &MeetingService{meetingRepo: meetingRepo}
}

func (s *MeetingService) Create(req models.MeetingRequest) (*models.Meeting, error) {
	meeting := &models.Meeting{
		Title:               req.Title,
		Date:                req.Date,
		Location:            req.Location,
		Description:         req.Description,
		PrintBadgeOnCheckIn: req.PrintBadgeOnCheckIn,
	}
	if err := s.meetingRepo.Create(meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (s *MeetingService) GetByID(id uint) (*models.Meeting, error) {
	return s.meetingRepo.GetByID(id)
}

func (s *MeetingService) Update(id uint, req models.MeetingRequest) (*models.Meeting, error) {
	meeting, err := s.meetingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	meeting.Title = req.Title
	meeting.Date = req.Date
	meeting.Location = req.Location
	meeting.Description = req.Description
	meeting.PrintBadgeOnCheckIn = req.PrintBadgeOnCheckIn

	if err := s.meetingRepo.Update(meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (s *MeetingService) Delete(id uint) error {
	if _, err := s.meetingRepo.GetByID(id); err != nil {
		return err
	}
	return s.meetingRepo.Delete(id)
}

// All lists meetings newest first.
func (s *MeetingService) All() ([]models.Meeting, error) {
	return s.meetingRepo.All()
}

func (s *MeetingService) Upcoming() ([]models.Meeting, error) {
	return s.meetingRepo.Upcoming(time.Now())
}

// UpcomingWithInterested backs the pre-registration panel.
func (s *MeetingService) UpcomingWithInterested() ([]models.Meeting, error) {
	return s.meetingRepo.UpcomingWithInterested(time.Now())
}

// Summaries annotates each meeting with its attendee count, newest first.
func (s *MeetingService) Summaries() ([]models.MeetingSummary, error) {
	meetings, err := s.meetingRepo.All()
	if err != nil {
		return nil, err
	}
	counts, err := s.meetingRepo.AttendeeCounts()
	if err != nil {
		return nil, err
	}

	summaries := make([]models.MeetingSummary, 0, len(meetings))
	for _, m := range meetings {
		summaries = append(summaries, models.MeetingSummary{
			Meeting:       m,
			AttendeeCount: int(counts[m.ID]),
		})
	}
	return summaries, nil
}

// ExportAttendees renders a meeting's attendee list (search filter included)
// as a spreadsheet.
func (s *MeetingService) ExportAttendees(meetingID uint, query string) (*bytes.Buffer, string, error) {
	meeting, err := s.meetingRepo.GetByID(meetingID)
	if err != nil {
		return nil, "", err
	}
	attendees, err := s.meetingRepo.Attendees(meetingID, query, 0, 0)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]interface{}, 0, len(attendees))
	for _, a := range attendees {
		rows = append(rows, []interface{}{
			a.FirstName, a.LastName, a.Rut, a.Email, a.Category, a.Phone,
		})
	}

	wb := excel.NewWorkbook()
	if err := wb.AddSheet(
		"Asistentes",
		[]string{"Nombre", "Apellido", "RUT", "Email", "Rubro", "Teléfono"},
		rows,
	); err != nil {
		return nil, "", err
	}

	buf, err := wb.Buffer()
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("asistentes_%s.xlsx", slugify(meeting.Title))
	return buf, filename, nil
}

func slugify(title string) string {
	return strings.ToLower(strings.ReplaceAll(title, " ", "_"))
}
