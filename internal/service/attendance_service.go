package service

import (
	"errors"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
)

// ErrAlreadyAttendee rejects a duplicate check-in. Check-out of a
// non-attendee is deliberately a no-op instead; the asymmetry is part of the
// contract.
var ErrAlreadyAttendee = repository.ErrDuplicateAttendee

type CheckInResult struct {
	User *models.User
	// PrintBadge asks the caller to trigger badge printing, per the
	// meeting's auto-print flag.
	PrintBadge bool
}

type AttendanceService struct {
	meetingRepo *repository.MeetingRepository
	userRepo    *repository.UserRepository
}

func NewAttendanceService(meetingRepo *repository.MeetingRepository, userRepo *repository.UserRepository) *AttendanceService {
	return &AttendanceService{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
	}
}

// CheckIn turns a user into an attendee of the meeting, bumping their
// attendance counter. Fails with ErrAlreadyAttendee on a repeat.
func (s *AttendanceService) CheckIn(meetingID, userID uint) (*CheckInResult, error) {
	meeting, err := s.meetingRepo.GetByID(meetingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}

	if err := s.meetingRepo.AddAttendee(meetingID, userID); err != nil {
		return nil, err
	}

	// Re-read to pick up the incremented counter.
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	return &CheckInResult{
		User:       user,
		PrintBadge: meeting.PrintBadgeOnCheckIn,
	}, nil
}

// CheckOut removes an attendee. Idempotent: a user who was never checked in
// is left untouched and the counter is floored at zero.
func (s *AttendanceService) CheckOut(meetingID, userID uint) error {
	if _, err := s.meetingRepo.GetByID(meetingID); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return err
	}
	return s.meetingRepo.RemoveAttendee(meetingID, userID)
}

// AttendeePage lists a meeting's attendees with search and pagination.
func (s *AttendanceService) AttendeePage(meetingID uint, query string, page int) ([]models.UserRow, models.Pagination, error) {
	total, err := s.meetingRepo.CountAttendees(meetingID, query)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	page, totalPages := clampPage(page, total, pageSize)
	users, err := s.meetingRepo.Attendees(meetingID, query, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	rows := make([]models.UserRow, 0, len(users))
	for i := range users {
		rows = append(rows, users[i].Row())
	}
	return rows, models.NewPagination(page, totalPages), nil
}

// RosterData is the registration panel view: current attendees plus everyone
// still eligible for a manual add.
func (s *AttendanceService) RosterData(meetingID uint) (*models.Meeting, []models.User, []models.User, error) {
	meeting, err := s.meetingRepo.GetByID(meetingID)
	if err != nil {
		return nil, nil, nil, err
	}
	attendees, err := s.meetingRepo.Attendees(meetingID, "", 0, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	nonAttendees, err := s.meetingRepo.NonAttendees(meetingID)
	if err != nil {
		return nil, nil, nil, err
	}
	return meeting, attendees, nonAttendees, nil
}

// IsAttendee is used by handlers that only need the membership check.
func (s *AttendanceService) IsAttendee(meetingID, userID uint) (bool, error) {
	return s.meetingRepo.IsAttendee(meetingID, userID)
}

// errors re-exported for handler mapping convenience.
func IsDuplicateAttendee(err error) bool {
	return errors.Is(err, repository.ErrDuplicateAttendee)
}
