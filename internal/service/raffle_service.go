package service

import (
	"math/rand"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
)

// RaffleService feeds the prize wheel. The shuffle only hides the result
// order; it is entertainment, not a security control, so math/rand is enough.
type RaffleService struct {
	meetingRepo *repository.MeetingRepository
	userRepo    *repository.UserRepository
}

func NewRaffleService(meetingRepo *repository.MeetingRepository, userRepo *repository.UserRepository) *RaffleService {
	return &RaffleService{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
	}
}

// AllMembers returns every non-staff user, shuffled.
func (s *RaffleService) AllMembers() ([]models.RaffleCandidate, error) {
	users, err := s.userRepo.NonStaff()
	if err != nil {
		return nil, err
	}
	return shuffled(users), nil
}

// MeetingAttendees returns a meeting's checked-in users, shuffled.
func (s *RaffleService) MeetingAttendees(meetingID uint) ([]models.RaffleCandidate, error) {
	if _, err := s.meetingRepo.GetByID(meetingID); err != nil {
		return nil, err
	}
	users, err := s.meetingRepo.Attendees(meetingID, "", 0, 0)
	if err != nil {
		return nil, err
	}
	return shuffled(users), nil
}

func shuffled(users []models.User) []models.RaffleCandidate {
	candidates := make([]models.RaffleCandidate, 0, len(users))
	for i := range users {
		candidates = append(candidates, users[i].Candidate())
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates
}
