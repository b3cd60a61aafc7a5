package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/pkg/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Login resolves an email/password pair into a user for the session.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.ComparePassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// VerifyKioskExit checks the kiosk account's own password before letting the
// terminal leave full-screen scan mode.
func (s *AuthService) VerifyKioskExit(kioskUserID uint, password string) error {
	user, err := s.userRepo.GetByID(kioskUserID)
	if err != nil {
		return err
	}
	if err := bcrypt.ComparePassword(user.Password, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
