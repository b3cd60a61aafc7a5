package service

import (
	"errors"
	"testing"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/pkg/bcrypt"
)

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	hashed, err := bcrypt.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	createUser(t, db, &models.User{
		FirstName: "Admin", LastName: "Uno",
		Email: "admin@example.com", Rut: "11111111-1",
		Password: hashed, IsAdmin: true,
	})

	user, err := svc.Login("admin@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "admin@example.com" {
		t.Fatalf("logged in user = %q", user.Email)
	}

	if _, err := svc.Login("admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyKioskExit(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	hashed, err := bcrypt.HashPassword("kiosk-pass")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	kiosk := createUser(t, db, &models.User{
		FirstName: "Tótem", LastName: "Entrada",
		Email: "totem@example.com", Rut: "22222222-2",
		Password: hashed, IsKiosk: true,
	})

	if err := svc.VerifyKioskExit(kiosk.ID, "kiosk-pass"); err != nil {
		t.Fatalf("verify exit: %v", err)
	}
	if err := svc.VerifyKioskExit(kiosk.ID, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
}
