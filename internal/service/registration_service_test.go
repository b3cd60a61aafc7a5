package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/pkg/utils"
)

type registrationFixture struct {
	db     *gorm.DB
	svc    *RegistrationService
	mailer *fakeMailer
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()

	db := newTestDB(t)
	meetingRepo := repository.NewMeetingRepository(db)
	userRepo := repository.NewUserRepository(db)
	mailer := newFakeMailer()

	svc := NewRegistrationService(
		meetingRepo,
		userRepo,
		newTestUserService(db),
		utils.NewValidator(),
		mailer,
		fakeQR{},
		zap.NewNop(),
		"https://test.local",
		"", // captcha disabled
	)
	return &registrationFixture{db: db, svc: svc, mailer: mailer}
}

func TestIdentifyByRutKnownUser(t *testing.T) {
	f := newRegistrationFixture(t)
	meeting := createMeeting(t, f.db, &models.Meeting{Title: "Networking", Date: time.Now().Add(24 * time.Hour)})
	user := createUser(t, f.db, &models.User{
		FirstName: "Ana", LastName: "Rojas",
		Email: "ana@example.com", Rut: "12345678-5",
	})

	outcome, err := f.svc.IdentifyByRut(meeting, "12.345.678-5")
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if outcome.Alert == nil || outcome.Alert.Type != "success" {
		t.Fatalf("outcome alert = %+v, want success", outcome.Alert)
	}
	if n := countInterested(t, f.db, meeting.ID, user.ID); n != 1 {
		t.Fatalf("interested rows = %d, want 1", n)
	}
	if kind := f.mailer.waitForSend(t); kind != "confirmation:ana@example.com" {
		t.Fatalf("sent = %q, want confirmation for ana", kind)
	}
}

func TestIdentifyByRutDuplicateIsInformational(t *testing.T) {
	f := newRegistrationFixture(t)
	meeting := createMeeting(t, f.db, &models.Meeting{Title: "Networking", Date: time.Now().Add(24 * time.Hour)})
	user := createUser(t, f.db, &models.User{
		FirstName: "Ana", LastName: "Rojas",
		Email: "ana@example.com", Rut: "12345678-5",
	})

	if _, err := f.svc.IdentifyByRut(meeting, "12345678-5"); err != nil {
		t.Fatalf("first identify: %v", err)
	}
	f.mailer.waitForSend(t)

	outcome, err := f.svc.IdentifyByRut(meeting, "12345678-5")
	if err != nil {
		t.Fatalf("second identify: %v", err)
	}
	if outcome.Alert == nil || outcome.Alert.Type != "info" {
		t.Fatalf("duplicate outcome alert = %+v, want info", outcome.Alert)
	}
	if n := countInterested(t, f.db, meeting.ID, user.ID); n != 1 {
		t.Fatalf("interested rows after duplicate = %d, want 1", n)
	}
	f.mailer.assertNoSend(t)
}

func TestIdentifyByRutChecksumFailureHasNoSideEffects(t *testing.T) {
	f := newRegistrationFixture(t)
	meeting := createMeeting(t, f.db, &models.Meeting{Title: "Networking", Date: time.Now().Add(24 * time.Hour)})
	createUser(t, f.db, &models.User{
		FirstName: "Ana", LastName: "Rojas",
		Email: "ana@example.com", Rut: "12345678-5",
	})

	// Same digits, wrong check digit: rejected before any lookup.
	outcome, err := f.svc.IdentifyByRut(meeting, "12345678-9")
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if outcome.Step != StepIdentify {
		t.Fatalf("step = %q, want identify", outcome.Step)
	}
	if outcome.Alert == nil || outcome.Alert.Type != "error" {
		t.Fatalf("outcome alert = %+v, want error", outcome.Alert)
	}

	var rows int64
	if err := f.db.Table("meeting_interested").Count(&rows).Error; err != nil {
		t.Fatalf("count interested: %v", err)
	}
	if rows != 0 {
		t.Fatalf("interested rows = %d, want 0", rows)
	}
	f.mailer.assertNoSend(t)
}

func TestIdentifyByRutUnknownMovesToRegister(t *testing.T) {
	f := newRegistrationFixture(t)
	meeting := createMeeting(t, f.db, &models.Meeting{Title: "Networking", Date: time.Now().Add(24 * time.Hour)})

	outcome, err := f.svc.IdentifyByRut(meeting, "11.111.111-1")
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if outcome.Step != StepRegister {
		t.Fatalf("step = %q, want register", outcome.Step)
	}
	if outcome.Rut != "11111111-1" {
		t.Fatalf("carried rut = %q, want normalized 11111111-1", outcome.Rut)
	}
}

func TestCompleteRegistrationCreatesAndSubscribes(t *testing.T) {
	f := newRegistrationFixture(t)
	meeting := createMeeting(t, f.db, &models.Meeting{Title: "Networking", Date: time.Now().Add(24 * time.Hour)})

	outcome, err := f.svc.CompleteRegistration(meeting, models.RegisterUserRequest{
		Name:     "Nueva",
		Surname:  "Socia",
		Email:    "nueva@example.com",
		Rut:      "22222222-2",
		Password: "secret123",
		Category: "Gastronomía",
	})
	if err != nil {
		t.Fatalf("complete registration: %v", err)
	}
	if outcome.Alert == nil || outcome.Alert.Type != "success" {
		t.Fatalf("outcome alert = %+v, want success", outcome.Alert)
	}

	var user models.User
	if err := f.db.Where("email = ?", "nueva@example.com").First(&user).Error; err != nil {
		t.Fatalf("created user lookup: %v", err)
	}
	if user.Rut != "22222222-2" {
		t.Fatalf("stored rut = %q", user.Rut)
	}
	if n := countInterested(t, f.db, meeting.ID, user.ID); n != 1 {
		t.Fatalf("interested rows = %d, want 1", n)
	}
	if kind := f.mailer.waitForSend(t); !strings.HasPrefix(kind, "welcome:") {
		t.Fatalf("sent = %q, want welcome mail", kind)
	}
}

func TestCompleteRegistrationFieldErrors(t *testing.T) {
	f := newRegistrationFixture(t)
	meeting := createMeeting(t, f.db, &models.Meeting{Title: "Networking", Date: time.Now().Add(24 * time.Hour)})

	outcome, err := f.svc.CompleteRegistration(meeting, models.RegisterUserRequest{
		Name:     "Sin",
		Surname:  "Correo",
		Email:    "not-an-email",
		Rut:      "11111111-1",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("complete registration: %v", err)
	}
	if outcome.Step != StepRegister {
		t.Fatalf("step = %q, want register", outcome.Step)
	}
	if len(outcome.FieldErrors) == 0 {
		t.Fatal("expected field errors for invalid email")
	}
	f.mailer.assertNoSend(t)
}

func TestRegistrationGraceWindow(t *testing.T) {
	f := newRegistrationFixture(t)
	meetingDate := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	meeting := createMeeting(t, f.db, &models.Meeting{Title: "Networking", Date: meetingDate})

	// 19:59 is still inside the two hour grace window.
	f.svc.Now = func() time.Time { return time.Date(2024, 1, 10, 19, 59, 0, 0, time.UTC) }
	if _, err := f.svc.IdentifyByRut(meeting, "11111111-1"); err != nil {
		t.Fatalf("identify inside grace window: %v", err)
	}

	// 20:01 is past it, for every entry point.
	f.svc.Now = func() time.Time { return time.Date(2024, 1, 10, 20, 1, 0, 0, time.UTC) }
	if _, err := f.svc.IdentifyByRut(meeting, "11111111-1"); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("identify after grace window error = %v, want ErrRegistrationClosed", err)
	}

	sessioned := createUser(t, f.db, &models.User{
		FirstName: "Con", LastName: "Sesión",
		Email: "sesion@example.com", Rut: "12345678-5",
	})
	if _, err := f.svc.RegisterIdentity(meeting, sessioned); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("sessioned registration after grace window error = %v, want ErrRegistrationClosed", err)
	}
}

func TestRegisterIdentityDuplicateIsInformational(t *testing.T) {
	f := newRegistrationFixture(t)
	meeting := createMeeting(t, f.db, &models.Meeting{Title: "Networking", Date: time.Now().Add(24 * time.Hour)})
	user := createUser(t, f.db, &models.User{
		FirstName: "Ana", LastName: "Rojas",
		Email: "ana@example.com", Rut: "12345678-5",
	})

	outcome, err := f.svc.RegisterIdentity(meeting, user)
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if outcome.Alert == nil || outcome.Alert.Type != "success" {
		t.Fatalf("first outcome alert = %+v, want success", outcome.Alert)
	}
	// A sessioned member gets the page notice only, never a mail.
	f.mailer.assertNoSend(t)

	outcome, err = f.svc.RegisterIdentity(meeting, user)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if outcome.Alert == nil || outcome.Alert.Type != "info" {
		t.Fatalf("duplicate outcome alert = %+v, want info", outcome.Alert)
	}
	if n := countInterested(t, f.db, meeting.ID, user.ID); n != 1 {
		t.Fatalf("interested rows = %d, want 1", n)
	}
}
