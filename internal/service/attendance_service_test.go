package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
)

func TestCheckInDuplicateConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewAttendanceService(repository.NewMeetingRepository(db), repository.NewUserRepository(db))

	meeting := createMeeting(t, db, &models.Meeting{Title: "Networking Agosto", Date: time.Now()})
	user := createUser(t, db, &models.User{
		FirstName: "Ana", LastName: "Rojas",
		Email: "ana@example.com", Rut: "11111111-1",
	})

	result, err := svc.CheckIn(meeting.ID, user.ID)
	if err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if result.User.AttendanceCount != 1 {
		t.Fatalf("attendance count after first check-in = %d, want 1", result.User.AttendanceCount)
	}

	_, err = svc.CheckIn(meeting.ID, user.ID)
	if !errors.Is(err, ErrAlreadyAttendee) {
		t.Fatalf("second check-in error = %v, want ErrAlreadyAttendee", err)
	}

	// The failed attempt must leave no trace: one relation row, counter still 1.
	if n := countAttendees(t, db, meeting.ID, user.ID); n != 1 {
		t.Fatalf("attendee rows = %d, want 1", n)
	}
	var fresh models.User
	if err := db.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.AttendanceCount != 1 {
		t.Fatalf("attendance count after duplicate = %d, want 1", fresh.AttendanceCount)
	}
}

func TestCheckOutNonAttendeeIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := NewAttendanceService(repository.NewMeetingRepository(db), repository.NewUserRepository(db))

	meeting := createMeeting(t, db, &models.Meeting{Title: "Charla", Date: time.Now()})
	user := createUser(t, db, &models.User{
		FirstName: "Pedro", LastName: "Soto",
		Email: "pedro@example.com", Rut: "22222222-2",
	})

	// Never checked in: check-out succeeds without touching anything.
	if err := svc.CheckOut(meeting.ID, user.ID); err != nil {
		t.Fatalf("check-out of non-attendee: %v", err)
	}
	var fresh models.User
	if err := db.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.AttendanceCount != 0 {
		t.Fatalf("attendance count = %d, want 0", fresh.AttendanceCount)
	}
}

func TestCheckOutCounterFloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	svc := NewAttendanceService(repository.NewMeetingRepository(db), repository.NewUserRepository(db))

	meeting := createMeeting(t, db, &models.Meeting{Title: "Lanzamiento", Date: time.Now()})
	user := createUser(t, db, &models.User{
		FirstName: "Camila", LastName: "Pinto",
		Email: "camila@example.com", Rut: "12345678-5",
	})

	if _, err := svc.CheckIn(meeting.ID, user.ID); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if err := svc.CheckOut(meeting.ID, user.ID); err != nil {
		t.Fatalf("first check-out: %v", err)
	}
	if err := svc.CheckOut(meeting.ID, user.ID); err != nil {
		t.Fatalf("second check-out: %v", err)
	}

	var fresh models.User
	if err := db.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.AttendanceCount != 0 {
		t.Fatalf("attendance count = %d, want 0", fresh.AttendanceCount)
	}
	if n := countAttendees(t, db, meeting.ID, user.ID); n != 0 {
		t.Fatalf("attendee rows = %d, want 0", n)
	}
}

func TestAttendeePageClampsOutOfRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewAttendanceService(repository.NewMeetingRepository(db), repository.NewUserRepository(db))

	meeting := createMeeting(t, db, &models.Meeting{Title: "Aniversario", Date: time.Now()})
	user := createUser(t, db, &models.User{
		FirstName: "Luis", LastName: "Vera",
		Email: "luis@example.com", Rut: "6-K",
	})
	if _, err := svc.CheckIn(meeting.ID, user.ID); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	rows, pagination, err := svc.AttendeePage(meeting.ID, "", 99)
	if err != nil {
		t.Fatalf("attendee page: %v", err)
	}
	if pagination.CurrentPage != 1 || pagination.TotalPages != 1 {
		t.Fatalf("pagination = %+v, want page 1 of 1", pagination)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
}
