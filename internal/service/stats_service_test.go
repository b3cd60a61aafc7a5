package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"gorm.io/gorm"
)

func newTestStatsService(db *gorm.DB) *StatsService {
	return NewStatsService(
		repository.NewMeetingRepository(db),
		repository.NewUserRepository(db),
		repository.NewSurveyRepository(db),
		repository.NewStatsRepository(db),
	)
}

func TestHelperAutoScopesToNearestUpcomingMeeting(t *testing.T) {
	db := newTestDB(t)
	svc := newTestStatsService(db)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	createMeeting(t, db, &models.Meeting{Title: "Pasada", Date: now.Add(-48 * time.Hour)})
	next := createMeeting(t, db, &models.Meeting{Title: "Próxima", Date: now.Add(24 * time.Hour)})
	createMeeting(t, db, &models.Meeting{Title: "Lejana", Date: now.Add(30 * 24 * time.Hour)})

	helper := &models.User{IsHelper: true}
	view, err := svc.Overview(helper, nil)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if view.SelectedMeetingID == nil || *view.SelectedMeetingID != next.ID {
		t.Fatalf("selected meeting = %v, want %d", view.SelectedMeetingID, next.ID)
	}
	if view.SelectedMeeting == nil || view.SelectedMeeting.Title != "Próxima" {
		t.Fatalf("selected meeting = %+v, want Próxima", view.SelectedMeeting)
	}
}

func TestHelperFallsBackToMostRecentMeeting(t *testing.T) {
	db := newTestDB(t)
	svc := newTestStatsService(db)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	createMeeting(t, db, &models.Meeting{Title: "Antigua", Date: now.Add(-60 * 24 * time.Hour)})
	recent := createMeeting(t, db, &models.Meeting{Title: "Reciente", Date: now.Add(-24 * time.Hour)})

	helper := &models.User{IsHelper: true}
	view, err := svc.Overview(helper, nil)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if view.SelectedMeetingID == nil || *view.SelectedMeetingID != recent.ID {
		t.Fatalf("selected meeting = %v, want %d", view.SelectedMeetingID, recent.ID)
	}
}

func TestAdminWithoutSelectionSeesGlobalStats(t *testing.T) {
	db := newTestDB(t)
	svc := newTestStatsService(db)

	createMeeting(t, db, &models.Meeting{Title: "Networking", Date: time.Now()})
	createUser(t, db, &models.User{
		FirstName: "Ana", LastName: "Rojas",
		Email: "ana@example.com", Rut: "11111111-1", AttendanceCount: 3,
	})

	admin := &models.User{IsAdmin: true}
	view, err := svc.Overview(admin, nil)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if view.SelectedMeetingID != nil {
		t.Fatalf("selected meeting = %v, want global view", view.SelectedMeetingID)
	}
	if view.TotalUsers != 1 || view.TotalMeetings != 1 {
		t.Fatalf("totals = %d users / %d meetings, want 1/1", view.TotalUsers, view.TotalMeetings)
	}
	if view.TotalAttendances != 3 {
		t.Fatalf("total attendances = %d, want 3", view.TotalAttendances)
	}
}

func TestHelperCannotExportGlobalStats(t *testing.T) {
	db := newTestDB(t)
	svc := newTestStatsService(db)

	helper := &models.User{IsHelper: true}
	if _, _, err := svc.Export(helper, nil); !errors.Is(err, ErrHelperGlobalExport) {
		t.Fatalf("export error = %v, want ErrHelperGlobalExport", err)
	}
}
