package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
)

func TestSurveyOnePerMeeting(t *testing.T) {
	db := newTestDB(t)
	svc := NewSurveyService(repository.NewSurveyRepository(db), repository.NewMeetingRepository(db))

	meeting := createMeeting(t, db, &models.Meeting{Title: "Networking", Date: time.Now()})

	if _, err := svc.Create(models.SurveyRequest{MeetingID: meeting.ID, Title: "Satisfacción"}); err != nil {
		t.Fatalf("first survey: %v", err)
	}
	_, err := svc.Create(models.SurveyRequest{MeetingID: meeting.ID, Title: "Otra"})
	if !errors.Is(err, ErrSurveyExists) {
		t.Fatalf("second survey error = %v, want ErrSurveyExists", err)
	}
}

func TestSurveyAverageAndFeaturedToggle(t *testing.T) {
	db := newTestDB(t)
	svc := NewSurveyService(repository.NewSurveyRepository(db), repository.NewMeetingRepository(db))

	meeting := createMeeting(t, db, &models.Meeting{Title: "Networking", Date: time.Now()})
	survey, err := svc.Create(models.SurveyRequest{MeetingID: meeting.ID, Title: "Satisfacción"})
	if err != nil {
		t.Fatalf("create survey: %v", err)
	}

	for _, score := range []int{5, 4, 3} {
		if _, err := svc.SubmitResponse(survey.ID, nil, models.SurveyResponseRequest{Score: score}); err != nil {
			t.Fatalf("submit response: %v", err)
		}
	}

	view, err := svc.Responses(survey.ID)
	if err != nil {
		t.Fatalf("responses: %v", err)
	}
	if view.AverageScore != 4 {
		t.Fatalf("average = %v, want 4", view.AverageScore)
	}
	if len(view.Responses) != 3 {
		t.Fatalf("responses = %d, want 3", len(view.Responses))
	}

	toggled, err := svc.ToggleResponseFeatured(view.Responses[0].ID)
	if err != nil {
		t.Fatalf("toggle featured: %v", err)
	}
	if !toggled.Featured {
		t.Fatal("response not featured after toggle")
	}
	toggled, err = svc.ToggleResponseFeatured(toggled.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if toggled.Featured {
		t.Fatal("response still featured after second toggle")
	}
}
