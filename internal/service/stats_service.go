package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/pkg/excel"
)

// ErrHelperGlobalExport refuses the global statistics export to helpers.
var ErrHelperGlobalExport = errors.New("helpers cannot export global statistics")

const topCategoriesLimit = 5

type StatsService struct {
	meetingRepo *repository.MeetingRepository
	userRepo    *repository.UserRepository
	surveyRepo  *repository.SurveyRepository
	statsRepo   *repository.StatsRepository

	// Now is swapped out in tests to pin the "upcoming" scope.
	Now func() time.Time
}

func NewStatsService(
	meetingRepo *repository.MeetingRepository,
	userRepo *repository.UserRepository,
	surveyRepo *repository.SurveyRepository,
	statsRepo *repository.StatsRepository,
) *StatsService {
	return &StatsService{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		surveyRepo:  surveyRepo,
		statsRepo:   statsRepo,
		Now:         time.Now,
	}
}

// StatsView feeds the statistics dashboard, either globally or scoped to one
// meeting.
type StatsView struct {
	MeetingsForFilter []models.Meeting `json:"meetings_for_filter"`
	SelectedMeetingID *uint            `json:"selected_meeting_id"`
	SelectedMeeting   *models.Meeting  `json:"selected_meeting,omitempty"`

	TotalUsers       int64   `json:"total_users"`
	TotalMeetings    int64   `json:"total_meetings"`
	TotalAttendances int64   `json:"total_attendances"`
	AverageScore     float64 `json:"average_score"`

	// ConversionData holds [interested, attendees] for the scoped view.
	ConversionData []int64 `json:"conversion_data,omitempty"`

	MeetingAttendances []repository.MeetingAttendance `json:"meeting_attendances,omitempty"`
	ScoreDistribution  []models.ScoreBucket           `json:"score_distribution,omitempty"`
	TopCategories      []repository.CategoryCount     `json:"top_categories,omitempty"`
}

// resolveScope picks the meeting to scope to. A helper with no explicit
// selection is forced onto the chronologically nearest upcoming meeting (or
// the most recent one when nothing is scheduled); they never see the global
// dashboard.
func (s *StatsService) resolveScope(currentUser *models.User, meetingID *uint) (*uint, error) {
	if meetingID != nil {
		return meetingID, nil
	}
	if !currentUser.IsHelper || currentUser.IsAdmin {
		return nil, nil
	}

	upcoming, err := s.meetingRepo.Upcoming(s.Now())
	if err != nil {
		return nil, err
	}
	if len(upcoming) > 0 {
		id := upcoming[0].ID
		return &id, nil
	}

	all, err := s.meetingRepo.All()
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		id := all[0].ID
		return &id, nil
	}
	return nil, nil
}

// Overview assembles the dashboard for the current user and optional meeting
// selection.
func (s *StatsService) Overview(currentUser *models.User, meetingID *uint) (*StatsView, error) {
	meetings, err := s.meetingRepo.All()
	if err != nil {
		return nil, err
	}

	view := &StatsView{MeetingsForFilter: meetings}

	scope, err := s.resolveScope(currentUser, meetingID)
	if err != nil {
		return nil, err
	}
	view.SelectedMeetingID = scope

	if scope != nil {
		return view, s.fillMeetingStats(view, *scope)
	}
	if currentUser.IsAdmin {
		return view, s.fillGlobalStats(view)
	}
	return view, nil
}

func (s *StatsService) fillMeetingStats(view *StatsView, meetingID uint) error {
	meeting, err := s.meetingRepo.GetByID(meetingID)
	if err != nil {
		return err
	}
	view.SelectedMeeting = meeting

	interested, err := s.meetingRepo.InterestedCount(meetingID)
	if err != nil {
		return err
	}
	attendees, err := s.meetingRepo.AttendeeCount(meetingID)
	if err != nil {
		return err
	}
	view.TotalAttendances = attendees
	view.ConversionData = []int64{interested, attendees}

	survey, err := s.surveyRepo.GetByMeetingID(meetingID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if survey != nil {
		if view.AverageScore, err = s.surveyRepo.AverageScore(survey.ID); err != nil {
			return err
		}
		if view.ScoreDistribution, err = s.surveyRepo.ScoreDistribution(survey.ID); err != nil {
			return err
		}
	}

	view.TopCategories, err = s.statsRepo.TopCategoriesForMeeting(meetingID, topCategoriesLimit)
	return err
}

func (s *StatsService) fillGlobalStats(view *StatsView) error {
	var err error
	if view.TotalUsers, err = s.userRepo.CountAll(); err != nil {
		return err
	}
	if view.TotalMeetings, err = s.meetingRepo.CountAll(); err != nil {
		return err
	}
	if view.TotalAttendances, err = s.statsRepo.TotalAttendances(); err != nil {
		return err
	}
	if view.AverageScore, err = s.statsRepo.GlobalAverageScore(); err != nil {
		return err
	}
	if view.MeetingAttendances, err = s.statsRepo.MeetingAttendances(10); err != nil {
		return err
	}
	if view.ScoreDistribution, err = s.statsRepo.GlobalScoreDistribution(); err != nil {
		return err
	}
	view.TopCategories, err = s.statsRepo.TopCategories(topCategoriesLimit)
	return err
}

// Export renders either the scoped or the global statistics workbook.
// Helpers must name a meeting; the global export is admin-only.
func (s *StatsService) Export(currentUser *models.User, meetingID *uint) (*bytes.Buffer, string, error) {
	if meetingID == nil {
		if currentUser.IsHelper && !currentUser.IsAdmin {
			return nil, "", ErrHelperGlobalExport
		}
		return s.exportGlobal()
	}
	return s.exportMeeting(*meetingID)
}

func (s *StatsService) exportMeeting(meetingID uint) (*bytes.Buffer, string, error) {
	meeting, err := s.meetingRepo.GetByID(meetingID)
	if err != nil {
		return nil, "", err
	}

	interested, err := s.meetingRepo.InterestedCount(meetingID)
	if err != nil {
		return nil, "", err
	}
	attendees, err := s.meetingRepo.Attendees(meetingID, "", 0, 0)
	if err != nil {
		return nil, "", err
	}

	average := 0.0
	if survey, err := s.surveyRepo.GetByMeetingID(meetingID); err == nil {
		if average, err = s.surveyRepo.AverageScore(survey.ID); err != nil {
			return nil, "", err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	wb := excel.NewWorkbook()
	if err := wb.AddSummarySheet(
		"Resumen Reunión",
		fmt.Sprintf("Estadísticas de la Reunión: %s", meeting.Title),
		[][2]interface{}{
			{"Interesados", interested},
			{"Asistentes", len(attendees)},
			{"Satisfacción Promedio", formatAverage(average)},
		},
	); err != nil {
		return nil, "", err
	}

	rows := make([][]interface{}, 0, len(attendees))
	for _, a := range attendees {
		rows = append(rows, []interface{}{a.FirstName, a.LastName, a.Email, a.Category})
	}
	if err := wb.AddSheet(
		"Lista de Asistentes",
		[]string{"Nombre", "Apellido", "Email", "Rubro"},
		rows,
	); err != nil {
		return nil, "", err
	}

	buf, err := wb.Buffer()
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("estadisticas_%s_%s.xlsx", slugify(meeting.Title), meeting.Date.Format("20060102"))
	return buf, filename, nil
}

func (s *StatsService) exportGlobal() (*bytes.Buffer, string, error) {
	totalUsers, err := s.userRepo.CountAll()
	if err != nil {
		return nil, "", err
	}
	totalMeetings, err := s.meetingRepo.CountAll()
	if err != nil {
		return nil, "", err
	}
	totalAttendances, err := s.statsRepo.TotalAttendances()
	if err != nil {
		return nil, "", err
	}
	average, err := s.statsRepo.GlobalAverageScore()
	if err != nil {
		return nil, "", err
	}
	attendances, err := s.statsRepo.MeetingAttendances(0)
	if err != nil {
		return nil, "", err
	}
	categories, err := s.statsRepo.TopCategories(0)
	if err != nil {
		return nil, "", err
	}
	distribution, err := s.statsRepo.GlobalScoreDistribution()
	if err != nil {
		return nil, "", err
	}

	wb := excel.NewWorkbook()
	if err := wb.AddSummarySheet(
		"Resumen General",
		"Estadísticas Generales",
		[][2]interface{}{
			{"Usuarios Totales", totalUsers},
			{"Reuniones Totales", totalMeetings},
			{"Asistencias Totales", totalAttendances},
			{"Satisfacción Promedio", formatAverage(average)},
		},
	); err != nil {
		return nil, "", err
	}

	attendanceRows := make([][]interface{}, 0, len(attendances))
	for _, a := range attendances {
		attendanceRows = append(attendanceRows, []interface{}{
			a.Title, a.Date.Format("02-01-2006"), a.Count,
		})
	}
	if err := wb.AddSheet(
		"Asistencia por Reunión",
		[]string{"Reunión", "Fecha", "Nº de Asistentes"},
		attendanceRows,
	); err != nil {
		return nil, "", err
	}

	categoryRows := make([][]interface{}, 0, len(categories))
	for _, c := range categories {
		categoryRows = append(categoryRows, []interface{}{c.Category, c.Count})
	}
	if err := wb.AddSheet(
		"Usuarios por Rubro",
		[]string{"Rubro", "Cantidad de Usuarios"},
		categoryRows,
	); err != nil {
		return nil, "", err
	}

	distributionRows := make([][]interface{}, 0, len(distribution))
	for _, d := range distribution {
		distributionRows = append(distributionRows, []interface{}{
			fmt.Sprintf("%d Estrellas", d.Score), d.Count,
		})
	}
	if err := wb.AddSheet(
		"Distribución de Satisfacción",
		[]string{"Puntuación (Estrellas)", "Cantidad de Votos"},
		distributionRows,
	); err != nil {
		return nil, "", err
	}

	buf, err := wb.Buffer()
	if err != nil {
		return nil, "", err
	}
	return buf, "estadisticas_ecosistemala.xlsx", nil
}

func formatAverage(average float64) string {
	if average == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f / 5", average)
}
