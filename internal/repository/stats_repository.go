package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
)

// StatsRepository runs the read-only aggregation queries behind the
// statistics dashboard and its exports. Nothing here is maintained
// incrementally; every call is a group-and-count over current data.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// TotalAttendances sums the denormalized per-user counters.
func (r *StatsRepository) TotalAttendances() (int64, error) {
	var total *int64
	err := r.db.Model(&models.User{}).
		Select("SUM(attendance_count)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// GlobalAverageScore averages every survey response in the system.
func (r *StatsRepository) GlobalAverageScore() (float64, error) {
	var avg *float64
	err := r.db.Model(&models.SurveyResponse{}).
		Select("AVG(score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (r *StatsRepository) GlobalScoreDistribution() ([]models.ScoreBucket, error) {
	var buckets []models.ScoreBucket
	err := r.db.Model(&models.SurveyResponse{}).
		Select("score, COUNT(id) AS count").
		Group("score").
		Order("score").
		Scan(&buckets).Error
	return buckets, err
}

// CategoryCount is one slice of the members-per-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// TopCategories ranks categories by user count. A zero limit returns all.
func (r *StatsRepository) TopCategories(limit int) ([]CategoryCount, error) {
	var rows []CategoryCount
	db := r.db.Model(&models.User{}).
		Where("category <> ''").
		Select("category, COUNT(id) AS count").
		Group("category").
		Order("count DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Scan(&rows).Error
	return rows, err
}

// TopCategoriesForMeeting ranks categories among one meeting's attendees.
func (r *StatsRepository) TopCategoriesForMeeting(meetingID uint, limit int) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.Model(&models.User{}).
		Joins("JOIN meeting_attendees ma ON ma.user_id = users.id AND ma.meeting_id = ?", meetingID).
		Where("category <> ''").
		Select("category, COUNT(users.id) AS count").
		Group("category").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// MeetingAttendance is one bar of the attendance-per-meeting chart.
type MeetingAttendance struct {
	MeetingID uint      `json:"meeting_id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Count     int64     `json:"count"`
}

// MeetingAttendances lists meetings with attendee counts, newest first, then
// reversed into chronological order for charting. A zero limit returns all.
func (r *StatsRepository) MeetingAttendances(limit int) ([]MeetingAttendance, error) {
	var rows []MeetingAttendance
	db := r.db.Table("meetings").
		Select("meetings.id AS meeting_id, meetings.title AS title, meetings.date AS date, COUNT(ma.user_id) AS count").
		Joins("LEFT JOIN meeting_attendees ma ON ma.meeting_id = meetings.id").
		Group("meetings.id, meetings.title, meetings.date").
		Order("meetings.date DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
