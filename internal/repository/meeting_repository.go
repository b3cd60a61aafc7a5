package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
)

var (
	// ErrDuplicateAttendee is returned when a user is checked in twice.
	ErrDuplicateAttendee = errors.New("user is already an attendee")
	// ErrDuplicateInterested is returned when a user registers interest twice.
	ErrDuplicateInterested = errors.New("user is already registered")
)

type MeetingRepository struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

func (r *MeetingRepository) Create(meeting *models.Meeting) error {
	return r.db.Create(meeting).Error
}

func (r *MeetingRepository) GetByID(id uint) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := r.db.First(&meeting, id).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *MeetingRepository) Update(meeting *models.Meeting) error {
	return r.db.Save(meeting).Error
}

func (r *MeetingRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM meeting_interested WHERE meeting_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM meeting_attendees WHERE meeting_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Meeting{}, id).Error
	})
}

// All returns every meeting, newest first.
func (r *MeetingRepository) All() ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := r.db.Order("date DESC").Find(&meetings).Error
	return meetings, err
}

// Upcoming returns meetings that have not started yet, soonest first.
func (r *MeetingRepository) Upcoming(now time.Time) ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := r.db.Where("date >= ?", now).Order("date ASC").Find(&meetings).Error
	return meetings, err
}

// UpcomingWithInterested preloads the pre-registration list of each upcoming
// meeting for the interested-users panel.
func (r *MeetingRepository) UpcomingWithInterested(now time.Time) ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := r.db.Preload("Interested").
		Where("date >= ?", now).Order("date ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *MeetingRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.Meeting{}).Count(&count).Error
	return count, err
}

// AddAttendee checks a user in. The uniqueness check, the relation insert and
// the counter increment run in one transaction so simultaneous scans of the
// same credential cannot double-register. The increment is a SQL expression,
// never a read-modify-write in application code.
func (r *MeetingRepository) AddAttendee(meetingID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("meeting_attendees").
			Where("meeting_id = ? AND user_id = ?", meetingID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateAttendee
		}
		if err := tx.Exec(
			"INSERT INTO meeting_attendees (meeting_id, user_id) VALUES (?, ?)",
			meetingID, userID,
		).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("attendance_count", gorm.Expr("attendance_count + 1")).Error
	})
}

// RemoveAttendee undoes a check-in. Removing a non-attendee is a no-op and
// the counter never goes below zero.
func (r *MeetingRepository) RemoveAttendee(meetingID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"DELETE FROM meeting_attendees WHERE meeting_id = ? AND user_id = ?",
			meetingID, userID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND attendance_count > 0", userID).
			UpdateColumn("attendance_count", gorm.Expr("attendance_count - 1")).Error
	})
}

func (r *MeetingRepository) IsAttendee(meetingID, userID uint) (bool, error) {
	var count int64
	err := r.db.Table("meeting_attendees").
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddInterested pre-registers a user, rejecting duplicates inside the same
// transaction as the insert.
func (r *MeetingRepository) AddInterested(meetingID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("meeting_interested").
			Where("meeting_id = ? AND user_id = ?", meetingID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateInterested
		}
		return tx.Exec(
			"INSERT INTO meeting_interested (meeting_id, user_id) VALUES (?, ?)",
			meetingID, userID,
		).Error
	})
}

func (r *MeetingRepository) IsInterested(meetingID, userID uint) (bool, error) {
	var count int64
	err := r.db.Table("meeting_interested").
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *MeetingRepository) InterestedCount(meetingID uint) (int64, error) {
	var count int64
	err := r.db.Table("meeting_interested").Where("meeting_id = ?", meetingID).Count(&count).Error
	return count, err
}

func (r *MeetingRepository) AttendeeCount(meetingID uint) (int64, error) {
	var count int64
	err := r.db.Table("meeting_attendees").Where("meeting_id = ?", meetingID).Count(&count).Error
	return count, err
}

func attendeesScope(meetingID uint, query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins(
			"JOIN meeting_attendees ma ON ma.user_id = users.id AND ma.meeting_id = ?",
			meetingID,
		)
		if query != "" {
			q := "%" + strings.ToLower(query) + "%"
			db = db.Where(
				"lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(rut) LIKE ? OR lower(email) LIKE ?",
				q, q, q, q,
			)
		}
		return db
	}
}

func (r *MeetingRepository) CountAttendees(meetingID uint, query string) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Scopes(attendeesScope(meetingID, query)).Count(&count).Error
	return count, err
}

// Attendees lists checked-in users with optional search and paging. A zero
// limit returns the full list.
func (r *MeetingRepository) Attendees(meetingID uint, query string, offset, limit int) ([]models.User, error) {
	var users []models.User
	db := r.db.Model(&models.User{}).Scopes(attendeesScope(meetingID, query)).
		Order("first_name, last_name")
	if limit > 0 {
		db = db.Offset(offset).Limit(limit)
	}
	err := db.Find(&users).Error
	return users, err
}

// NonAttendees lists users not yet checked in, for the manual-add picker.
func (r *MeetingRepository) NonAttendees(meetingID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("id NOT IN (?)",
			r.db.Table("meeting_attendees").Select("user_id").Where("meeting_id = ?", meetingID),
		).
		Order("first_name").
		Find(&users).Error
	return users, err
}

// AttendeeCounts returns a meeting-id to attendee-count map produced by one
// group-and-count query; listings compose it with the meeting rows.
func (r *MeetingRepository) AttendeeCounts() (map[uint]int64, error) {
	type row struct {
		MeetingID uint
		Count     int64
	}
	var rows []row
	err := r.db.Table("meeting_attendees").
		Select("meeting_id, COUNT(user_id) AS count").
		Group("meeting_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.MeetingID] = r.Count
	}
	return counts, nil
}
