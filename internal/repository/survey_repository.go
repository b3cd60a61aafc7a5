package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
)

// ErrSurveyExists is returned when a meeting already has its survey.
var ErrSurveyExists = errors.New("meeting already has a survey")

type SurveyRepository struct {
	db *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// Create enforces the one-survey-per-meeting rule inside the insert
// transaction; the unique index on meeting_id backs it up.
func (r *SurveyRepository) Create(survey *models.Survey) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Survey{}).
			Where("meeting_id = ?", survey.MeetingID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSurveyExists
		}
		return tx.Create(survey).Error
	})
}

func (r *SurveyRepository) GetByID(id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := r.db.Preload("Meeting").First(&survey, id).Error; err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *SurveyRepository) GetByMeetingID(meetingID uint) (*models.Survey, error) {
	var survey models.Survey
	err := r.db.Where("meeting_id = ?", meetingID).First(&survey).Error
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *SurveyRepository) All() ([]models.Survey, error) {
	var surveys []models.Survey
	err := r.db.Preload("Meeting").Order("created_at DESC").Find(&surveys).Error
	return surveys, err
}

func (r *SurveyRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("survey_id = ?", id).Delete(&models.SurveyResponse{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Survey{}, id).Error
	})
}

func (r *SurveyRepository) CreateResponse(response *models.SurveyResponse) error {
	return r.db.Create(response).Error
}

func (r *SurveyRepository) Responses(surveyID uint) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	err := r.db.Where("survey_id = ?", surveyID).
		Order("created_at DESC").
		Find(&responses).Error
	return responses, err
}

func (r *SurveyRepository) GetResponse(id uint) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	if err := r.db.First(&response, id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *SurveyRepository) UpdateResponse(response *models.SurveyResponse) error {
	return r.db.Save(response).Error
}

// AverageScore of one survey; zero when it has no responses.
func (r *SurveyRepository) AverageScore(surveyID uint) (float64, error) {
	var avg *float64
	err := r.db.Model(&models.SurveyResponse{}).
		Where("survey_id = ?", surveyID).
		Select("AVG(score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// ScoreDistribution groups one survey's responses by score.
func (r *SurveyRepository) ScoreDistribution(surveyID uint) ([]models.ScoreBucket, error) {
	var buckets []models.ScoreBucket
	err := r.db.Model(&models.SurveyResponse{}).
		Where("survey_id = ?", surveyID).
		Select("score, COUNT(id) AS count").
		Group("score").
		Order("score").
		Scan(&buckets).Error
	return buckets, err
}
