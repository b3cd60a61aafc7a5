package service

import (
	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
)

// ErrSurveyExists re-exported for handler mapping.
var ErrSurveyExists = repository.ErrSurveyExists

type SurveyService struct {
	surveyRepo  *repository.SurveyRepository
	meetingRepo *repository.MeetingRepository
}

func NewSurveyService(surveyRepo *repository.SurveyRepository, meetingRepo *repository.MeetingRepository) *SurveyService {
	return &SurveyService{
		surveyRepo:  surveyRepo,
		meetingRepo: meetingRepo,
	}
}

// Create attaches the one satisfaction survey a meeting can have.
func (s *SurveyService) Create(req models.SurveyRequest) (*models.Survey, error) {
	if _, err := s.meetingRepo.GetByID(req.MeetingID); err != nil {
		return nil, err
	}
	survey := &models.Survey{
		MeetingID: req.MeetingID,
		Title:     req.Title,
	}
	if err := s.surveyRepo.Create(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) All() ([]models.Survey, error) {
	return s.surveyRepo.All()
}

func (s *SurveyService) Delete(id uint) error {
	if _, err := s.surveyRepo.GetByID(id); err != nil {
		return err
	}
	return s.surveyRepo.Delete(id)
}

// ResponsesView is the survey responses screen: thread plus aggregate score.
type ResponsesView struct {
	Survey       *models.Survey          `json:"survey"`
	Responses    []models.SurveyResponse `json:"responses"`
	AverageScore float64                 `json:"average_score"`
}

func (s *SurveyService) Responses(surveyID uint) (*ResponsesView, error) {
	survey, err := s.surveyRepo.GetByID(surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.surveyRepo.Responses(surveyID)
	if err != nil {
		return nil, err
	}
	avg, err := s.surveyRepo.AverageScore(surveyID)
	if err != nil {
		return nil, err
	}
	return &ResponsesView{
		Survey:       survey,
		Responses:    responses,
		AverageScore: avg,
	}, nil
}

// SubmitResponse records a member's score and comment for a meeting's survey.
func (s *SurveyService) SubmitResponse(surveyID uint, userID *uint, req models.SurveyResponseRequest) (*models.SurveyResponse, error) {
	if _, err := s.surveyRepo.GetByID(surveyID); err != nil {
		return nil, err
	}
	response := &models.SurveyResponse{
		SurveyID: surveyID,
		UserID:   userID,
		Score:    req.Score,
		Comment:  req.Comment,
	}
	if err := s.surveyRepo.CreateResponse(response); err != nil {
		return nil, err
	}
	return response, nil
}

// ToggleResponseFeatured flips a testimonial in and out of the public wall.
func (s *SurveyService) ToggleResponseFeatured(responseID uint) (*models.SurveyResponse, error) {
	response, err := s.surveyRepo.GetResponse(responseID)
	if err != nil {
		return nil, err
	}
	response.Featured = !response.Featured
	if err := s.surveyRepo.UpdateResponse(response); err != nil {
		return nil, err
	}
	return response, nil
}
