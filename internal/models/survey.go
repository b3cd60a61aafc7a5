package models

import (
	"time"
)

// Survey is the satisfaction poll of one meeting. Exactly one per meeting.
type Survey struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MeetingID uint      `json:"meeting_id" gorm:"uniqueIndex;not null"`
	Meeting   Meeting   `json:"-"`
	Title     string    `json:"title" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	Responses []SurveyResponse `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

type SurveyResponse struct {
	ID       uint  `json:"id" gorm:"primaryKey"`
	SurveyID uint  `json:"survey_id" gorm:"index;not null"`
	UserID   *uint `json:"user_id"`
	Score    int   `json:"score" gorm:"not null"` // 1..5
	Comment  string `json:"comment"`
	// Featured marks a response shown publicly as a testimonial.
	Featured  bool      `json:"featured" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

type SurveyRequest struct {
	MeetingID uint   `json:"meeting_id" form:"meeting_id" validate:"required"`
	Title     string `json:"title" form:"title" validate:"required,max=200"`
}

type SurveyResponseRequest struct {
	Score   int    `json:"score" form:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" form:"comment"`
}

// ScoreBucket is one bar of the satisfaction distribution.
type ScoreBucket struct {
	Score int   `json:"score"`
	Count int64 `json:"count"`
}
