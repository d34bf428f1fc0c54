package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizResult struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"not null;index"`
	QuizID         uint           `json:"quiz_id" gorm:"not null;index"`
	Score          int            `json:"score" gorm:"not null"` // 0..100
	CorrectAnswers int            `json:"correct_answers" gorm:"not null"`
	TotalQuestions int            `json:"total_questions" gorm:"not null"`
	Answers        string         `json:"answers" gorm:"type:text"` // JSON array of selected option indexes, question order
	Abandoned      bool           `json:"abandoned" gorm:"not null;default:false"`
	SubmittedAt    time.Time      `json:"submitted_at" gorm:"not null;index"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User User `json:"user,omitempty"`
	Quiz Quiz `json:"quiz,omitempty"`
}
