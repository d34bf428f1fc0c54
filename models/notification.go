package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationQuizAssigned     = "quiz_assigned"
	NotificationQuizGraded       = "quiz_graded"
	NotificationQuizAbandoned    = "quiz_abandoned"
	NotificationMajorityComplete = "quiz_majority_complete"
	NotificationDataExport       = "data_export"
	NotificationAnnouncement     = "announcement"
)

// Notification delivery/grading statuses.
const (
	NotificationStatusPending = "pending"
	NotificationStatusGraded  = "graded"
)

type Notification struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	RecipientID   uint           `json:"recipient_id" gorm:"not null;index"`
	RecipientRole string         `json:"recipient_role" gorm:"not null"`
	Type          string         `json:"type" gorm:"not null;index"`
	Title         string         `json:"title" gorm:"not null"`
	Description   string         `json:"description"`
	QuizID        *uint          `json:"quiz_id" gorm:"index"`
	Score         *int           `json:"score"` // set on graded notifications
	IsRead        bool           `json:"is_read" gorm:"not null;default:false"`
	Status        string         `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Recipient User  `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Quiz      *Quiz `json:"quiz,omitempty"`
}
