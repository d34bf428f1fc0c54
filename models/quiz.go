package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz lifecycle statuses. For scheduled quizzes the stored status is
// advisory only; the effective status is recomputed from the schedule
// fields at read time.
const (
	QuizStatusDraft     = "draft"
	QuizStatusScheduled = "scheduled"
	QuizStatusActive    = "active"
	QuizStatusClosed    = "closed"
)

type Quiz struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Title        string  `json:"title" gorm:"not null"`
	Subject      string  `json:"subject"`
	Description  string  `json:"description"`
	TeacherID    uint    `json:"teacher_id" gorm:"not null"`
	Semester     *string `json:"semester"`      // 1st, 2nd; nil means no cohort constraint
	AcademicYear *int    `json:"academic_year"` // 1..4; nil means no cohort constraint
	MaxAttempts  string  `json:"max_attempts" gorm:"not null;default:'1'"` // 1, 2, 3, unlimited

	IsScheduled  bool       `json:"is_scheduled" gorm:"not null;default:false"`
	ScheduleDate *time.Time `json:"schedule_date"`
	StartTime    string     `json:"start_time"` // HH:MM local wall clock
	EndTime      string     `json:"end_time"`   // HH:MM local wall clock
	DueDate      *time.Time `json:"due_date"`

	Status    string         `json:"status" gorm:"not null;default:'draft'"`
	IsDeleted bool           `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Teacher   User         `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Questions []Question   `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Results   []QuizResult `json:"results,omitempty" gorm:"foreignKey:QuizID"`
}
