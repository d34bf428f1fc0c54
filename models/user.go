package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Role         string         `json:"role" gorm:"not null;default:'student'"` // teacher, student
	Semester     string         `json:"semester"`                               // 1st, 2nd
	Year         string         `json:"year"`                                   // 1st year .. 4th year
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Quizzes []Quiz       `json:"quizzes,omitempty" gorm:"foreignKey:TeacherID"`
	Results []QuizResult `json:"results,omitempty" gorm:"foreignKey:UserID"`
}
