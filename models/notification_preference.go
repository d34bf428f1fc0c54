package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationPreference stores per-user delivery opt-outs. A missing
// row means all channels default to enabled.
type NotificationPreference struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	UserID             uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	EmailNotifications bool           `json:"email_notifications" gorm:"not null;default:true"`
	InAppNotifications bool           `json:"in_app_notifications" gorm:"not null;default:true"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User User `json:"user,omitempty"`
}
