package model

import (
	"time"
)

const (
	NotificationAccountUpdate     = "account_update"
	NotificationPasswordUpdate    = "password_update"
	NotificationWelcome           = "welcome"
	NotificationInstallationReady = "installation_ready"
	NotificationPasswordReset     = "password_reset"
	NotificationVerification      = "verification"
)

type Notification struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	Type      string     `gorm:"size:50;not null" json:"type"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	Read      bool       `gorm:"column:is_read;default:false;index" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
