package model

import (
	"time"
)

const (
	WebhookStatusReceived  = "received"
	WebhookStatusProcessed = "processed"
	WebhookStatusIgnored   = "ignored"
	WebhookStatusFailed    = "failed"
)

type WebhookEvent struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	EventID     string     `gorm:"size:255;uniqueIndex;not null" json:"event_id"`
	Type        string     `gorm:"size:100;not null;index" json:"type"`
	Status      string     `gorm:"size:20;default:received;index" json:"status"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
