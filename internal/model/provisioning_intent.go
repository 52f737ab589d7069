package model

import (
	"time"
)

// 开通意图状态：外部调用之前写入 in_flight，结束后落到 completed 或 rolled_back
const (
	IntentStateInFlight   = "in_flight"
	IntentStateCompleted  = "completed"
	IntentStateRolledBack = "rolled_back"
)

type ProvisioningIntent struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	InstallationID int64      `gorm:"uniqueIndex;not null" json:"installation_id"`
	UserID         int64      `gorm:"not null;index" json:"user_id"`
	Domain         string     `gorm:"size:63;not null" json:"domain"`
	Edition        string     `gorm:"size:20;not null" json:"edition"`
	State          string     `gorm:"size:20;default:in_flight;index" json:"state"`
	Attempts       int        `gorm:"default:0" json:"attempts"`
	LastError      string     `gorm:"type:text" json:"last_error,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (ProvisioningIntent) TableName() string {
	return "provisioning_intents"
}
