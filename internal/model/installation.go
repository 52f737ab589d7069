package model

import (
	"time"
)

const (
	InstallationStatusPending     = "pending"
	InstallationStatusActive      = "active"
	InstallationStatusMaintenance = "maintenance"
	InstallationStatusFailed      = "failed"
	InstallationStatusInactive    = "inactive"
)

const (
	EditionCommunity  = "community"
	EditionEnterprise = "enterprise"
)

type Installation struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	Domain               string    `gorm:"size:63;uniqueIndex;not null" json:"domain"`
	UserID               int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Database             string    `gorm:"size:63;not null" json:"database"`
	Version              string    `gorm:"size:10" json:"version"`
	Edition              string    `gorm:"size:20;not null" json:"edition"`
	LicenseKey           *string   `gorm:"size:255" json:"license_key,omitempty"`
	Status               string    `gorm:"size:20;default:pending;index" json:"status"`
	StripeCustomerID     string    `gorm:"size:100" json:"-"`
	StripeSubscriptionID string    `gorm:"size:100" json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Installation) TableName() string {
	return "installations"
}
