package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
)

type IntentRepository struct {
	db *gorm.DB
}

func NewIntentRepository(db *gorm.DB) *IntentRepository {
	return &IntentRepository{db: db}
}

func (r *IntentRepository) GetByInstallationID(installationID int64) (*model.ProvisioningIntent, error) {
	var intent model.ProvisioningIntent
	err := r.db.Where("installation_id = ?", installationID).First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// ListInFlightBefore 返回创建时间早于 cutoff 仍未结束的意图
func (r *IntentRepository) ListInFlightBefore(cutoff time.Time, limit int) ([]*model.ProvisioningIntent, error) {
	var intents []*model.ProvisioningIntent
	err := r.db.Where("state = ? AND created_at < ?", model.IntentStateInFlight, cutoff).
		Order("created_at ASC").Limit(limit).Find(&intents).Error
	return intents, err
}

func (r *IntentRepository) CountInFlight() (int64, error) {
	var count int64
	err := r.db.Model(&model.ProvisioningIntent{}).Where("state = ?", model.IntentStateInFlight).Count(&count).Error
	return count, err
}

// RecordFailure 记录一次恢复失败，意图保持 in_flight
func (r *IntentRepository) RecordFailure(id int64, reason string) error {
	return r.db.Model(&model.ProvisioningIntent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": reason,
	}).Error
}

// Close 直接关闭意图（实例已不存在时使用）
func (r *IntentRepository) Close(id int64, state, reason string) error {
	return r.db.Model(&model.ProvisioningIntent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"state":       state,
		"last_error":  reason,
		"resolved_at": time.Now(),
	}).Error
}
