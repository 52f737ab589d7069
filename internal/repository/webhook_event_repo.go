package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
)

var ErrEmptyEventID = errors.New("empty webhook event id")

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Claim 记录事件并返回是否需要处理。
// 已处理或已忽略的事件返回 false；失败或中断的事件允许重新投递后再次处理。
// received 状态不区分"处理中"与"进程中断"，两次并发投递可能都返回 true；
// 对账按订阅快照整体覆盖用户的套餐字段，重复执行结果相同。
func (r *WebhookEventRepository) Claim(eventID, eventType string) (bool, error) {
	if eventID == "" {
		return false, ErrEmptyEventID
	}
	event := &model.WebhookEvent{
		EventID: eventID,
		Type:    eventType,
		Status:  model.WebhookStatusReceived,
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	existing, err := r.GetByEventID(eventID)
	if err != nil {
		return false, err
	}
	switch existing.Status {
	case model.WebhookStatusProcessed, model.WebhookStatusIgnored:
		return false, nil
	}
	return true, nil
}

func (r *WebhookEventRepository) GetByEventID(eventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent
	err := r.db.Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *WebhookEventRepository) MarkStatus(eventID, status, errMsg string) error {
	fields := map[string]interface{}{
		"status": status,
		"error":  errMsg,
	}
	if status != model.WebhookStatusFailed {
		fields["processed_at"] = time.Now()
	}
	result := r.db.Model(&model.WebhookEvent{}).Where("event_id = ?", eventID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteResolvedBefore 清理已处理/已忽略的历史事件
func (r *WebhookEventRepository) DeleteResolvedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("status IN ? AND created_at < ?",
		[]string{model.WebhookStatusProcessed, model.WebhookStatusIgnored}, cutoff).
		Delete(&model.WebhookEvent{})
	return result.RowsAffected, result.Error
}

func (r *WebhookEventRepository) CountResolvedBefore(cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.WebhookEvent{}).Where("status IN ? AND created_at < ?",
		[]string{model.WebhookStatusProcessed, model.WebhookStatusIgnored}, cutoff).Count(&count).Error
	return count, err
}
