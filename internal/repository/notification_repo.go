package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepository) ListByUserID(userID int64, page, pageSize int, unreadOnly bool) ([]*model.Notification, int64, error) {
	var notifications []*model.Notification
	var total int64

	query := r.db.Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(pageSize).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead 只允许标记自己的通知
func (r *NotificationRepository) MarkRead(id, userID int64) (bool, error) {
	result := r.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return result.RowsAffected > 0, result.Error
}

func (r *NotificationRepository) Delete(id int64) (bool, error) {
	result := r.db.Where("id = ?", id).Delete(&model.Notification{})
	return result.RowsAffected > 0, result.Error
}

func (r *NotificationRepository) MarkAllRead(userID int64) (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

func (r *NotificationRepository) DeleteReadBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) CountReadBefore(cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).Where("is_read = ? AND created_at < ?", true, cutoff).Count(&count).Error
	return count, err
}
