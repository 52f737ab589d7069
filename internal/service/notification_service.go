package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/pubsub"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationPublisher 把新通知推送给在线用户
type NotificationPublisher interface {
	Publish(ctx context.Context, msg *pubsub.NotificationMessage) error
}

type NotificationService struct {
	repo      *repository.NotificationRepository
	publisher NotificationPublisher
}

// NewNotificationService publisher 可以为 nil，此时只落库不推送
func NewNotificationService(repo *repository.NotificationRepository, publisher NotificationPublisher) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
	}
}

// 通知文案，按用户语言选择，缺省西班牙语
var notificationTexts = map[string]map[string][2]string{
	model.NotificationWelcome: {
		"es": {"Bienvenido", "Tu cuenta ha sido creada."},
		"en": {"Welcome", "Your account has been created."},
	},
	model.NotificationAccountUpdate: {
		"es": {"Cuenta actualizada", "Los datos de tu cuenta fueron actualizados."},
		"en": {"Account updated", "Your account details were updated."},
	},
	model.NotificationPasswordUpdate: {
		"es": {"Contraseña actualizada", "Tu contraseña fue cambiada."},
		"en": {"Password updated", "Your password was changed."},
	},
	model.NotificationPasswordReset: {
		"es": {"Restablecimiento de contraseña", "Se solicitó restablecer la contraseña de %s."},
		"en": {"Password reset requested", "A password reset was requested for %s."},
	},
	model.NotificationVerification: {
		"es": {"Correo de verificación reenviado", "Enviamos un nuevo código de verificación a %s."},
		"en": {"Verification email resent", "A new verification code was sent to %s."},
	},
	model.NotificationInstallationReady: {
		"es": {"Instancia lista", "La base de datos %s ya está disponible."},
		"en": {"Instance ready", "The database %s is now available."},
	},
}

// NotifyKind 按类型和语言生成文案后发送通知，args 用于填充消息中的占位符
func (s *NotificationService) NotifyKind(ctx context.Context, userID int64, kind, lang string, args ...interface{}) {
	byLang, ok := notificationTexts[kind]
	if !ok {
		log.Warn().Str("kind", kind).Msg("no text for notification kind")
		return
	}
	text, ok := byLang[lang]
	if !ok {
		text = byLang["es"]
	}
	message := text[1]
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}

	if _, err := s.Notify(ctx, userID, kind, text[0], message); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Str("kind", kind).Msg("failed to create notification")
	}
}

// Notify 写入通知并尽力推送，推送失败只记录日志
func (s *NotificationService) Notify(ctx context.Context, userID int64, kind, title, message string) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := s.repo.Create(notification); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, &pubsub.NotificationMessage{
			Type:           pubsub.TypeNotification,
			UserID:         userID,
			NotificationID: notification.ID,
			Kind:           kind,
			Title:          title,
			Message:        message,
			CreatedAt:      notification.CreatedAt,
		})
		if err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("failed to publish notification")
		}
	}

	return notification, nil
}

// List 获取用户的通知列表
func (s *NotificationService) List(userID int64, page, pageSize int, unreadOnly bool) ([]*dto.NotificationInfo, int64, error) {
	notifications, total, err := s.repo.ListByUserID(userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.NotificationInfo, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, buildNotificationInfo(n))
	}
	return items, total, nil
}

// MarkRead 标记单条已读，只能操作自己的通知
func (s *NotificationService) MarkRead(userID, id int64) error {
	ok, err := s.repo.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead 全部标记为已读
func (s *NotificationService) MarkAllRead(userID int64) (int64, error) {
	return s.repo.MarkAllRead(userID)
}

// Delete 管理员删除任意通知
func (s *NotificationService) Delete(id int64) error {
	ok, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// UnreadCount 未读数量
func (s *NotificationService) UnreadCount(userID int64) (int64, error) {
	return s.repo.CountUnread(userID)
}

func buildNotificationInfo(n *model.Notification) *dto.NotificationInfo {
	info := &dto.NotificationInfo{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		info.ReadAt = n.ReadAt.Format(time.RFC3339)
	}
	return info
}
