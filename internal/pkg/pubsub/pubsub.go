package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelNotifications = "user_notifications"
)

// 推送给前端的消息类型
const (
	TypeNotification       = "notification"
	TypeInstallationStatus = "installation_status"
)

// NotificationMessage 推送到用户 websocket 的消息
type NotificationMessage struct {
	Type           string    `json:"type"`
	UserID         int64     `json:"user_id"`
	NotificationID int64     `json:"notification_id,omitempty"`
	Kind           string    `json:"kind,omitempty"`
	Title          string    `json:"title,omitempty"`
	Message        string    `json:"message,omitempty"`
	InstallationID int64     `json:"installation_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Publisher Redis 发布者
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, channel: ChannelNotifications}
}

// Publish 发布消息，未设置类型时按通知处理
func (p *Publisher) Publish(ctx context.Context, msg *NotificationMessage) error {
	if msg.Type == "" {
		msg.Type = TypeNotification
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification message: %w", err)
	}

	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client  *redis.Client
	channel string
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client, channel: ChannelNotifications}
}

// Subscribe 订阅通知消息，阻塞直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*NotificationMessage)) error {
	ps := s.client.Subscribe(ctx, s.channel)
	defer ps.Close()

	// 等待订阅确认，避免订阅建立前发布的消息丢失
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var notification NotificationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				continue // 忽略解析错误
			}

			handler(&notification)
		}
	}
}
