package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return client, func() {
		client.Close()
		mr.Close()
	}
}

func TestNotificationMessage_JSON(t *testing.T) {
	msg := &NotificationMessage{
		Type:           TypeNotification,
		UserID:         1,
		NotificationID: 2,
		Kind:           "welcome",
		Title:          "Hola",
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Contains(t, raw, "user_id")
	assert.Contains(t, raw, "notification_id")
	_, hasStatus := raw["status"]
	assert.False(t, hasStatus, "empty status should be omitted")
}

func TestPublisherSubscriber(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *NotificationMessage, 1)
	go func() {
		_ = subscriber.Subscribe(ctx, func(msg *NotificationMessage) {
			received <- msg
		})
	}()

	// 等待订阅建立
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, ChannelNotifications).Result()
		return err == nil && n[ChannelNotifications] > 0
	}, 2*time.Second, 10*time.Millisecond)

	err := publisher.Publish(ctx, &NotificationMessage{
		UserID:         123,
		NotificationID: 9,
		Title:          "Instalación lista",
	})
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, int64(123), got.UserID)
		assert.Equal(t, int64(9), got.NotificationID)
		assert.Equal(t, TypeNotification, got.Type)
		assert.False(t, got.CreatedAt.IsZero())
	case <-ctx.Done():
		t.Fatal("timeout waiting for message")
	}
}

func TestSubscribe_ContextCancel(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSubscriber(client).Subscribe(ctx, func(*NotificationMessage) {})
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
