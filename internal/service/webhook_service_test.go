package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/stripe"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/testutil"
)

const testWebhookSecret = "whsec_test"

func setupWebhookService(t *testing.T) (*WebhookService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := config.StripeConfig{WebhookSecret: testWebhookSecret, ProductID: testProductID}
	reconciler := NewSubscriptionReconciler(repository.NewUserRepository(db), repository.NewPlanRepository(db), cfg)
	svc := NewWebhookService(repository.NewWebhookEventRepository(db), reconciler, cfg)

	return svc, db, func() { testutil.CleanupTestDB(t, db) }
}

func signedSubscriptionPayload(eventID, eventType, customerID, priceID, productID string) ([]byte, string) {
	payload := fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": %q,
		"data": {"object": {
			"id": "sub_1",
			"object": "subscription",
			"customer": %q,
			"status": "active",
			"items": {"data": [{
				"price": {"id": %q, "product": %q},
				"current_period_start": 1735689600,
				"current_period_end": 1738368000
			}]}
		}}
	}`, eventID, eventType, customerID, priceID, productID)
	return sign([]byte(payload))
}

func sign(payload []byte) ([]byte, string) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Payload, signed.Header
}

func webhookStatus(t *testing.T, db *gorm.DB, eventID string) string {
	t.Helper()
	var event model.WebhookEvent
	require.NoError(t, db.Where("event_id = ?", eventID).First(&event).Error)
	return event.Status
}

func TestWebhookService_ProcessesSubscription(t *testing.T) {
	svc, db, cleanup := setupWebhookService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	plan := testutil.TestPlan(t, db, "price_m")

	payload, sig := signedSubscriptionPayload("evt_1", "customer.subscription.created", "cus_1", "price_m", testProductID)
	result, err := svc.Handle(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, WebhookOutcomeProcessed, result.Outcome)
	assert.Equal(t, "evt_1", result.EventID)
	assert.Equal(t, model.WebhookStatusProcessed, webhookStatus(t, db, "evt_1"))

	got := reload(t, db, user.ID)
	require.NotNil(t, got.PlanID)
	assert.Equal(t, plan.ID, *got.PlanID)
	assert.Equal(t, time.Unix(1738368000, 0).UTC(), got.PlanEnd.UTC())
}

func TestWebhookService_Duplicate(t *testing.T) {
	svc, db, cleanup := setupWebhookService(t)
	defer cleanup()

	testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	testutil.TestPlan(t, db, "price_m")

	payload, sig := signedSubscriptionPayload("evt_1", "customer.subscription.updated", "cus_1", "price_m", testProductID)
	_, err := svc.Handle(context.Background(), payload, sig)
	require.NoError(t, err)

	result, err := svc.Handle(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, WebhookOutcomeDuplicate, result.Outcome)
}

func TestWebhookService_OverlappingDelivery(t *testing.T) {
	svc, db, cleanup := setupWebhookService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	plan := testutil.TestPlan(t, db, "price_m")

	// 另一个投递已经认领但尚未标记完成
	claimed, err := repository.NewWebhookEventRepository(db).Claim("evt_5", "customer.subscription.updated")
	require.NoError(t, err)
	require.True(t, claimed)

	payload, sig := signedSubscriptionPayload("evt_5", "customer.subscription.updated", "cus_1", "price_m", testProductID)
	for i := 0; i < 2; i++ {
		result, err := svc.Handle(context.Background(), payload, sig)
		require.NoError(t, err)
		if i == 0 {
			assert.Equal(t, WebhookOutcomeProcessed, result.Outcome)
		} else {
			assert.Equal(t, WebhookOutcomeDuplicate, result.Outcome)
		}
	}

	got := reload(t, db, user.ID)
	require.NotNil(t, got.PlanID)
	assert.Equal(t, plan.ID, *got.PlanID)
	assert.Equal(t, time.Unix(1738368000, 0).UTC(), got.PlanEnd.UTC())
	assert.Equal(t, model.WebhookStatusProcessed, webhookStatus(t, db, "evt_5"))
}

func TestWebhookService_Ignored(t *testing.T) {
	svc, db, cleanup := setupWebhookService(t)
	defer cleanup()

	payload, sig := sign([]byte(`{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`))
	result, err := svc.Handle(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, WebhookOutcomeIgnored, result.Outcome)
	assert.Equal(t, model.WebhookStatusIgnored, webhookStatus(t, db, "evt_2"))
}

func TestWebhookService_RejectedDomainError(t *testing.T) {
	svc, db, cleanup := setupWebhookService(t)
	defer cleanup()

	testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	testutil.TestPlan(t, db, "price_m")

	payload, sig := signedSubscriptionPayload("evt_3", "customer.subscription.updated", "cus_1", "price_m", "prod_other")
	result, err := svc.Handle(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, WebhookOutcomeRejected, result.Outcome)
	assert.Equal(t, model.WebhookStatusFailed, webhookStatus(t, db, "evt_3"))

	// 失败的事件允许 Stripe 重新投递后再次处理
	result, err = svc.Handle(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, WebhookOutcomeRejected, result.Outcome)
}

func TestWebhookService_InvalidSignature(t *testing.T) {
	svc, db, cleanup := setupWebhookService(t)
	defer cleanup()

	payload, _ := signedSubscriptionPayload("evt_4", "customer.subscription.updated", "cus_1", "price_m", testProductID)
	_, err := svc.Handle(context.Background(), payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, stripe.ErrInvalidSignature)

	var count int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

type failingHandler struct{ err error }

func (h failingHandler) HandleSubscriptionEvent(context.Context, stripe.Event) error { return h.err }

func TestWebhookService_InfrastructureErrorIsReturned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	boom := errors.New("database is locked")
	svc := NewWebhookService(repository.NewWebhookEventRepository(db), failingHandler{err: boom},
		config.StripeConfig{WebhookSecret: testWebhookSecret})

	payload, sig := signedSubscriptionPayload("evt_5", "customer.subscription.updated", "cus_1", "price_m", testProductID)
	_, err := svc.Handle(context.Background(), payload, sig)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, model.WebhookStatusFailed, webhookStatus(t, db, "evt_5"))
}
