package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/stripe"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/testutil"
)

const testProductID = "prod_odoo"

func setupReconciler(t *testing.T) (*SubscriptionReconciler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	r := NewSubscriptionReconciler(
		repository.NewUserRepository(db),
		repository.NewPlanRepository(db),
		config.StripeConfig{ProductID: testProductID},
	)

	return r, db, func() { testutil.CleanupTestDB(t, db) }
}

func subscriptionEvent(id, customerID, subID, status, priceID, productID string) stripe.SubscriptionEvent {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return stripe.SubscriptionEvent{
		ID:   id,
		Type: "customer.subscription.updated",
		Kind: stripe.KindUpdated,
		Subscription: stripe.Subscription{
			ID:         subID,
			CustomerID: customerID,
			Status:     status,
			Items: []stripe.LineItem{{
				PriceID:     priceID,
				ProductID:   productID,
				PeriodStart: start,
				PeriodEnd:   start.AddDate(0, 1, 0),
			}},
		},
	}
}

func reload(t *testing.T, db *gorm.DB, id int64) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

func TestReconciler_AppliesSubscription(t *testing.T) {
	r, db, cleanup := setupReconciler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	plan := testutil.TestPlan(t, db, "price_m")

	err := r.HandleSubscriptionEvent(context.Background(),
		subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_m", testProductID))
	require.NoError(t, err)

	got := reload(t, db, user.ID)
	require.NotNil(t, got.PlanID)
	assert.Equal(t, plan.ID, *got.PlanID)
	assert.Equal(t, "active", got.PlanStatus)
	require.NotNil(t, got.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *got.StripeSubscriptionID)
	require.NotNil(t, got.PlanStart)
	require.NotNil(t, got.PlanEnd)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), got.PlanEnd.UTC())
	assert.True(t, got.IsSubscribed())
}

func TestReconciler_Idempotent(t *testing.T) {
	r, db, cleanup := setupReconciler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	testutil.TestPlan(t, db, "price_m")

	event := subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_m", testProductID)
	require.NoError(t, r.HandleSubscriptionEvent(context.Background(), event))
	first := reload(t, db, user.ID)

	require.NoError(t, r.HandleSubscriptionEvent(context.Background(), &event))
	second := reload(t, db, user.ID)

	assert.Equal(t, *first.PlanID, *second.PlanID)
	assert.Equal(t, first.PlanStatus, second.PlanStatus)
	assert.Equal(t, first.PlanEnd.UTC(), second.PlanEnd.UTC())
	assert.Equal(t, *first.StripeSubscriptionID, *second.StripeSubscriptionID)
}

func TestReconciler_AnnualPrice(t *testing.T) {
	r, db, cleanup := setupReconciler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	plan := testutil.TestPlan(t, db, "price_m", testutil.WithAnnualPrice("price_y"))

	err := r.HandleSubscriptionEvent(context.Background(),
		subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_y", testProductID))
	require.NoError(t, err)

	assert.Equal(t, plan.ID, *reload(t, db, user.ID).PlanID)
}

func TestReconciler_StatusChange(t *testing.T) {
	r, db, cleanup := setupReconciler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	testutil.TestPlan(t, db, "price_m")
	ctx := context.Background()

	require.NoError(t, r.HandleSubscriptionEvent(ctx,
		subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_m", testProductID)))

	deleted := subscriptionEvent("evt_2", "cus_1", "sub_1", "canceled", "price_m", testProductID)
	deleted.Kind = stripe.KindDeleted
	deleted.Type = "customer.subscription.deleted"
	require.NoError(t, r.HandleSubscriptionEvent(ctx, deleted))

	assert.Equal(t, model.PlanStatusCanceled, reload(t, db, user.ID).PlanStatus)
}

func TestReconciler_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		event   stripe.Event
		wantErr error
	}{
		{
			name:    "unknown customer",
			event:   subscriptionEvent("evt_1", "cus_missing", "sub_1", "active", "price_m", testProductID),
			wantErr: ErrUnknownCustomer,
		},
		{
			name:    "product mismatch",
			event:   subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_m", "prod_other"),
			wantErr: ErrProductMismatch,
		},
		{
			name:    "unknown plan",
			event:   subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_unknown", testProductID),
			wantErr: ErrUnknownPlan,
		},
		{
			name: "no items",
			event: stripe.SubscriptionEvent{
				ID:           "evt_1",
				Kind:         stripe.KindUpdated,
				Subscription: stripe.Subscription{ID: "sub_1", CustomerID: "cus_1", Status: "active"},
			},
			wantErr: ErrMalformedEvent,
		},
		{
			name:    "nil event",
			event:   nil,
			wantErr: ErrMalformedEvent,
		},
		{
			name:    "nil pointer",
			event:   (*stripe.SubscriptionEvent)(nil),
			wantErr: ErrMalformedEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, db, cleanup := setupReconciler(t)
			defer cleanup()

			user := testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
			testutil.TestPlan(t, db, "price_m")

			err := r.HandleSubscriptionEvent(context.Background(), tt.event)
			assert.ErrorIs(t, err, tt.wantErr)

			got := reload(t, db, user.ID)
			assert.Nil(t, got.PlanID)
			assert.Empty(t, got.PlanStatus)
			assert.Nil(t, got.StripeSubscriptionID)
		})
	}
}

func TestReconciler_UnknownPlanKeepsExistingSubscription(t *testing.T) {
	r, db, cleanup := setupReconciler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	plan := testutil.TestPlan(t, db, "price_m")
	ctx := context.Background()

	require.NoError(t, r.HandleSubscriptionEvent(ctx,
		subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_m", testProductID)))

	err := r.HandleSubscriptionEvent(ctx,
		subscriptionEvent("evt_2", "cus_1", "sub_2", "past_due", "price_gone", testProductID))
	assert.ErrorIs(t, err, ErrUnknownPlan)

	got := reload(t, db, user.ID)
	assert.Equal(t, plan.ID, *got.PlanID)
	assert.Equal(t, "active", got.PlanStatus)
	assert.Equal(t, "sub_1", *got.StripeSubscriptionID)
}

func TestReconciler_EmptyProductConfigRejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	r := NewSubscriptionReconciler(repository.NewUserRepository(db), repository.NewPlanRepository(db), config.StripeConfig{})
	testutil.TestUser(t, db, testutil.WithStripe("cus_1", ""))
	testutil.TestPlan(t, db, "price_m")

	err := r.HandleSubscriptionEvent(context.Background(),
		subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_m", ""))
	assert.ErrorIs(t, err, ErrProductMismatch)
}

func TestReconciler_IgnoredEvent(t *testing.T) {
	r, _, cleanup := setupReconciler(t)
	defer cleanup()

	err := r.HandleSubscriptionEvent(context.Background(), stripe.IgnoredEvent{ID: "evt_1", Type: "invoice.paid"})
	assert.NoError(t, err)
}

func TestReconciler_CanceledContext(t *testing.T) {
	r, _, cleanup := setupReconciler(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.HandleSubscriptionEvent(ctx,
		subscriptionEvent("evt_1", "cus_1", "sub_1", "active", "price_m", testProductID))
	assert.ErrorIs(t, err, context.Canceled)
}
