package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/stripe"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

// SubscriptionReconciler 把 Stripe 订阅事件同步到用户的套餐字段
type SubscriptionReconciler struct {
	userRepo *repository.UserRepository
	planRepo *repository.PlanRepository
	cfg      config.StripeConfig
}

func NewSubscriptionReconciler(
	userRepo *repository.UserRepository,
	planRepo *repository.PlanRepository,
	cfg config.StripeConfig,
) *SubscriptionReconciler {
	return &SubscriptionReconciler{
		userRepo: userRepo,
		planRepo: planRepo,
		cfg:      cfg,
	}
}

// HandleSubscriptionEvent 处理一个已解码的事件。
// 未建模的事件只记录日志；订阅事件要么完整写入，要么不做任何修改。
func (r *SubscriptionReconciler) HandleSubscriptionEvent(ctx context.Context, event stripe.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch e := event.(type) {
	case stripe.SubscriptionEvent:
		return r.apply(e)
	case *stripe.SubscriptionEvent:
		if e == nil {
			return ErrMalformedEvent
		}
		return r.apply(*e)
	case nil:
		return ErrMalformedEvent
	default:
		log.Info().
			Str("event_id", event.EventID()).
			Str("event_type", event.EventType()).
			Msg("ignoring unhandled stripe event")
		return nil
	}
}

func (r *SubscriptionReconciler) apply(e stripe.SubscriptionEvent) error {
	sub := e.Subscription
	if len(sub.Items) == 0 {
		return fmt.Errorf("%w: subscription %s has no items", ErrMalformedEvent, sub.ID)
	}
	if sub.CustomerID == "" {
		return fmt.Errorf("%w: subscription %s has no customer", ErrMalformedEvent, sub.ID)
	}

	user, err := r.userRepo.GetByStripeCustomerID(sub.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownCustomer, sub.CustomerID)
		}
		return err
	}

	// 只支持单一产品的订阅，第一个条目为准
	item := sub.Items[0]
	if r.cfg.ProductID == "" || item.ProductID != r.cfg.ProductID {
		return fmt.Errorf("%w: %s", ErrProductMismatch, item.ProductID)
	}

	plan, err := r.planRepo.GetByPriceID(item.PriceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownPlan, item.PriceID)
		}
		return err
	}

	if !planStatusKnown(sub.Status) {
		log.Warn().Str("event_id", e.ID).Str("status", sub.Status).Msg("unexpected subscription status")
	}

	fields := map[string]interface{}{
		"plan_id":                plan.ID,
		"plan_status":            sub.Status,
		"plan_start":             item.PeriodStart,
		"plan_end":               item.PeriodEnd,
		"stripe_subscription_id": sub.ID,
	}
	if err := r.userRepo.UpdateFields(user.ID, fields); err != nil {
		return fmt.Errorf("update subscription for user %d: %w", user.ID, err)
	}

	log.Info().
		Str("event_id", e.ID).
		Str("kind", string(e.Kind)).
		Int64("user_id", user.ID).
		Int64("plan_id", plan.ID).
		Str("status", sub.Status).
		Msg("subscription reconciled")

	return nil
}

// planStatusKnown 判断状态是否属于已知的 Stripe 订阅状态，未知状态仍原样写入，只告警
func planStatusKnown(status string) bool {
	switch status {
	case model.PlanStatusActive, model.PlanStatusCanceled, model.PlanStatusPastDue,
		model.PlanStatusUnpaid, model.PlanStatusIncomplete, model.PlanStatusIncompleteExpired,
		model.PlanStatusTrialing, model.PlanStatusPaused:
		return true
	}
	return false
}
