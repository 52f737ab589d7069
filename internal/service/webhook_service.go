package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/metrics"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/stripe"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

// webhook 处理结果
const (
	WebhookOutcomeProcessed = "processed"
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeRejected  = "rejected"
	WebhookOutcomeFailed    = "failed"
)

// WebhookResult 一次投递的处理结果
type WebhookResult struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Outcome string `json:"outcome"`
}

// SubscriptionHandler 处理已解码的订阅事件
type SubscriptionHandler interface {
	HandleSubscriptionEvent(ctx context.Context, event stripe.Event) error
}

type WebhookService struct {
	eventRepo  *repository.WebhookEventRepository
	reconciler SubscriptionHandler
	cfg        config.StripeConfig
}

func NewWebhookService(
	eventRepo *repository.WebhookEventRepository,
	reconciler SubscriptionHandler,
	cfg config.StripeConfig,
) *WebhookService {
	return &WebhookService{
		eventRepo:  eventRepo,
		reconciler: reconciler,
		cfg:        cfg,
	}
}

// Handle 验签、去重、解码并分发一次 webhook 投递。
// 返回 error 时调用方应返回非 2xx 让 Stripe 重试；业务上无法处理的事件记为 rejected 并正常返回。
func (s *WebhookService) Handle(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	raw, err := stripe.VerifyEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "invalid_signature").Inc()
		return nil, err
	}

	result := &WebhookResult{EventID: raw.ID, Type: string(raw.Type)}
	start := time.Now()
	defer func() {
		metrics.WebhookDuration.WithLabelValues(result.Type).Observe(time.Since(start).Seconds())
		if result.Outcome != "" {
			metrics.WebhookEventsTotal.WithLabelValues(result.Type, result.Outcome).Inc()
		}
	}()

	claimed, err := s.eventRepo.Claim(raw.ID, result.Type)
	if err != nil {
		return nil, fmt.Errorf("claim webhook event: %w", err)
	}
	if !claimed {
		result.Outcome = WebhookOutcomeDuplicate
		log.Debug().Str("event_id", raw.ID).Msg("duplicate stripe event")
		return result, nil
	}

	event, err := stripe.Decode(raw)
	if err != nil {
		result.Outcome = WebhookOutcomeRejected
		s.mark(raw.ID, model.WebhookStatusFailed, err.Error())
		log.Warn().Err(err).Str("event_id", raw.ID).Msg("undecodable stripe event")
		return result, nil
	}

	if _, ok := event.(stripe.IgnoredEvent); ok {
		result.Outcome = WebhookOutcomeIgnored
		s.mark(raw.ID, model.WebhookStatusIgnored, "")
		log.Debug().Str("event_id", raw.ID).Str("type", result.Type).Msg("ignoring stripe event")
		return result, nil
	}

	if err := s.reconciler.HandleSubscriptionEvent(ctx, event); err != nil {
		s.mark(raw.ID, model.WebhookStatusFailed, err.Error())
		if isReconcileRejection(err) {
			result.Outcome = WebhookOutcomeRejected
			log.Warn().Err(err).Str("event_id", raw.ID).Msg("stripe event rejected")
			return result, nil
		}
		result.Outcome = WebhookOutcomeFailed
		return nil, err
	}

	result.Outcome = WebhookOutcomeProcessed
	s.mark(raw.ID, model.WebhookStatusProcessed, "")
	return result, nil
}

func (s *WebhookService) mark(eventID, status, errMsg string) {
	if err := s.eventRepo.MarkStatus(eventID, status, errMsg); err != nil {
		log.Error().Err(err).Str("event_id", eventID).Str("status", status).Msg("failed to update webhook event")
	}
}

// isReconcileRejection 重试也无法成功的错误
func isReconcileRejection(err error) bool {
	return errors.Is(err, ErrMalformedEvent) ||
		errors.Is(err, ErrUnknownCustomer) ||
		errors.Is(err, ErrProductMismatch) ||
		errors.Is(err, ErrUnknownPlan)
}
