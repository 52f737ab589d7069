package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

// RetentionReport 清理结果，dry run 时为待清理数量
type RetentionReport struct {
	DryRun        bool  `json:"dry_run"`
	WebhookEvents int64 `json:"webhook_events"`
	Notifications int64 `json:"notifications"`
}

// RetentionService 清理已处理的 webhook 记录和已读通知
type RetentionService struct {
	eventRepo        *repository.WebhookEventRepository
	notificationRepo *repository.NotificationRepository
	cfg              config.RetentionConfig
	now              func() time.Time
}

func NewRetentionService(
	eventRepo *repository.WebhookEventRepository,
	notificationRepo *repository.NotificationRepository,
	cfg config.RetentionConfig,
) *RetentionService {
	return &RetentionService{
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
		cfg:              cfg,
		now:              time.Now,
	}
}

// Prune 天数小于等于 0 的类别不清理
func (s *RetentionService) Prune(ctx context.Context, dryRun bool) (*RetentionReport, error) {
	report := &RetentionReport{DryRun: dryRun}
	now := s.now()

	if s.cfg.WebhookEventDays > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		cutoff := now.AddDate(0, 0, -s.cfg.WebhookEventDays)
		var err error
		if dryRun {
			report.WebhookEvents, err = s.eventRepo.CountResolvedBefore(cutoff)
		} else {
			report.WebhookEvents, err = s.eventRepo.DeleteResolvedBefore(cutoff)
		}
		if err != nil {
			return report, err
		}
	}

	if s.cfg.NotificationDays > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		cutoff := now.AddDate(0, 0, -s.cfg.NotificationDays)
		var err error
		if dryRun {
			report.Notifications, err = s.notificationRepo.CountReadBefore(cutoff)
		} else {
			report.Notifications, err = s.notificationRepo.DeleteReadBefore(cutoff)
		}
		if err != nil {
			return report, err
		}
	}

	log.Info().
		Bool("dry_run", dryRun).
		Int64("webhook_events", report.WebhookEvents).
		Int64("notifications", report.Notifications).
		Msg("retention prune finished")
	return report, nil
}
