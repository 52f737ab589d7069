package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/database"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/logger"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

var (
	dryRun           = flag.Bool("dry-run", true, "Dry run mode, only count what would be deleted")
	webhookEventDays = flag.Int("webhook-event-days", -1, "Days to keep processed webhook events (-1 uses config)")
	notificationDays = flag.Int("notification-days", -1, "Days to keep read notifications (-1 uses config)")
)

func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log)

	retention := cfg.Retention
	if *webhookEventDays >= 0 {
		retention.WebhookEventDays = *webhookEventDays
	}
	if *notificationDays >= 0 {
		retention.NotificationDays = *notificationDays
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	svc := service.NewRetentionService(
		repository.NewWebhookEventRepository(db),
		repository.NewNotificationRepository(db),
		retention,
	)

	log.Info().
		Bool("dry_run", *dryRun).
		Int("webhook_event_days", retention.WebhookEventDays).
		Int("notification_days", retention.NotificationDays).
		Msg("starting cleanup")

	report, err := svc.Prune(context.Background(), *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("cleanup failed")
	}

	log.Info().
		Bool("dry_run", report.DryRun).
		Int64("webhook_events", report.WebhookEvents).
		Int64("notifications", report.Notifications).
		Msg("cleanup summary")
	if report.DryRun {
		log.Info().Msg("dry run mode, nothing was deleted; run with -dry-run=false to delete")
	}
}
