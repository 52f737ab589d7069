package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/database"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/cron"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/email"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/logger"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/odoo"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/queue"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/worker"
)

func main() {
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

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	log.Info().Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	// 邮件队列
	emailQueue := queue.NewQueue(rdb, cfg.Queue.EmailQueue)
	processor := worker.NewProcessor(email.NewSender(&cfg.Email), cfg.Email.From, emailQueue)

	// 开通恢复与数据清理
	recovery := service.NewProvisioningRecovery(
		repository.NewIntentRepository(db),
		repository.NewInstallationRepository(db),
		odoo.NewClient(cfg.Odoo),
		cfg.Provisioning,
	)
	retention := service.NewRetentionService(
		repository.NewWebhookEventRepository(db),
		repository.NewNotificationRepository(db),
		cfg.Retention,
	)
	scheduler := cron.NewService(recovery, retention, cfg.Provisioning.RecoveryInterval())
	scheduler.Start()

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	log.Info().
		Int("workers", cfg.Queue.MaxWorkers).
		Str("queue", emailQueue.Name()).
		Str("email_strategy", cfg.Email.Strategy).
		Msg("worker started")

	processor.Run(ctx, cfg.Queue.MaxWorkers)

	scheduler.Stop()
	_ = rdb.Close()
	log.Info().Msg("worker shutdown complete")
}
