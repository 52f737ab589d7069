package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/handler"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/database"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/logger"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/odoo"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/pubsub"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/queue"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/storage"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/stripe"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/ws"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

func main() {
	// 加载配置
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
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	// 对象存储（可选）
	var avatarStorage service.ObjectStorage
	if cfg.Storage.Enabled() {
		client, err := storage.NewClient(context.Background(), &cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("object storage disabled")
		} else {
			avatarStorage = client
			log.Info().Str("bucket", cfg.Storage.Bucket).Msg("object storage initialized")
		}
	}

	emailQueue := queue.NewQueue(rdb, cfg.Queue.EmailQueue)
	publisher := pubsub.NewPublisher(rdb)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	installationRepo := repository.NewInstallationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)

	// 初始化 Service
	odooClient := odoo.NewClient(cfg.Odoo)
	stripeGateway := stripe.NewGateway(cfg.Stripe.SecretKey)

	notificationService := service.NewNotificationService(notificationRepo, publisher)
	authService := service.NewAuthService(userRepo, notificationService, emailQueue, cfg)
	userService := service.NewUserService(userRepo, avatarStorage, notificationService, cfg)
	companyService := service.NewCompanyService(userRepo, companyRepo)
	planService := service.NewPlanService(planRepo)
	billingService := service.NewBillingService(userRepo, planRepo, stripeGateway, cfg.Stripe)
	installationService := service.NewInstallationService(userRepo, companyRepo, installationRepo,
		odooClient, notificationService, emailQueue, cfg.Odoo)
	reconciler := service.NewSubscriptionReconciler(userRepo, planRepo, cfg.Stripe)
	webhookService := service.NewWebhookService(eventRepo, reconciler, cfg.Stripe)

	// WebSocket Hub，通知经 Redis 转发到本实例的连接
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go forwardNotifications(ctx, pubsub.NewSubscriber(rdb), hub)

	// 初始化 Handler
	handlers := api.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService, billingService),
		Company:      handler.NewCompanyHandler(companyService),
		Plan:         handler.NewPlanHandler(planService),
		Installation: handler.NewInstallationHandler(installationService, cfg.Pagination.DefaultLimit),
		Stripe:       handler.NewStripeHandler(webhookService, billingService),
		Notification: handler.NewNotificationHandler(notificationService, cfg.Pagination.DefaultLimit),
		WebSocket:    handler.NewWebSocketHandler(hub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
		Health:       handler.NewHealthHandler(db, rdb),
	}
	engine := api.NewRouter(handlers, userRepo, cfg).Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	// 开通请求可能还在等待 Odoo，留出足够时间
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Odoo.Timeout()+5*time.Second)
	defer shutdownCancel()

	cancel()
	hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	_ = rdb.Close()
	log.Info().Msg("server stopped")
}

// forwardNotifications 订阅断开后每 5 秒重连
func forwardNotifications(ctx context.Context, sub *pubsub.Subscriber, hub *ws.Hub) {
	for {
		err := sub.Subscribe(ctx, func(msg *pubsub.NotificationMessage) {
			if err := hub.SendToUser(msg.UserID, &ws.Message{Type: msg.Type, Data: msg}); err != nil {
				log.Warn().Err(err).Int64("user_id", msg.UserID).Msg("failed to push notification")
			}
		})
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("notification subscription lost, retrying")
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
