package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/handler"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/middleware"
)

// Handlers 路由依赖的全部 handler
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Company      *handler.CompanyHandler
	Plan         *handler.PlanHandler
	Installation *handler.InstallationHandler
	Stripe       *handler.StripeHandler
	Notification *handler.NotificationHandler
	WebSocket    *handler.WebSocketHandler
	Health       *handler.HealthHandler
}

type Router struct {
	handlers Handlers
	users    middleware.UserLookup
	cfg      *config.Config
}

// NewRouter users 用于管理员接口的角色检查
func NewRouter(handlers Handlers, users middleware.UserLookup, cfg *config.Config) *Router {
	return &Router{
		handlers: handlers,
		users:    users,
		cfg:      cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	h := r.handlers

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", h.Health.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	{
		// WebSocket，令牌在 query 中
		api.GET("/ws", h.WebSocket.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/verify-email", h.Auth.VerifyEmail)
			auth.POST("/resend-verification", h.Auth.ResendVerification)
			auth.POST("/forgot-password", h.Auth.ForgotPassword)
			auth.POST("/reset-password", h.Auth.ResetPassword)
		}

		// 公开接口 - 套餐与 Stripe 回调
		api.GET("/plans", h.Plan.List)
		api.POST("/stripe/webhook", h.Stripe.Webhook)

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			account := authenticated.Group("/account")
			{
				account.GET("/me", h.User.GetProfile)
				account.PATCH("/me", h.User.UpdateProfile)
				account.DELETE("/me", h.User.DeleteAccount)
				account.PATCH("/password", h.User.UpdatePassword)
				account.POST("/avatar", h.User.UploadAvatar)
				account.POST("/select-plan", h.User.SelectPlan)
			}

			company := authenticated.Group("/company")
			{
				company.GET("/me", h.Company.Get)
				company.PUT("/me", h.Company.Save)
			}

			installations := authenticated.Group("/installations")
			{
				installations.POST("", h.Installation.Create)
				installations.GET("/me", h.Installation.GetMine)
			}

			stripe := authenticated.Group("/stripe")
			{
				stripe.POST("/create-setup-intent", h.Stripe.CreateSetupIntent)
				stripe.POST("/attach-payment-method", h.Stripe.AttachPaymentMethod)
				stripe.GET("/payment-method", h.Stripe.GetPaymentMethod)
				stripe.GET("/billings", h.Stripe.ListInvoices)
			}

			notifications := authenticated.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
				notifications.POST("/:id/read", h.Notification.MarkRead)
			}
		}

		// 管理员接口
		admin := api.Group("")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.RequireAdmin(r.users))
		{
			admin.GET("/installations", h.Installation.List)
			admin.PATCH("/installations/:id", h.Installation.Update)
			admin.DELETE("/installations/:id", h.Installation.Delete)
			admin.DELETE("/notifications/:id", h.Notification.Delete)
		}
	}

	return engine
}
