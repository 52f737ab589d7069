package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/middleware"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/response"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/stripe"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

// MaxWebhookBodyBytes Stripe 事件体上限
const MaxWebhookBodyBytes = 64 << 10

// StripeHandler webhook 与计费相关接口
type StripeHandler struct {
	webhookService *service.WebhookService
	billingService *service.BillingService
}

func NewStripeHandler(webhookService *service.WebhookService, billingService *service.BillingService) *StripeHandler {
	return &StripeHandler{
		webhookService: webhookService,
		billingService: billingService,
	}
}

// Webhook 接收 Stripe 事件。
// 签名错误或未配置密钥返回 400，基础设施错误返回 500 让 Stripe 重试，其余情况返回 200。
// POST /api/v1/stripe/webhook
func (h *StripeHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxWebhookBodyBytes+1))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, response.CodeParamError, "读取请求体失败")
		return
	}
	if len(payload) > MaxWebhookBodyBytes {
		response.ErrorWithStatus(c, http.StatusRequestEntityTooLarge, response.CodeParamError, "请求体过大")
		return
	}

	result, err := h.webhookService.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, stripe.ErrMissingSignature), errors.Is(err, stripe.ErrInvalidSignature):
			response.ErrorWithStatus(c, http.StatusBadRequest, response.CodeAuthFailed, err.Error())
		case errors.Is(err, stripe.ErrNoWebhookSecret):
			log.Error().Err(err).Msg("stripe webhook received but stripe.webhook_secret is empty")
			response.ErrorWithStatus(c, http.StatusBadRequest, response.CodeServerError, "webhook 未配置")
		default:
			log.Error().Err(err).Msg("stripe webhook failed")
			response.ErrorWithStatus(c, http.StatusInternalServerError, response.CodeServerError, "")
		}
		return
	}

	response.Success(c, result)
}

// CreateSetupIntent POST /api/v1/stripe/create-setup-intent
func (h *StripeHandler) CreateSetupIntent(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.billingService.CreateSetupIntent(c.Request.Context(), userID)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	response.Success(c, resp)
}

// AttachPaymentMethod POST /api/v1/stripe/attach-payment-method
func (h *StripeHandler) AttachPaymentMethod(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.AttachPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	pm, err := h.billingService.AttachPaymentMethod(c.Request.Context(), userID, req.PaymentMethodID)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	response.SuccessWithMessage(c, "支付方式已绑定", pm)
}

// GetPaymentMethod GET /api/v1/stripe/payment-method
func (h *StripeHandler) GetPaymentMethod(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	pm, err := h.billingService.GetPaymentMethod(c.Request.Context(), userID)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	response.Success(c, pm)
}

// ListInvoices GET /api/v1/stripe/billings
func (h *StripeHandler) ListInvoices(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	invoices, err := h.billingService.ListInvoices(c.Request.Context(), userID)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	response.Success(c, invoices)
}

func writeBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrNoPaymentMethod):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrNoBillingCustomer):
		response.NotSubscribedError(c, err.Error())
	case errors.Is(err, service.ErrPlanIntervalUnavailable):
		response.ParamError(c, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("billing request failed")
		response.UpstreamError(c, "")
	}
}
