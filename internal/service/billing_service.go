package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/stripe"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/repository"
)

var (
	ErrNoBillingCustomer       = errors.New("user has no billing customer")
	ErrNoPaymentMethod         = errors.New("no payment method found")
	ErrPlanNotFound            = errors.New("plan not found")
	ErrPlanIntervalUnavailable = errors.New("plan is not offered for this billing interval")
)

const invoiceListLimit = 24

// BillingGateway Stripe 客户、支付方式、账单与 Checkout
type BillingGateway interface {
	CreateCustomer(ctx context.Context, p stripe.CustomerParams) (string, error)
	CustomerActive(ctx context.Context, customerID string) (bool, error)
	CreateSetupIntent(ctx context.Context, customerID string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*stripe.PaymentMethod, error)
	ListCards(ctx context.Context, customerID string) ([]*stripe.PaymentMethod, error)
	ListInvoices(ctx context.Context, customerID string, limit int) ([]*stripe.Invoice, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (*stripe.CheckoutSession, error)
}

type BillingService struct {
	userRepo *repository.UserRepository
	planRepo *repository.PlanRepository
	gateway  BillingGateway
	cfg      config.StripeConfig
}

func NewBillingService(
	userRepo *repository.UserRepository,
	planRepo *repository.PlanRepository,
	gateway BillingGateway,
	cfg config.StripeConfig,
) *BillingService {
	return &BillingService{
		userRepo: userRepo,
		planRepo: planRepo,
		gateway:  gateway,
		cfg:      cfg,
	}
}

// CreateSetupIntent 创建收集卡信息用的 SetupIntent，客户不存在或已删除时重新创建
func (s *BillingService) CreateSetupIntent(ctx context.Context, userID int64) (*dto.SetupIntentResponse, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	secret, err := s.gateway.CreateSetupIntent(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &dto.SetupIntentResponse{
		ClientSecret: secret,
		CustomerID:   customerID,
	}, nil
}

// AttachPaymentMethod 绑定卡片并设为默认
func (s *BillingService) AttachPaymentMethod(ctx context.Context, userID int64, paymentMethodID string) (*dto.PaymentMethodInfo, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return nil, ErrNoBillingCustomer
	}

	pm, err := s.gateway.AttachPaymentMethod(ctx, *user.StripeCustomerID, paymentMethodID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"default_payment_method_id": pm.ID}); err != nil {
		return nil, err
	}

	return buildPaymentMethodInfo(pm, true), nil
}

// GetPaymentMethod 返回默认卡片，没有默认时取第一张通过 CVC 校验的卡
func (s *BillingService) GetPaymentMethod(ctx context.Context, userID int64) (*dto.PaymentMethodInfo, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return nil, ErrNoBillingCustomer
	}

	cards, err := s.gateway.ListCards(ctx, *user.StripeCustomerID)
	if err != nil {
		return nil, err
	}

	var fallback *stripe.PaymentMethod
	for _, card := range cards {
		if user.DefaultPaymentMethodID != nil && card.ID == *user.DefaultPaymentMethodID {
			return buildPaymentMethodInfo(card, true), nil
		}
		if fallback == nil && card.CVCPass {
			fallback = card
		}
	}
	if fallback == nil {
		return nil, ErrNoPaymentMethod
	}
	return buildPaymentMethodInfo(fallback, false), nil
}

// ListInvoices 最近的账单，尚未成为 Stripe 客户时返回空列表
func (s *BillingService) ListInvoices(ctx context.Context, userID int64) ([]*dto.InvoiceInfo, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return []*dto.InvoiceInfo{}, nil
	}

	invoices, err := s.gateway.ListInvoices(ctx, *user.StripeCustomerID, invoiceListLimit)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceInfo, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, &dto.InvoiceInfo{
			ID:          inv.ID,
			Number:      inv.Number,
			Status:      inv.Status,
			Currency:    inv.Currency,
			AmountDue:   inv.AmountDue,
			AmountPaid:  inv.AmountPaid,
			HostedURL:   inv.HostedURL,
			PDFURL:      inv.PDFURL,
			PeriodStart: unixToRFC3339(inv.PeriodStart),
			PeriodEnd:   unixToRFC3339(inv.PeriodEnd),
			CreatedAt:   unixToRFC3339(inv.Created),
		})
	}
	return items, nil
}

// SelectPlan 为选定套餐创建 Checkout 会话，订阅结果由 webhook 回写
func (s *BillingService) SelectPlan(ctx context.Context, userID int64, req *dto.SelectPlanRequest) (*dto.SelectPlanResponse, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanNotFound
	}

	priceID, ok := plan.PriceFor(req.Interval)
	if !ok {
		return nil, ErrPlanIntervalUnavailable
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, customerID, priceID, s.cfg.SuccessURL, s.cfg.CancelURL)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", user.ID).Int64("plan_id", plan.ID).Str("session_id", session.ID).Msg("checkout session created")
	return &dto.SelectPlanResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// ensureCustomer 返回可用的 Stripe customer，必要时新建并保存
func (s *BillingService) ensureCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		active, err := s.gateway.CustomerActive(ctx, *user.StripeCustomerID)
		if err != nil {
			return "", err
		}
		if active {
			return *user.StripeCustomerID, nil
		}
		log.Warn().Int64("user_id", user.ID).Str("customer_id", *user.StripeCustomerID).Msg("stripe customer deleted, recreating")
	}

	params := stripe.CustomerParams{
		UserID: user.ID,
		Name:   user.FullName(),
		Email:  user.Email,
	}
	if user.Phone != nil {
		params.Phone = *user.Phone
	}

	customerID, err := s.gateway.CreateCustomer(ctx, params)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"stripe_customer_id": customerID}); err != nil {
		return "", err
	}
	user.StripeCustomerID = &customerID
	return customerID, nil
}

func (s *BillingService) loadUser(userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func buildPaymentMethodInfo(pm *stripe.PaymentMethod, isDefault bool) *dto.PaymentMethodInfo {
	return &dto.PaymentMethodInfo{
		ID:       pm.ID,
		Brand:    pm.Brand,
		Last4:    pm.Last4,
		ExpMonth: pm.ExpMonth,
		ExpYear:  pm.ExpYear,
		Default:  isDefault,
	}
}

func unixToRFC3339(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
