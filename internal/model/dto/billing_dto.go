package dto

// AttachPaymentMethodRequest 绑定支付方式
type AttachPaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

// SetupIntentResponse 前端用于收集卡信息
type SetupIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	CustomerID   string `json:"customer_id"`
}

// PaymentMethodInfo 支付方式摘要
type PaymentMethodInfo struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
	Default  bool   `json:"default"`
}

// InvoiceInfo 账单
type InvoiceInfo struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Status      string `json:"status"`
	Currency    string `json:"currency"`
	AmountDue   int64  `json:"amount_due"`
	AmountPaid  int64  `json:"amount_paid"`
	HostedURL   string `json:"hosted_invoice_url,omitempty"`
	PDFURL      string `json:"invoice_pdf,omitempty"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	CreatedAt   string `json:"created_at"`
}

// PlanInfo 套餐信息
type PlanInfo struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	Price               float64 `json:"price"`
	AnnualPrice         float64 `json:"annual_price"`
	StripePriceID       string  `json:"stripe_price_id"`
	StripeAnnualPriceID string  `json:"stripe_annual_price_id,omitempty"`
}
