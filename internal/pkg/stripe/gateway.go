package stripe

import (
	"context"
	"errors"
	"strconv"

	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// PaymentMethod 卡片摘要
type PaymentMethod struct {
	ID       string
	Brand    string
	Last4    string
	ExpMonth int64
	ExpYear  int64
	CVCPass  bool
}

type Invoice struct {
	ID          string
	Number      string
	Status      string
	Currency    string
	AmountDue   int64
	AmountPaid  int64
	HostedURL   string
	PDFURL      string
	PeriodStart int64
	PeriodEnd   int64
	Created     int64
}

type CheckoutSession struct {
	ID  string
	URL string
}

type CustomerParams struct {
	UserID int64
	Name   string
	Email  string
	Phone  string
}

// Gateway Stripe API 的薄封装
type Gateway struct {
	api *client.API
}

func NewGateway(secretKey string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api}
}

func (g *Gateway) CreateCustomer(ctx context.Context, p CustomerParams) (string, error) {
	params := &stripelib.CustomerParams{
		Name:  stripelib.String(p.Name),
		Email: stripelib.String(p.Email),
	}
	if p.Phone != "" {
		params.Phone = stripelib.String(p.Phone)
	}
	params.AddMetadata("user_id", strconv.FormatInt(p.UserID, 10))
	params.Context = ctx

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}

// CustomerActive customer 存在且未被删除
func (g *Gateway) CustomerActive(ctx context.Context, customerID string) (bool, error) {
	params := &stripelib.CustomerParams{}
	params.Context = ctx
	customer, err := g.api.Customers.Get(customerID, params)
	if err != nil {
		var stripeErr *stripelib.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return false, nil
		}
		return false, err
	}
	return !customer.Deleted, nil
}

func (g *Gateway) CreateSetupIntent(ctx context.Context, customerID string) (string, error) {
	params := &stripelib.SetupIntentParams{
		Customer:           stripelib.String(customerID),
		PaymentMethodTypes: stripelib.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := g.api.SetupIntents.New(params)
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// AttachPaymentMethod 绑定卡片并设为发票默认支付方式
func (g *Gateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*PaymentMethod, error) {
	attachParams := &stripelib.PaymentMethodAttachParams{
		Customer: stripelib.String(customerID),
	}
	attachParams.Context = ctx

	pm, err := g.api.PaymentMethods.Attach(paymentMethodID, attachParams)
	if err != nil {
		return nil, err
	}

	updateParams := &stripelib.CustomerParams{
		InvoiceSettings: &stripelib.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripelib.String(pm.ID),
		},
	}
	updateParams.Context = ctx
	if _, err := g.api.Customers.Update(customerID, updateParams); err != nil {
		return nil, err
	}

	return toPaymentMethod(pm), nil
}

func (g *Gateway) ListCards(ctx context.Context, customerID string) ([]*PaymentMethod, error) {
	params := &stripelib.PaymentMethodListParams{
		Customer: stripelib.String(customerID),
		Type:     stripelib.String(string(stripelib.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	var methods []*PaymentMethod
	iter := g.api.PaymentMethods.List(params)
	for iter.Next() {
		methods = append(methods, toPaymentMethod(iter.PaymentMethod()))
	}
	return methods, iter.Err()
}

func (g *Gateway) ListInvoices(ctx context.Context, customerID string, limit int) ([]*Invoice, error) {
	params := &stripelib.InvoiceListParams{
		Customer: stripelib.String(customerID),
	}
	params.Limit = stripelib.Int64(int64(limit))
	params.Context = ctx

	var invoices []*Invoice
	iter := g.api.Invoices.List(params)
	for iter.Next() && len(invoices) < limit {
		inv := iter.Invoice()
		invoices = append(invoices, &Invoice{
			ID:          inv.ID,
			Number:      inv.Number,
			Status:      string(inv.Status),
			Currency:    string(inv.Currency),
			AmountDue:   inv.AmountDue,
			AmountPaid:  inv.AmountPaid,
			HostedURL:   inv.HostedInvoiceURL,
			PDFURL:      inv.InvoicePDF,
			PeriodStart: inv.PeriodStart,
			PeriodEnd:   inv.PeriodEnd,
			Created:     inv.Created,
		})
	}
	return invoices, iter.Err()
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	params := &stripelib.CheckoutSessionParams{
		Mode:       stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		Customer:   stripelib.String(customerID),
		SuccessURL: stripelib.String(successURL),
		CancelURL:  stripelib.String(cancelURL),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				Price:    stripelib.String(priceID),
				Quantity: stripelib.Int64(1),
			},
		},
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func toPaymentMethod(pm *stripelib.PaymentMethod) *PaymentMethod {
	out := &PaymentMethod{ID: pm.ID}
	if pm.Card != nil {
		out.Brand = string(pm.Card.Brand)
		out.Last4 = pm.Card.Last4
		out.ExpMonth = pm.Card.ExpMonth
		out.ExpYear = pm.Card.ExpYear
		if pm.Card.Checks != nil {
			out.CVCPass = string(pm.Card.Checks.CVCCheck) == "pass"
		}
	}
	return out
}
